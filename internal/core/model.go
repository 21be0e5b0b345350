package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nature classifies an account for statement placement and determines its
// normal balance side.
type Nature string

const (
	Asset     Nature = "asset"
	Liability Nature = "liability"
	Equity    Nature = "equity"
	Income    Nature = "income"
	Expense   Nature = "expense"
)

// Side is the debit or credit side of a posting or opening balance.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

// SystemRole is a stable tag identifying well-known ledgers, so system
// postings (invoice taxes, stock valuations) resolve by key rather than by
// display name.
type SystemRole string

const (
	RoleNone          SystemRole = ""
	RoleSalesIncome   SystemRole = "sales_income"
	RoleOutputGSTCGST SystemRole = "output_gst_cgst"
	RoleOutputGSTSGST SystemRole = "output_gst_sgst"
	RoleOutputGSTIGST SystemRole = "output_gst_igst"
	RoleFinishedGoods SystemRole = "finished_goods_stock"
	RoleRawMaterials  SystemRole = "raw_material_stock"
)

// AccountGroup is a node in the chart-of-accounts classification tree.
// A group with an empty ParentID is a root.
type AccountGroup struct {
	ID            string
	Name          string
	Nature        Nature
	ParentID      string
	Level         int
	SortKey       int
	AllowsPosting bool
}

// LedgerAccount is a posting leaf within a group. Created once when a
// business entity is on-boarded; immutable afterward except for
// opening-balance corrections.
type LedgerAccount struct {
	ID            string
	Name          string
	GroupID       string
	Nature        Nature
	NormalSide    Side
	OpeningAmount decimal.Decimal
	OpeningSide   Side
	OpeningAsOf   time.Time
	Role          SystemRole
	TracksStock   bool
}

// VoucherLine carries either a debit amount or a credit amount, never both.
type VoucherLine struct {
	LedgerID string
	Debit    decimal.Decimal
	Credit   decimal.Decimal
}

// JournalVoucher is a dated set of debit/credit postings. Vouchers are never
// mutated after creation; corrections arrive as new offsetting vouchers.
type JournalVoucher struct {
	ID        string
	Date      time.Time
	Narration string
	Lines     []VoucherLine
}

// TaxLine is one tax component of a sales invoice. Role is the preferred
// stable link to the tax-liability ledger; Label is the legacy display-name
// fallback.
type TaxLine struct {
	Label  string
	Role   SystemRole
	Amount decimal.Decimal
}

// SalesInvoice is a read-only sales transaction. GrandTotal is the amount
// receivable from the customer; TaxableValue is GrandTotal net of Taxes.
type SalesInvoice struct {
	ID               string
	Date             time.Time
	CustomerLedgerID string
	GrandTotal       decimal.Decimal
	TaxableValue     decimal.Decimal
	Taxes            []TaxLine
}

// StockValuation is the current snapshot value of one stock-tracking ledger:
// the sum of quantity-on-hand times unit cost over every stock item
// classified under LedgerLabel.
type StockValuation struct {
	LedgerLabel string
	Value       decimal.Decimal
}
