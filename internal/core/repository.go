package core

import (
	"context"
	"time"
)

// Read-only collaborator stores. Every call returns a point-in-time
// snapshot; the engine never writes back through these interfaces.

type AccountGroupRepository interface {
	ListAccountGroups(ctx context.Context) ([]AccountGroup, error)
}

type LedgerAccountRepository interface {
	ListLedgerAccounts(ctx context.Context) ([]LedgerAccount, error)
}

type JournalVoucherRepository interface {
	// ListJournalVouchers returns vouchers dated on or before upTo,
	// with their lines in posting order.
	ListJournalVouchers(ctx context.Context, upTo time.Time) ([]JournalVoucher, error)
}

type SalesInvoiceRepository interface {
	ListSalesInvoices(ctx context.Context, upTo time.Time) ([]SalesInvoice, error)
}

type StockValuationRepository interface {
	// ListStockValuations returns the current valuation snapshot. It is not
	// historically accurate for past cutoffs.
	ListStockValuations(ctx context.Context) ([]StockValuation, error)
}
