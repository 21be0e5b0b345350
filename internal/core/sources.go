package core

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionSource yields signed balance deltas against ledger accounts as
// of a cutoff date. Amounts are debit-minus-credit: a positive amount
// increases a debit-natural ledger and decreases a credit-natural one. Sign
// is normalized once at ingestion; everything downstream just adds.
type TransactionSource interface {
	Name() string
	Contributions(ctx context.Context, cutoff time.Time) (map[string]decimal.Decimal, []Warning, error)
}

// ── OpeningBalanceSource ──────────────────────────────────────────────────────

// OpeningBalanceSource emits each ledger's opening balance: +amount for a
// Debit-side opening, -amount for a Credit-side one. Opening balances apply
// at every cutoff.
type OpeningBalanceSource struct {
	ledgers LedgerAccountRepository
}

func NewOpeningBalanceSource(ledgers LedgerAccountRepository) *OpeningBalanceSource {
	return &OpeningBalanceSource{ledgers: ledgers}
}

func (s *OpeningBalanceSource) Name() string { return "opening" }

func (s *OpeningBalanceSource) Contributions(ctx context.Context, _ time.Time) (map[string]decimal.Decimal, []Warning, error) {
	ledgers, err := s.ledgers.ListLedgerAccounts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list ledger accounts: %w", err)
	}

	out := make(map[string]decimal.Decimal, len(ledgers))
	for _, l := range ledgers {
		if l.OpeningAmount.IsZero() {
			continue
		}
		amt := l.OpeningAmount
		if l.OpeningSide == Credit {
			amt = amt.Neg()
		}
		out[l.ID] = out[l.ID].Add(amt)
	}
	return out, nil, nil
}

// ── JournalVoucherSource ──────────────────────────────────────────────────────

// JournalVoucherSource folds every voucher dated on or before the cutoff
// into per-ledger signed deltas. Lines referencing unknown ledger ids are
// dropped with a warning instead of failing the build, and vouchers whose
// debits do not equal their credits are folded in but flagged, so the
// imbalance stays visible both as a warning and as an identity delta.
type JournalVoucherSource struct {
	vouchers JournalVoucherRepository
	tree     *AccountTree
}

func NewJournalVoucherSource(vouchers JournalVoucherRepository, tree *AccountTree) *JournalVoucherSource {
	return &JournalVoucherSource{vouchers: vouchers, tree: tree}
}

func (s *JournalVoucherSource) Name() string { return "journal" }

func (s *JournalVoucherSource) Contributions(ctx context.Context, cutoff time.Time) (map[string]decimal.Decimal, []Warning, error) {
	vouchers, err := s.vouchers.ListJournalVouchers(ctx, cutoff)
	if err != nil {
		return nil, nil, fmt.Errorf("list journal vouchers: %w", err)
	}

	out := make(map[string]decimal.Decimal)
	var warnings []Warning
	for _, v := range vouchers {
		if v.Date.After(cutoff) {
			continue
		}

		debits, credits := decimal.Zero, decimal.Zero
		for _, line := range v.Lines {
			debits = debits.Add(line.Debit)
			credits = credits.Add(line.Credit)

			if _, ok := s.tree.Ledger(line.LedgerID); !ok {
				warnings = append(warnings, Warning{
					Kind:   WarnUnresolvedLedger,
					Source: s.Name(),
					Ref:    v.ID,
					Detail: fmt.Sprintf("voucher line references unknown ledger %s", line.LedgerID),
				})
				continue
			}
			out[line.LedgerID] = out[line.LedgerID].Add(line.Debit.Sub(line.Credit))
		}

		if !debits.Equal(credits) {
			warnings = append(warnings, Warning{
				Kind:   WarnUnbalancedVoucher,
				Source: s.Name(),
				Ref:    v.ID,
				Detail: fmt.Sprintf("debits %s != credits %s", debits.StringFixed(2), credits.StringFixed(2)),
			})
		}
	}
	return out, warnings, nil
}

// ── InvoiceSource ─────────────────────────────────────────────────────────────

// salesLabelFallbacks are the legacy display names tried for the sales
// income ledger on charts without a sales_income role tag.
var salesLabelFallbacks = []string{"Sales", "Sales Account", "Sales Income"}

// InvoiceSource converts each sales invoice dated on or before the cutoff
// into a balanced contribution set: the grand total is debited to the
// customer's receivable ledger, each tax component is credited to its
// tax-liability ledger, and the taxable value is credited to the sales
// income ledger. Income recognition happens here and only here; the P&L
// never re-reads raw invoice totals, so an invoice cannot be counted twice.
type InvoiceSource struct {
	invoices SalesInvoiceRepository
	tree     *AccountTree
}

func NewInvoiceSource(invoices SalesInvoiceRepository, tree *AccountTree) *InvoiceSource {
	return &InvoiceSource{invoices: invoices, tree: tree}
}

func (s *InvoiceSource) Name() string { return "invoice" }

func (s *InvoiceSource) Contributions(ctx context.Context, cutoff time.Time) (map[string]decimal.Decimal, []Warning, error) {
	invoices, err := s.invoices.ListSalesInvoices(ctx, cutoff)
	if err != nil {
		return nil, nil, fmt.Errorf("list sales invoices: %w", err)
	}

	out := make(map[string]decimal.Decimal)
	var warnings []Warning
	for _, inv := range invoices {
		if inv.Date.After(cutoff) {
			continue
		}

		if _, ok := s.tree.Ledger(inv.CustomerLedgerID); ok {
			out[inv.CustomerLedgerID] = out[inv.CustomerLedgerID].Add(inv.GrandTotal)
		} else {
			warnings = append(warnings, Warning{
				Kind:   WarnUnresolvedLedger,
				Source: s.Name(),
				Ref:    inv.ID,
				Detail: fmt.Sprintf("unknown customer ledger %s", inv.CustomerLedgerID),
			})
		}

		for _, tax := range inv.Taxes {
			ledger, ok := s.tree.ResolveLedgerByRole(tax.Role)
			if !ok {
				ledger, ok = s.tree.ResolveLedgerByLabel([]string{tax.Label})
			}
			if !ok {
				warnings = append(warnings, Warning{
					Kind:   WarnUnresolvedLedger,
					Source: s.Name(),
					Ref:    inv.ID,
					Detail: fmt.Sprintf("tax component %q did not resolve to a ledger", tax.Label),
				})
				continue
			}
			out[ledger.ID] = out[ledger.ID].Sub(tax.Amount)
		}

		if inv.TaxableValue.IsZero() {
			continue
		}
		sales, ok := s.tree.ResolveLedgerByRole(RoleSalesIncome)
		if !ok {
			sales, ok = s.tree.ResolveLedgerByLabel(salesLabelFallbacks)
		}
		if !ok {
			warnings = append(warnings, Warning{
				Kind:   WarnUnresolvedLedger,
				Source: s.Name(),
				Ref:    inv.ID,
				Detail: "no sales income ledger resolved; taxable value dropped",
			})
			continue
		}
		out[sales.ID] = out[sales.ID].Sub(inv.TaxableValue)
	}
	return out, warnings, nil
}

// ── InventoryValuationSource ──────────────────────────────────────────────────

// InventoryValuationSource emits one debit-side contribution per
// stock-tracking ledger equal to the current quantity times unit-cost
// valuation. The snapshot is cutoff-independent: it reflects stock on hand
// now, not at historical cutoffs. Documented limitation.
type InventoryValuationSource struct {
	stock StockValuationRepository
	tree  *AccountTree
}

func NewInventoryValuationSource(stock StockValuationRepository, tree *AccountTree) *InventoryValuationSource {
	return &InventoryValuationSource{stock: stock, tree: tree}
}

func (s *InventoryValuationSource) Name() string { return "inventory" }

func (s *InventoryValuationSource) Contributions(ctx context.Context, _ time.Time) (map[string]decimal.Decimal, []Warning, error) {
	valuations, err := s.stock.ListStockValuations(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list stock valuations: %w", err)
	}

	out := make(map[string]decimal.Decimal)
	var warnings []Warning
	for _, v := range valuations {
		ledger, ok := s.tree.ResolveLedgerByLabel([]string{v.LedgerLabel})
		if !ok {
			warnings = append(warnings, Warning{
				Kind:   WarnUnresolvedLedger,
				Source: s.Name(),
				Ref:    v.LedgerLabel,
				Detail: fmt.Sprintf("stock label %q did not resolve to a ledger", v.LedgerLabel),
			})
			continue
		}
		out[ledger.ID] = out[ledger.ID].Add(v.Value)
	}
	return out, warnings, nil
}
