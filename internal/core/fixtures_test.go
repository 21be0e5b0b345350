package core_test

import (
	"context"
	"testing"
	"time"

	"ledger-engine/internal/core"

	"github.com/shopspring/decimal"
)

// memStore implements every read repository over in-memory slices.
type memStore struct {
	groups   []core.AccountGroup
	ledgers  []core.LedgerAccount
	vouchers []core.JournalVoucher
	invoices []core.SalesInvoice
	stock    []core.StockValuation
}

func (m *memStore) ListAccountGroups(context.Context) ([]core.AccountGroup, error) {
	return m.groups, nil
}

func (m *memStore) ListLedgerAccounts(context.Context) ([]core.LedgerAccount, error) {
	return m.ledgers, nil
}

func (m *memStore) ListJournalVouchers(_ context.Context, upTo time.Time) ([]core.JournalVoucher, error) {
	var out []core.JournalVoucher
	for _, v := range m.vouchers {
		if !v.Date.After(upTo) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) ListSalesInvoices(_ context.Context, upTo time.Time) ([]core.SalesInvoice, error) {
	var out []core.SalesInvoice
	for _, inv := range m.invoices {
		if !inv.Date.After(upTo) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memStore) ListStockValuations(context.Context) ([]core.StockValuation, error) {
	return m.stock, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// standardChart is the minimal five-nature chart used across tests:
// Assets > Current Assets > Cash (1000 Dr opening), Equity > Capital
// (1000 Cr opening), plus empty Liability/Income/Expense roots.
func standardChart() *memStore {
	return &memStore{
		groups: []core.AccountGroup{
			{ID: "g-assets", Name: "Assets", Nature: core.Asset, SortKey: 1},
			{ID: "g-current", Name: "Current Assets", Nature: core.Asset, ParentID: "g-assets", Level: 1, SortKey: 1},
			{ID: "g-liab", Name: "Liabilities", Nature: core.Liability, SortKey: 2},
			{ID: "g-equity", Name: "Equity", Nature: core.Equity, SortKey: 3},
			{ID: "g-income", Name: "Income", Nature: core.Income, SortKey: 4},
			{ID: "g-expense", Name: "Expenses", Nature: core.Expense, SortKey: 5},
		},
		ledgers: []core.LedgerAccount{
			{
				ID: "l-cash", Name: "Cash", GroupID: "g-current",
				Nature: core.Asset, NormalSide: core.Debit,
				OpeningAmount: dec("1000"), OpeningSide: core.Debit, OpeningAsOf: day("2024-04-01"),
			},
			{
				ID: "l-capital", Name: "Capital", GroupID: "g-equity",
				Nature: core.Equity, NormalSide: core.Credit,
				OpeningAmount: dec("1000"), OpeningSide: core.Credit, OpeningAsOf: day("2024-04-01"),
			},
		},
	}
}

func buildTree(t *testing.T, store *memStore) *core.AccountTree {
	t.Helper()
	tree, err := core.NewAccountTree(store.groups, store.ledgers)
	if err != nil {
		t.Fatalf("NewAccountTree: %v", err)
	}
	return tree
}

// buildEngine wires the full pipeline over store in the canonical source
// order: opening, inventory, invoice, journal.
func buildEngine(t *testing.T, store *memStore) (*core.AccountTree, *core.StatementBuilder) {
	t.Helper()
	tree := buildTree(t, store)
	agg := core.NewBalanceAggregator(tree,
		core.NewOpeningBalanceSource(store),
		core.NewInventoryValuationSource(store, tree),
		core.NewInvoiceSource(store, tree),
		core.NewJournalVoucherSource(store, tree),
	)
	return tree, core.NewStatementBuilder(tree, agg)
}

func countWarnings(warnings []core.Warning, kind core.WarningKind) int {
	n := 0
	for _, w := range warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
