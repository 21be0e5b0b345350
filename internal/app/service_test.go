package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledger-engine/internal/app"
	"ledger-engine/internal/core"

	"github.com/shopspring/decimal"
)

type memRepos struct {
	groups   []core.AccountGroup
	ledgers  []core.LedgerAccount
	vouchers []core.JournalVoucher
	invoices []core.SalesInvoice
	stock    []core.StockValuation

	groupsErr error
}

func (m *memRepos) ListAccountGroups(context.Context) ([]core.AccountGroup, error) {
	return m.groups, m.groupsErr
}
func (m *memRepos) ListLedgerAccounts(context.Context) ([]core.LedgerAccount, error) {
	return m.ledgers, nil
}
func (m *memRepos) ListJournalVouchers(_ context.Context, upTo time.Time) ([]core.JournalVoucher, error) {
	var out []core.JournalVoucher
	for _, v := range m.vouchers {
		if !v.Date.After(upTo) {
			out = append(out, v)
		}
	}
	return out, nil
}
func (m *memRepos) ListSalesInvoices(_ context.Context, upTo time.Time) ([]core.SalesInvoice, error) {
	var out []core.SalesInvoice
	for _, inv := range m.invoices {
		if !inv.Date.After(upTo) {
			out = append(out, inv)
		}
	}
	return out, nil
}
func (m *memRepos) ListStockValuations(context.Context) ([]core.StockValuation, error) {
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

func fixtureRepos() *memRepos {
	return &memRepos{
		groups: []core.AccountGroup{
			{ID: "g-assets", Name: "Assets", Nature: core.Asset, SortKey: 1},
			{ID: "g-equity", Name: "Equity", Nature: core.Equity, SortKey: 2},
		},
		ledgers: []core.LedgerAccount{
			{
				ID: "l-cash", Name: "Cash", GroupID: "g-assets",
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

func newService(m *memRepos) app.ApplicationService {
	return app.NewAppService(app.Repositories{
		Groups:   m,
		Ledgers:  m,
		Vouchers: m,
		Invoices: m,
		Stock:    m,
	})
}

func TestGetBalanceSheet(t *testing.T) {
	svc := newService(fixtureRepos())

	result, err := svc.GetBalanceSheet(context.Background(), day("2024-05-31"))
	if err != nil {
		t.Fatalf("GetBalanceSheet: %v", err)
	}
	if result.BuildID == "" {
		t.Error("build id must be set")
	}
	if result.AsOf != "2024-05-31" {
		t.Errorf("as_of = %s, want 2024-05-31", result.AsOf)
	}
	if result.TotalAssets != "1000.00" {
		t.Errorf("total assets = %s, want 1000.00", result.TotalAssets)
	}
	if result.TotalLiabilitiesAndEquity != "1000.00" {
		t.Errorf("total liabilities+equity = %s, want 1000.00", result.TotalLiabilitiesAndEquity)
	}
	if !result.Balanced {
		t.Errorf("expected balanced result, delta %s", result.IdentityDelta)
	}
}

func TestGetTrialBalance(t *testing.T) {
	svc := newService(fixtureRepos())

	result, err := svc.GetTrialBalance(context.Background(), day("2024-05-31"))
	if err != nil {
		t.Fatalf("GetTrialBalance: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if result.TotalDebit != "1000.00" || result.TotalCredit != "1000.00" {
		t.Errorf("totals = %s / %s, want 1000.00 / 1000.00", result.TotalDebit, result.TotalCredit)
	}
}

func TestGetProfitAndLoss_EmptyChart(t *testing.T) {
	svc := newService(fixtureRepos())

	result, err := svc.GetProfitAndLoss(context.Background(), day("2024-05-31"))
	if err != nil {
		t.Fatalf("GetProfitAndLoss: %v", err)
	}
	if result.NetProfit != "0.00" {
		t.Errorf("net profit = %s, want 0.00", result.NetProfit)
	}
}

func TestGetBalanceSheet_RepositoryFailure(t *testing.T) {
	repos := fixtureRepos()
	repos.groupsErr = errors.New("store offline")
	svc := newService(repos)

	if _, err := svc.GetBalanceSheet(context.Background(), day("2024-05-31")); err == nil {
		t.Fatal("expected error when a collaborator store is unavailable")
	}
}

func TestGetBalanceSheet_MisconfiguredChart(t *testing.T) {
	repos := fixtureRepos()
	repos.groups = append(repos.groups, core.AccountGroup{
		ID: "g-bad", Name: "Bad", Nature: core.Asset, ParentID: "nope",
	})
	svc := newService(repos)

	_, err := svc.GetBalanceSheet(context.Background(), day("2024-05-31"))
	if !errors.Is(err, core.ErrDanglingParent) {
		t.Fatalf("expected ErrDanglingParent, got %v", err)
	}
}
