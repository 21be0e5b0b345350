package core_test

import (
	"context"
	"testing"

	"ledger-engine/internal/core"
)

// TestBuildBalanceSheet_EndToEnd is the canonical scenario: Cash 1000 Dr
// opening under Assets, Capital 1000 Cr opening under Equity, one voucher
// debiting Cash 200 and crediting Capital 200 inside the cutoff.
func TestBuildBalanceSheet_EndToEnd(t *testing.T) {
	store := standardChart()
	store.vouchers = []core.JournalVoucher{{
		ID: "v1", Date: day("2024-05-10"), Narration: "additional capital",
		Lines: []core.VoucherLine{
			{LedgerID: "l-cash", Debit: dec("200")},
			{LedgerID: "l-capital", Credit: dec("200")},
		},
	}}
	_, builder := buildEngine(t, store)

	bs, err := builder.BuildBalanceSheet(context.Background(), day("2024-05-31"))
	if err != nil {
		t.Fatalf("BuildBalanceSheet: %v", err)
	}

	if !bs.TotalAssets.Equal(dec("1200")) {
		t.Errorf("TotalAssets = %s, want 1200", bs.TotalAssets)
	}
	if !bs.TotalEquity.Equal(dec("1200")) {
		t.Errorf("TotalEquity = %s, want 1200", bs.TotalEquity)
	}
	if !bs.TotalLiabilitiesAndEquity.Equal(dec("1200")) {
		t.Errorf("TotalLiabilitiesAndEquity = %s, want 1200", bs.TotalLiabilitiesAndEquity)
	}
	if !bs.Balanced {
		t.Errorf("identity must hold exactly, delta = %s", bs.IdentityDelta)
	}
	if len(bs.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", bs.Warnings)
	}

	// Capital is credit-natural and must be reported as positive 1200.
	if len(bs.Equity.Groups) != 1 {
		t.Fatalf("expected 1 equity root, got %d", len(bs.Equity.Groups))
	}
	equity := bs.Equity.Groups[0]
	if len(equity.Ledgers) != 1 || !equity.Ledgers[0].Balance.Equal(dec("1200")) {
		t.Errorf("capital reported as %+v, want positive 1200", equity.Ledgers)
	}

	// Cash sits under the nested Current Assets group.
	assets := bs.Assets.Groups[0]
	if len(assets.Children) != 1 || assets.Children[0].Name != "Current Assets" {
		t.Fatalf("expected Current Assets child, got %+v", assets.Children)
	}
	if !assets.Children[0].Total.Equal(dec("1200")) {
		t.Errorf("Current Assets total = %s, want 1200", assets.Children[0].Total)
	}
}

// TestBuildBalanceSheet_BalancedVoucherPreservesIdentity: a balanced voucher
// shifts balances but leaves TotalAssets - TotalLiabilitiesAndEquity at zero
// for any cutoff on or after its date.
func TestBuildBalanceSheet_BalancedVoucherPreservesIdentity(t *testing.T) {
	for _, cutoff := range []string{"2024-05-10", "2024-05-31", "2025-01-01"} {
		store := standardChart()
		store.vouchers = []core.JournalVoucher{{
			ID: "v1", Date: day("2024-05-10"),
			Lines: []core.VoucherLine{
				{LedgerID: "l-cash", Debit: dec("500")},
				{LedgerID: "l-capital", Credit: dec("500")},
			},
		}}
		_, builder := buildEngine(t, store)

		bs, err := builder.BuildBalanceSheet(context.Background(), day(cutoff))
		if err != nil {
			t.Fatalf("cutoff %s: %v", cutoff, err)
		}
		if !bs.IdentityDelta.IsZero() {
			t.Errorf("cutoff %s: identity delta = %s, want 0", cutoff, bs.IdentityDelta)
		}
	}
}

func TestBuildBalanceSheet_UnbalancedVoucherSurfacesMismatch(t *testing.T) {
	store := standardChart()
	store.vouchers = []core.JournalVoucher{{
		ID: "v-bad", Date: day("2024-05-10"),
		Lines: []core.VoucherLine{
			{LedgerID: "l-cash", Debit: dec("300")},
			{LedgerID: "l-capital", Credit: dec("100")},
		},
	}}
	_, builder := buildEngine(t, store)

	bs, err := builder.BuildBalanceSheet(context.Background(), day("2024-05-31"))
	if err != nil {
		t.Fatalf("a data-quality problem must not abort the build: %v", err)
	}
	if bs.Balanced {
		t.Error("unbalanced postings must not report as balanced")
	}
	if !bs.IdentityDelta.Equal(dec("200")) {
		t.Errorf("identity delta = %s, want 200", bs.IdentityDelta)
	}
	if countWarnings(bs.Warnings, core.WarnUnbalancedVoucher) != 1 {
		t.Error("expected an unbalanced-voucher warning")
	}
	if countWarnings(bs.Warnings, core.WarnIdentityMismatch) != 1 {
		t.Error("expected an identity-mismatch warning")
	}
}

func TestBuildProfitAndLoss(t *testing.T) {
	store := standardChart()
	store.ledgers = append(store.ledgers,
		core.LedgerAccount{
			ID: "l-sales", Name: "Sales", GroupID: "g-income",
			Nature: core.Income, NormalSide: core.Credit,
		},
		core.LedgerAccount{
			ID: "l-rent", Name: "Office Rent", GroupID: "g-expense",
			Nature: core.Expense, NormalSide: core.Debit,
		},
	)
	store.vouchers = []core.JournalVoucher{
		{ID: "v1", Date: day("2024-05-05"), Lines: []core.VoucherLine{
			{LedgerID: "l-cash", Debit: dec("5000")},
			{LedgerID: "l-sales", Credit: dec("5000")},
		}},
		{ID: "v2", Date: day("2024-05-20"), Lines: []core.VoucherLine{
			{LedgerID: "l-rent", Debit: dec("2000")},
			{LedgerID: "l-cash", Credit: dec("2000")},
		}},
	}
	_, builder := buildEngine(t, store)

	pl, err := builder.BuildProfitAndLoss(context.Background(), day("2024-05-31"))
	if err != nil {
		t.Fatalf("BuildProfitAndLoss: %v", err)
	}
	if !pl.Income.Total.Equal(dec("5000")) {
		t.Errorf("income = %s, want 5000 (credit balance reported positive)", pl.Income.Total)
	}
	if !pl.Expense.Total.Equal(dec("2000")) {
		t.Errorf("expense = %s, want 2000", pl.Expense.Total)
	}
	if !pl.NetProfit.Equal(dec("3000")) {
		t.Errorf("net profit = %s, want 3000", pl.NetProfit)
	}
}

// TestBuildBalanceSheet_PnLFoldsIntoEquity checks the P&L bridge: income
// 5000 and expense 2000 raise TotalEquity by 3000 and keep the identity.
func TestBuildBalanceSheet_PnLFoldsIntoEquity(t *testing.T) {
	store := standardChart()
	store.ledgers = append(store.ledgers,
		core.LedgerAccount{
			ID: "l-sales", Name: "Sales", GroupID: "g-income",
			Nature: core.Income, NormalSide: core.Credit,
		},
		core.LedgerAccount{
			ID: "l-rent", Name: "Office Rent", GroupID: "g-expense",
			Nature: core.Expense, NormalSide: core.Debit,
		},
	)
	store.vouchers = []core.JournalVoucher{
		{ID: "v1", Date: day("2024-05-05"), Lines: []core.VoucherLine{
			{LedgerID: "l-cash", Debit: dec("5000")},
			{LedgerID: "l-sales", Credit: dec("5000")},
		}},
		{ID: "v2", Date: day("2024-05-20"), Lines: []core.VoucherLine{
			{LedgerID: "l-rent", Debit: dec("2000")},
			{LedgerID: "l-cash", Credit: dec("2000")},
		}},
	}
	_, builder := buildEngine(t, store)

	bs, err := builder.BuildBalanceSheet(context.Background(), day("2024-05-31"))
	if err != nil {
		t.Fatalf("BuildBalanceSheet: %v", err)
	}
	if !bs.ProfitAndLoss.Equal(dec("3000")) {
		t.Errorf("P&L = %s, want 3000", bs.ProfitAndLoss)
	}
	if !bs.TotalEquity.Equal(dec("4000")) {
		t.Errorf("TotalEquity = %s, want 4000 (capital 1000 + profit 3000)", bs.TotalEquity)
	}
	if !bs.TotalAssets.Equal(dec("4000")) {
		t.Errorf("TotalAssets = %s, want 4000", bs.TotalAssets)
	}
	if !bs.Balanced {
		t.Errorf("identity must hold, delta = %s", bs.IdentityDelta)
	}
}

func TestBuildBalanceSheet_InvoicePostingsKeepIdentity(t *testing.T) {
	store := invoiceChart()
	store.invoices = []core.SalesInvoice{{
		ID: "inv1", Date: day("2024-05-15"), CustomerLedgerID: "l-debtors",
		GrandTotal: dec("1180"), TaxableValue: dec("1000"),
		Taxes: []core.TaxLine{
			{Label: "Output GST - CGST", Role: core.RoleOutputGSTCGST, Amount: dec("90")},
			{Label: "Output GST - SGST", Amount: dec("90")},
		},
	}}
	_, builder := buildEngine(t, store)

	bs, err := builder.BuildBalanceSheet(context.Background(), day("2024-05-31"))
	if err != nil {
		t.Fatalf("BuildBalanceSheet: %v", err)
	}
	if !bs.Balanced {
		t.Errorf("invoice postings are balanced by construction, delta = %s", bs.IdentityDelta)
	}
	if !bs.TotalAssets.Equal(dec("2180")) {
		t.Errorf("TotalAssets = %s, want 2180 (cash 1000 + receivable 1180)", bs.TotalAssets)
	}
	if !bs.TotalLiabilities.Equal(dec("180")) {
		t.Errorf("TotalLiabilities = %s, want 180 (GST output)", bs.TotalLiabilities)
	}
	if !bs.ProfitAndLoss.Equal(dec("1000")) {
		t.Errorf("P&L = %s, want 1000 (taxable value recognized once)", bs.ProfitAndLoss)
	}
}

func TestBuildTrialBalance(t *testing.T) {
	store := standardChart()
	store.vouchers = []core.JournalVoucher{{
		ID: "v1", Date: day("2024-05-10"),
		Lines: []core.VoucherLine{
			{LedgerID: "l-cash", Debit: dec("200")},
			{LedgerID: "l-capital", Credit: dec("200")},
		},
	}}
	_, builder := buildEngine(t, store)

	tb, err := builder.BuildTrialBalance(context.Background(), day("2024-05-31"))
	if err != nil {
		t.Fatalf("BuildTrialBalance: %v", err)
	}
	if len(tb.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tb.Rows))
	}
	// Rows are ordered by ledger name: Capital before Cash.
	if tb.Rows[0].Name != "Capital" || !tb.Rows[0].Credit.Equal(dec("1200")) {
		t.Errorf("row 0 = %+v, want Capital credit 1200", tb.Rows[0])
	}
	if tb.Rows[1].Name != "Cash" || !tb.Rows[1].Debit.Equal(dec("1200")) {
		t.Errorf("row 1 = %+v, want Cash debit 1200", tb.Rows[1])
	}
	if !tb.TotalDebit.Equal(tb.TotalCredit) || !tb.Balanced {
		t.Errorf("trial balance must balance: Dr %s / Cr %s", tb.TotalDebit, tb.TotalCredit)
	}
}
