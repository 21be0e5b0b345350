package core

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// identityEpsilon bounds acceptable rounding drift between TotalAssets and
// TotalLiabilitiesAndEquity before the mismatch is flagged.
var identityEpsilon = decimal.NewFromFloat(0.01)

// GroupNode mirrors GroupTotal with amounts converted to statement sign:
// credit-natural sections (liabilities, equity, income) are shown positive.
type GroupNode struct {
	GroupID  string
	Name     string
	Ledgers  []LedgerLine
	Children []GroupNode
	Total    decimal.Decimal
}

// LedgerLine is one ledger row of a statement section.
type LedgerLine struct {
	LedgerID string
	Name     string
	Balance  decimal.Decimal
}

// Section is one statement bucket: the rolled-up root groups of a single
// nature plus the section total, all in reported (display-positive) sign.
type Section struct {
	Nature Nature
	Groups []GroupNode
	Total  decimal.Decimal
}

// BalanceSheet is the assembled statement as of a cutoff date. The
// accounting identity is checked on every build and reported via Balanced
// and IdentityDelta; a mismatch is surfaced as a warning, never hidden or
// plugged.
type BalanceSheet struct {
	Cutoff                    time.Time
	Assets                    Section
	Liabilities               Section
	Equity                    Section
	ProfitAndLoss             decimal.Decimal
	TotalAssets               decimal.Decimal
	TotalLiabilities          decimal.Decimal
	TotalEquity               decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
	IdentityDelta             decimal.Decimal
	Balanced                  bool
	Warnings                  []Warning
}

// ProfitAndLoss is the Income minus Expense statement for all activity up
// to the cutoff date.
type ProfitAndLoss struct {
	Cutoff    time.Time
	Income    Section
	Expense   Section
	NetProfit decimal.Decimal
	Warnings  []Warning
}

// TrialBalanceRow is one ledger's balance split into debit/credit columns.
type TrialBalanceRow struct {
	LedgerID string
	Name     string
	Debit    decimal.Decimal
	Credit   decimal.Decimal
}

// TrialBalance is the flat per-ledger view of the same signed balance map
// the statements roll up. Column totals that disagree point at unbalanced
// or dropped postings.
type TrialBalance struct {
	Cutoff      time.Time
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Balanced    bool
	Warnings    []Warning
}

// StatementBuilder assembles balance sheets and P&L statements from
// aggregated balances. It is a pure, idempotent read path: each call
// recomputes from the current snapshots and either returns a complete
// statement or fails.
type StatementBuilder struct {
	tree   *AccountTree
	agg    *BalanceAggregator
	rollup *RollupEngine
}

func NewStatementBuilder(tree *AccountTree, agg *BalanceAggregator) *StatementBuilder {
	return &StatementBuilder{tree: tree, agg: agg, rollup: NewRollupEngine(tree)}
}

// reportedSign is -1 for credit-natural natures so their statement amounts
// read positive, +1 otherwise.
func reportedSign(n Nature) decimal.Decimal {
	switch n {
	case Liability, Equity, Income:
		return decimal.NewFromInt(-1)
	default:
		return decimal.NewFromInt(1)
	}
}

func toGroupNode(gt GroupTotal, sign decimal.Decimal) GroupNode {
	node := GroupNode{
		GroupID: gt.Group.ID,
		Name:    gt.Group.Name,
		Total:   gt.Total.Mul(sign),
	}
	for _, lb := range gt.Ledgers {
		node.Ledgers = append(node.Ledgers, LedgerLine{
			LedgerID: lb.Ledger.ID,
			Name:     lb.Ledger.Name,
			Balance:  lb.Balance.Mul(sign),
		})
	}
	for _, child := range gt.Children {
		node.Children = append(node.Children, toGroupNode(child, sign))
	}
	return node
}

// buildSection rolls up every root group of the given nature and converts
// the result to reported sign.
func (b *StatementBuilder) buildSection(n Nature, balances map[string]decimal.Decimal) Section {
	sec := Section{Nature: n, Total: decimal.Zero}
	sign := reportedSign(n)
	for _, root := range b.tree.GroupsByNature(n) {
		gt := b.rollup.Rollup(root, balances)
		node := toGroupNode(gt, sign)
		sec.Groups = append(sec.Groups, node)
		sec.Total = sec.Total.Add(node.Total)
	}
	return sec
}

// pnlTotals computes income and expense in a single pass over the signed
// balance map, keyed by each ledger's own nature. Income ledgers are
// credit-natural (negative in debit-minus-credit form), so income is the
// negated sum; a debit-balance contra-income ledger correctly reduces it.
func (b *StatementBuilder) pnlTotals(balances map[string]decimal.Decimal) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for id, bal := range balances {
		ledger, ok := b.tree.Ledger(id)
		if !ok {
			continue
		}
		switch ledger.Nature {
		case Income:
			income = income.Sub(bal)
		case Expense:
			expense = expense.Add(bal)
		}
	}
	return income, expense
}

// BuildBalanceSheet computes every ledger balance as of cutoff, rolls the
// Asset, Liability, and Equity trees, folds the current-period P&L into
// equity, and checks the accounting identity. The two sides are still
// assembled from the signed balance map independently enough to diverge
// when postings are unbalanced or a ledger failed to resolve; that
// divergence is reported, not repaired.
func (b *StatementBuilder) BuildBalanceSheet(ctx context.Context, cutoff time.Time) (*BalanceSheet, error) {
	set, err := b.agg.ComputeBalances(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	bs := &BalanceSheet{Cutoff: cutoff, Warnings: set.Warnings}
	bs.Assets = b.buildSection(Asset, set.Balances)
	bs.Liabilities = b.buildSection(Liability, set.Balances)
	bs.Equity = b.buildSection(Equity, set.Balances)

	income, expense := b.pnlTotals(set.Balances)
	bs.ProfitAndLoss = income.Sub(expense)

	bs.TotalAssets = bs.Assets.Total
	bs.TotalLiabilities = bs.Liabilities.Total
	bs.TotalEquity = bs.Equity.Total.Add(bs.ProfitAndLoss)
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)
	bs.IdentityDelta = bs.TotalAssets.Sub(bs.TotalLiabilitiesAndEquity)
	bs.Balanced = bs.IdentityDelta.Abs().LessThanOrEqual(identityEpsilon)
	if !bs.Balanced {
		bs.Warnings = append(bs.Warnings, Warning{
			Kind:   WarnIdentityMismatch,
			Source: "statement",
			Detail: fmt.Sprintf("assets %s != liabilities+equity %s (delta %s)",
				bs.TotalAssets.StringFixed(2),
				bs.TotalLiabilitiesAndEquity.StringFixed(2),
				bs.IdentityDelta.StringFixed(2)),
		})
	}
	return bs, nil
}

// BuildProfitAndLoss computes the Income and Expense sections as of cutoff.
// NetProfit uses the same single-pass ledger-nature totals as the balance
// sheet, so the figure folded into equity always matches this statement.
func (b *StatementBuilder) BuildProfitAndLoss(ctx context.Context, cutoff time.Time) (*ProfitAndLoss, error) {
	set, err := b.agg.ComputeBalances(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	pl := &ProfitAndLoss{Cutoff: cutoff, Warnings: set.Warnings}
	pl.Income = b.buildSection(Income, set.Balances)
	pl.Expense = b.buildSection(Expense, set.Balances)

	income, expense := b.pnlTotals(set.Balances)
	pl.NetProfit = income.Sub(expense)
	return pl, nil
}

// BuildTrialBalance lists every ledger with its balance in the debit or
// credit column as of cutoff, ordered by ledger name.
func (b *StatementBuilder) BuildTrialBalance(ctx context.Context, cutoff time.Time) (*TrialBalance, error) {
	set, err := b.agg.ComputeBalances(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	tb := &TrialBalance{
		Cutoff:      cutoff,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Warnings:    set.Warnings,
	}
	for _, l := range b.tree.Ledgers() {
		bal := set.Balances[l.ID]
		row := TrialBalanceRow{LedgerID: l.ID, Name: l.Name, Debit: decimal.Zero, Credit: decimal.Zero}
		if bal.IsNegative() {
			row.Credit = bal.Neg()
		} else {
			row.Debit = bal
		}
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
		tb.Rows = append(tb.Rows, row)
	}
	tb.Balanced = tb.TotalDebit.Sub(tb.TotalCredit).Abs().LessThanOrEqual(identityEpsilon)
	return tb, nil
}
