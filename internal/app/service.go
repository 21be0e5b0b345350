package app

import (
	"context"
	"fmt"
	"time"

	"ledger-engine/internal/core"
	"ledger-engine/internal/ids"
	"ledger-engine/internal/obs"
)

// ApplicationService is the single interface both adapters (web, CLI) call.
// It decouples presentation from the aggregation engine; implementations
// contain no display logic.
type ApplicationService interface {
	// GetBalanceSheet computes the balance sheet as of cutoff.
	GetBalanceSheet(ctx context.Context, cutoff time.Time) (*BalanceSheetResult, error)

	// GetProfitAndLoss computes the P&L statement as of cutoff.
	GetProfitAndLoss(ctx context.Context, cutoff time.Time) (*ProfitAndLossResult, error)

	// GetTrialBalance computes the flat per-ledger trial balance as of cutoff.
	GetTrialBalance(ctx context.Context, cutoff time.Time) (*TrialBalanceResult, error)
}

// Repositories bundles the read-only collaborator stores the engine
// aggregates over.
type Repositories struct {
	Groups   core.AccountGroupRepository
	Ledgers  core.LedgerAccountRepository
	Vouchers core.JournalVoucherRepository
	Invoices core.SalesInvoiceRepository
	Stock    core.StockValuationRepository
}

type appService struct {
	repos Repositories
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(repos Repositories) ApplicationService {
	return &appService{repos: repos}
}

// buildEngine loads the chart snapshot and wires the full pipeline. Every
// request gets a fresh tree: the inputs are point-in-time snapshots and a
// full recompute keeps the statement consistent with whatever the stores
// hold right now.
func (s *appService) buildEngine(ctx context.Context) (*core.StatementBuilder, error) {
	groups, err := s.repos.Groups.ListAccountGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("load account groups: %w", err)
	}
	ledgers, err := s.repos.Ledgers.ListLedgerAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger accounts: %w", err)
	}

	tree, err := core.NewAccountTree(groups, ledgers)
	if err != nil {
		return nil, fmt.Errorf("build account tree: %w", err)
	}

	agg := core.NewBalanceAggregator(tree,
		core.NewOpeningBalanceSource(s.repos.Ledgers),
		core.NewInventoryValuationSource(s.repos.Stock, tree),
		core.NewInvoiceSource(s.repos.Invoices, tree),
		core.NewJournalVoucherSource(s.repos.Vouchers, tree),
	)
	return core.NewStatementBuilder(tree, agg), nil
}

func (s *appService) GetBalanceSheet(ctx context.Context, cutoff time.Time) (*BalanceSheetResult, error) {
	buildID := ids.New()
	start := time.Now()

	builder, err := s.buildEngine(ctx)
	if err != nil {
		obs.ReportBuild("balance_sheet", "failed", time.Since(start))
		return nil, err
	}
	bs, err := builder.BuildBalanceSheet(ctx, cutoff)
	if err != nil {
		obs.ReportBuild("balance_sheet", "failed", time.Since(start))
		return nil, err
	}

	finishBuild("balance_sheet", buildID, start, cutoff, bs.Warnings)
	return toBalanceSheetResult(buildID, bs), nil
}

func (s *appService) GetProfitAndLoss(ctx context.Context, cutoff time.Time) (*ProfitAndLossResult, error) {
	buildID := ids.New()
	start := time.Now()

	builder, err := s.buildEngine(ctx)
	if err != nil {
		obs.ReportBuild("pnl", "failed", time.Since(start))
		return nil, err
	}
	pl, err := builder.BuildProfitAndLoss(ctx, cutoff)
	if err != nil {
		obs.ReportBuild("pnl", "failed", time.Since(start))
		return nil, err
	}

	finishBuild("pnl", buildID, start, cutoff, pl.Warnings)
	return toProfitAndLossResult(buildID, pl), nil
}

func (s *appService) GetTrialBalance(ctx context.Context, cutoff time.Time) (*TrialBalanceResult, error) {
	buildID := ids.New()
	start := time.Now()

	builder, err := s.buildEngine(ctx)
	if err != nil {
		obs.ReportBuild("trial_balance", "failed", time.Since(start))
		return nil, err
	}
	tb, err := builder.BuildTrialBalance(ctx, cutoff)
	if err != nil {
		obs.ReportBuild("trial_balance", "failed", time.Since(start))
		return nil, err
	}

	finishBuild("trial_balance", buildID, start, cutoff, tb.Warnings)
	return toTrialBalanceResult(buildID, tb), nil
}

// finishBuild records the terminal metrics and emits one structured log
// line per completed statement build.
func finishBuild(report, buildID string, start time.Time, cutoff time.Time, warnings []core.Warning) {
	elapsed := time.Since(start)
	obs.ReportBuild(report, "ready", elapsed)
	for _, w := range warnings {
		obs.ReportWarning(string(w.Kind))
	}
	obs.LogEvent(map[string]any{
		"msg":         "statement build ready",
		"report":      report,
		"build_id":    buildID,
		"as_of":       cutoff.Format("2006-01-02"),
		"warnings":    len(warnings),
		"duration_ms": elapsed.Milliseconds(),
	})
}
