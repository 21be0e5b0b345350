package core

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// BalanceSet is the output of one balance computation: every known ledger's
// signed balance as of the cutoff, plus the warnings accumulated while
// resolving contributions.
type BalanceSet struct {
	Cutoff   time.Time
	Balances map[string]decimal.Decimal
	Warnings []Warning
}

// BalanceAggregator folds the contributions of every transaction source
// into per-ledger signed balances. It is a full recompute on every call:
// the inputs are read-only snapshots, so no incremental state is kept.
type BalanceAggregator struct {
	tree    *AccountTree
	sources []TransactionSource
}

func NewBalanceAggregator(tree *AccountTree, sources ...TransactionSource) *BalanceAggregator {
	return &BalanceAggregator{tree: tree, sources: sources}
}

// ComputeBalances initializes every known ledger to zero, fetches all
// sources concurrently, then folds their contributions in the order the
// sources were registered. The fold order cannot change the sums, but a
// fixed order keeps per-source logging reproducible. If any source fails or
// the context is cancelled the whole computation fails; a partial balance
// sheet would violate the accounting identity worse than no sheet at all.
func (a *BalanceAggregator) ComputeBalances(ctx context.Context, cutoff time.Time) (*BalanceSet, error) {
	type fetched struct {
		amounts  map[string]decimal.Decimal
		warnings []Warning
	}
	results := make([]fetched, len(a.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			amounts, warnings, err := src.Contributions(gctx, cutoff)
			if err != nil {
				return fmt.Errorf("source %s unavailable: %w", src.Name(), err)
			}
			results[i] = fetched{amounts: amounts, warnings: warnings}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &BalanceSet{
		Cutoff:   cutoff,
		Balances: make(map[string]decimal.Decimal, len(a.tree.ledgers)),
	}
	for id := range a.tree.ledgers {
		set.Balances[id] = decimal.Zero
	}
	for _, res := range results {
		for id, amt := range res.amounts {
			set.Balances[id] = set.Balances[id].Add(amt)
		}
		set.Warnings = append(set.Warnings, res.warnings...)
	}
	return set, nil
}
