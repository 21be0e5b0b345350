package core

import "github.com/shopspring/decimal"

// LedgerBalance pairs a ledger account with its signed balance.
type LedgerBalance struct {
	Ledger  LedgerAccount
	Balance decimal.Decimal
}

// GroupTotal is one node of a rolled-up statement tree: the group's own
// ledgers with their balances, the retained child subtrees, and the
// post-order total over both.
type GroupTotal struct {
	Group    AccountGroup
	Ledgers  []LedgerBalance
	Children []GroupTotal
	Total    decimal.Decimal
}

// RollupEngine recursively sums ledger and sub-group balances up the
// account tree. Totals depend only on addition, so they are independent of
// traversal order.
type RollupEngine struct {
	tree *AccountTree
}

func NewRollupEngine(tree *AccountTree) *RollupEngine {
	return &RollupEngine{tree: tree}
}

// Rollup computes the post-order total for group and its descendants.
// A child subtree with no ledgers, no children of its own, and a zero total
// is omitted from the node list to avoid rendering empty sections; being
// zero, its omission cannot change the parent total.
func (e *RollupEngine) Rollup(group AccountGroup, balances map[string]decimal.Decimal) GroupTotal {
	node := GroupTotal{Group: group, Total: decimal.Zero}

	for _, l := range e.tree.LedgersOf(group.ID) {
		bal := balances[l.ID]
		node.Ledgers = append(node.Ledgers, LedgerBalance{Ledger: l, Balance: bal})
		node.Total = node.Total.Add(bal)
	}

	for _, child := range e.tree.ChildrenOf(group.ID) {
		sub := e.Rollup(child, balances)
		node.Total = node.Total.Add(sub.Total)
		if len(sub.Ledgers) == 0 && len(sub.Children) == 0 && sub.Total.IsZero() {
			continue
		}
		node.Children = append(node.Children, sub)
	}
	return node
}
