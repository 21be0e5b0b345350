package core

import (
	"fmt"
	"sort"
	"strings"
)

// AccountTree indexes the chart of accounts: groups keyed by id with
// parent-to-children adjacency, ledgers keyed by id and by owning group.
// Construction validates the whole hierarchy; a tree that builds is safe to
// walk without further checks.
type AccountTree struct {
	groups         map[string]AccountGroup
	children       map[string][]string
	ledgers        map[string]LedgerAccount
	ledgersByGroup map[string][]string
	roots          []string
	byLabel        map[string]string
	byRole         map[SystemRole]string
}

// NewAccountTree loads all groups and ledgers into an indexed arena,
// resolves parent links by id, and runs a cycle-detection pass before
// exposing any tree-walking API. Malformed hierarchies are rejected rather
// than silently truncated.
func NewAccountTree(groups []AccountGroup, ledgers []LedgerAccount) (*AccountTree, error) {
	t := &AccountTree{
		groups:         make(map[string]AccountGroup, len(groups)),
		children:       make(map[string][]string),
		ledgers:        make(map[string]LedgerAccount, len(ledgers)),
		ledgersByGroup: make(map[string][]string),
		byLabel:        make(map[string]string, len(ledgers)),
		byRole:         make(map[SystemRole]string),
	}

	for _, g := range groups {
		t.groups[g.ID] = g
	}
	for _, g := range groups {
		if g.ParentID == "" {
			t.roots = append(t.roots, g.ID)
			continue
		}
		if _, ok := t.groups[g.ParentID]; !ok {
			return nil, fmt.Errorf("group %s (%q) -> parent %s: %w", g.ID, g.Name, g.ParentID, ErrDanglingParent)
		}
		t.children[g.ParentID] = append(t.children[g.ParentID], g.ID)
	}

	// Walk the parent chain of every group with a visited set. Dangling
	// parents were rejected above, so a walk that never repeats a node must
	// terminate at a root.
	for _, g := range groups {
		seen := make(map[string]bool)
		for cur := g.ID; cur != ""; cur = t.groups[cur].ParentID {
			if seen[cur] {
				return nil, fmt.Errorf("group %s (%q): %w", g.ID, g.Name, ErrHierarchyCycle)
			}
			seen[cur] = true
		}
	}

	for _, l := range ledgers {
		if _, ok := t.groups[l.GroupID]; !ok {
			return nil, fmt.Errorf("ledger %s (%q) -> group %s: %w", l.ID, l.Name, l.GroupID, ErrUnknownGroup)
		}
		t.ledgers[l.ID] = l
		t.ledgersByGroup[l.GroupID] = append(t.ledgersByGroup[l.GroupID], l.ID)
		if key := normalizeLabel(l.Name); key != "" {
			if _, taken := t.byLabel[key]; !taken {
				t.byLabel[key] = l.ID
			}
		}
		if l.Role != RoleNone {
			if _, taken := t.byRole[l.Role]; !taken {
				t.byRole[l.Role] = l.ID
			}
		}
	}

	return t, nil
}

// Group returns the group with the given id.
func (t *AccountTree) Group(id string) (AccountGroup, bool) {
	g, ok := t.groups[id]
	return g, ok
}

// Ledger returns the ledger account with the given id.
func (t *AccountTree) Ledger(id string) (LedgerAccount, bool) {
	l, ok := t.ledgers[id]
	return l, ok
}

// Ledgers returns every ledger account, ordered by name then id.
func (t *AccountTree) Ledgers() []LedgerAccount {
	out := make([]LedgerAccount, 0, len(t.ledgers))
	for _, l := range t.ledgers {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GroupsByNature returns the root groups of the given nature, for statement
// sectioning. Rollup is recursive beneath them, so only parentless groups
// are entry points.
func (t *AccountTree) GroupsByNature(n Nature) []AccountGroup {
	var out []AccountGroup
	for _, id := range t.roots {
		g := t.groups[id]
		if g.Nature == n {
			out = append(out, g)
		}
	}
	sortGroups(out)
	return out
}

// ChildrenOf returns the direct child groups of groupID in sort-key order.
func (t *AccountTree) ChildrenOf(groupID string) []AccountGroup {
	ids := t.children[groupID]
	out := make([]AccountGroup, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.groups[id])
	}
	sortGroups(out)
	return out
}

// LedgersOf returns the ledger accounts posted directly under groupID,
// ordered by name.
func (t *AccountTree) LedgersOf(groupID string) []LedgerAccount {
	ids := t.ledgersByGroup[groupID]
	out := make([]LedgerAccount, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.ledgers[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ResolveLedgerByRole returns the ledger tagged with the given system role.
// This is the stable lookup for well-known ledgers; label matching is the
// fallback for charts that predate role tags.
func (t *AccountTree) ResolveLedgerByRole(role SystemRole) (*LedgerAccount, bool) {
	if role == RoleNone {
		return nil, false
	}
	id, ok := t.byRole[role]
	if !ok {
		return nil, false
	}
	l := t.ledgers[id]
	return &l, true
}

// ResolveLedgerByLabel matches candidate display names against ledger names,
// normalizing case, punctuation, and whitespace before comparing. It returns
// not-found rather than erroring; the caller must surface the miss, since a
// misnamed ledger silently drops its postings otherwise.
func (t *AccountTree) ResolveLedgerByLabel(candidates []string) (*LedgerAccount, bool) {
	for _, c := range candidates {
		key := normalizeLabel(c)
		if key == "" {
			continue
		}
		if id, ok := t.byLabel[key]; ok {
			l := t.ledgers[id]
			return &l, true
		}
	}
	return nil, false
}

func sortGroups(gs []AccountGroup) {
	sort.Slice(gs, func(i, j int) bool {
		if gs[i].SortKey != gs[j].SortKey {
			return gs[i].SortKey < gs[j].SortKey
		}
		if gs[i].Name != gs[j].Name {
			return gs[i].Name < gs[j].Name
		}
		return gs[i].ID < gs[j].ID
	})
}

// normalizeLabel reduces a display name to lowercase alphanumerics, so
// "Stock-in-Hand – Finished Goods" and "stock in hand finished goods"
// compare equal regardless of dash style, case, or spacing.
func normalizeLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
