package core

import "errors"

// Configuration errors abort tree construction before any computation runs.
var (
	ErrDanglingParent = errors.New("account group references nonexistent parent")
	ErrHierarchyCycle = errors.New("account group hierarchy contains a cycle")
	ErrUnknownGroup   = errors.New("ledger account references nonexistent group")
)

// WarningKind classifies a non-fatal data-quality finding.
type WarningKind string

const (
	// WarnUnresolvedLedger: a voucher line, invoice posting, or stock label
	// could not be matched to a ledger account; its contribution was dropped.
	WarnUnresolvedLedger WarningKind = "unresolved_ledger"
	// WarnUnbalancedVoucher: a voucher's debits do not equal its credits.
	WarnUnbalancedVoucher WarningKind = "unbalanced_voucher"
	// WarnIdentityMismatch: TotalAssets differs from
	// TotalLiabilitiesAndEquity beyond the rounding epsilon.
	WarnIdentityMismatch WarningKind = "identity_mismatch"
)

// Warning is accumulated during a statement build and returned alongside the
// best-effort result. A single bad record must not block an entire balance
// sheet, but operators need to see it to fix the data.
type Warning struct {
	Kind   WarningKind
	Source string
	Ref    string
	Detail string
}
