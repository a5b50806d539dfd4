// Package verify produces read-side safety reports for launches. It is
// independent of the admission path: reports observe history, they
// never gate purchases.
package verify

// Status grades a check group or a whole report.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Check is one named verification with its outcome.
type Check struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// CheckGroup is the result of one rule family.
type CheckGroup struct {
	Status Status  `json:"status"`
	Checks []Check `json:"checks"`
}

// Purchase is one admitted purchase as seen by the verifier.
// TxSignature is optional; without it bundle detection falls back to
// the timing heuristic alone.
type Purchase struct {
	Wallet      string
	Amount      uint64
	Timestamp   int64 // unix seconds
	TxSignature string
}

// Authorities is the observed on-chain authority state of a token.
// Nil pointers mean revoked.
type Authorities struct {
	MintAuthority   *string
	FreezeAuthority *string
	Verified        bool
	CheckedAt       int64 // unix seconds, meaningful when Verified
}

// Report is a complete verification of one launch.
type Report struct {
	LaunchID    string     `json:"launch_id"`
	AntiSnipe   CheckGroup `json:"anti_snipe"`
	AntiBundle  CheckGroup `json:"anti_bundle"`
	AntiRug     CheckGroup `json:"anti_rug"`
	Overall     Status     `json:"overall_status"`
	GeneratedAt int64      `json:"generated_at"`
	VerifiedBy  string     `json:"verified_by"`
}

// statusFor grades a group: all checks passing is PASS, at least
// warnRatio of them WARN, anything less FAIL.
func statusFor(passed, total int, warnRatio float64) Status {
	if passed == total {
		return StatusPass
	}
	if float64(passed) >= float64(total)*warnRatio {
		return StatusWarn
	}
	return StatusFail
}
