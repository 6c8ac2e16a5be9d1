package domain

import "github.com/shopspring/decimal"

// ShareViolation is a per-transaction mismatch between the recorded amount
// for one share and the independently recomputed expectation.
type ShareViolation struct {
	Share    Share `json:"share"`
	Expected int64 `json:"expected"`
	Actual   int64 `json:"actual"`
}

// TotalMismatch flags a transaction whose recorded shares do not account
// for its basis amount.
type TotalMismatch struct {
	Basis       int64 `json:"basis"`
	RecordedSum int64 `json:"recorded_sum"`
}

// TransactionResult is the audit outcome for a single transaction.
type TransactionResult struct {
	ID                string           `json:"id"`
	Basis             int64            `json:"basis"`
	UsedFallbackBasis bool             `json:"used_fallback_basis,omitempty"`
	Degenerate        bool             `json:"degenerate,omitempty"`
	Expected          Allocation       `json:"expected"`
	Violations        []ShareViolation `json:"violations,omitempty"`
	TotalMismatch     *TotalMismatch   `json:"total_mismatch,omitempty"`
}

// Compliant reports whether the transaction passed every per-transaction
// check. Fallback basis and degenerate amounts are reportable flags, not
// violations by themselves.
func (r TransactionResult) Compliant() bool {
	return len(r.Violations) == 0 && r.TotalMismatch == nil
}

// GlobalSplitViolation is an aggregate deviation for one share beyond the
// relative tolerance.
type GlobalSplitViolation struct {
	Share           Share           `json:"share"`
	ExpectedPercent int64           `json:"expected_percent"`
	ActualPercent   decimal.Decimal `json:"actual_percent"`
}

// AggregateResult is the ledger-wide compliance outcome.
type AggregateResult struct {
	InsufficientData bool                   `json:"insufficient_data,omitempty"`
	TotalBasis       int64                  `json:"total_basis"`
	RecordedTotals   PendingCounters        `json:"recorded_totals"`
	Violations       []GlobalSplitViolation `json:"violations,omitempty"`
}

// DuplicateFinding reports a transaction identifier that appears more than
// once in the snapshot.
type DuplicateFinding struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// ConfigDriftViolation reports an externally declared policy copy whose
// percentages disagree with the authoritative policy.
type ConfigDriftViolation struct {
	Source        string         `json:"source"`
	Declared      DeclaredPolicy `json:"declared"`
	Authoritative DeclaredPolicy `json:"authoritative"`
}

// CounterMismatch reports a pending-payout counter that cannot be
// reconciled with the transaction-derived sum for its share.
type CounterMismatch struct {
	Share   Share `json:"share"`
	Counter int64 `json:"counter"`
	Derived int64 `json:"derived"`
}

// AuditReport is the complete result of one audit run over one snapshot.
// It carries no timestamps or generated identifiers so that auditing the
// same snapshot twice yields byte-identical reports.
type AuditReport struct {
	PolicyVersion     string                 `json:"policy_version"`
	TransactionCount  int                    `json:"transaction_count"`
	Transactions      []TransactionResult    `json:"transactions"`
	Aggregate         AggregateResult        `json:"aggregate"`
	Duplicates        []DuplicateFinding     `json:"duplicates,omitempty"`
	ConfigDrift       []ConfigDriftViolation `json:"config_drift,omitempty"`
	CounterMismatches []CounterMismatch      `json:"counter_mismatches,omitempty"`
	Malformed         []MalformedRecord      `json:"malformed_records,omitempty"`
	FallbackBasisIDs  []string               `json:"fallback_basis_ids,omitempty"`
	DegenerateIDs     []string               `json:"degenerate_ids,omitempty"`
}

// ViolationCounts is the per-category violation tally used for the terse
// rendering and the overall verdict.
type ViolationCounts struct {
	Transaction     int `json:"transaction"`
	TotalMismatch   int `json:"total_mismatch"`
	GlobalSplit     int `json:"global_split"`
	Duplicate       int `json:"duplicate"`
	ConfigDrift     int `json:"config_drift"`
	CounterMismatch int `json:"counter_mismatch"`
	Malformed       int `json:"malformed"`
}

// Total returns the number of violations across every category.
func (c ViolationCounts) Total() int {
	return c.Transaction + c.TotalMismatch + c.GlobalSplit + c.Duplicate +
		c.ConfigDrift + c.CounterMismatch + c.Malformed
}

// Counts tallies violations per category.
func (r *AuditReport) Counts() ViolationCounts {
	var c ViolationCounts
	for _, tr := range r.Transactions {
		c.Transaction += len(tr.Violations)
		if tr.TotalMismatch != nil {
			c.TotalMismatch++
		}
	}
	c.GlobalSplit = len(r.Aggregate.Violations)
	c.Duplicate = len(r.Duplicates)
	c.ConfigDrift = len(r.ConfigDrift)
	c.CounterMismatch = len(r.CounterMismatches)
	c.Malformed = len(r.Malformed)
	return c
}

// Pass reports the overall verdict: compliant only with zero violations in
// every category.
func (r *AuditReport) Pass() bool {
	return r.Counts().Total() == 0
}
