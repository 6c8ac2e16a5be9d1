package audit

import (
	"sort"

	"revenue-ledger/internal/domain"

	"github.com/shopspring/decimal"
)

// Tolerances for the compliance checks. Per-share and total comparisons use
// an absolute tolerance in minor units on top of the flooring residual
// bound; the aggregate check uses a relative tolerance in percentage points
// to absorb accumulated rounding across the whole ledger.
const (
	shareToleranceMinorUnits = int64(1)
)

var aggregateTolerancePoints = decimal.New(5, -1) // 0.5 percentage points

// Engine verifies a ledger snapshot against the authoritative split policy.
// It is read-only and stateless across runs: every Run operates on exactly
// the snapshot it is given and never re-reads the ledger.
type Engine struct {
	policy domain.SplitPolicy
}

func NewEngine(policy domain.SplitPolicy) *Engine {
	return &Engine{policy: policy}
}

// Run audits one snapshot and returns the structured report. Compliance
// failures are data in the report, never errors; the caller inspects the
// verdict.
func (e *Engine) Run(snapshot *domain.LedgerSnapshot, declared []domain.DeclaredPolicy) *domain.AuditReport {
	report := &domain.AuditReport{
		PolicyVersion:    e.policy.Version(),
		TransactionCount: len(snapshot.Transactions),
		Transactions:     make([]domain.TransactionResult, 0, len(snapshot.Transactions)),
		Malformed:        append([]domain.MalformedRecord(nil), snapshot.Malformed...),
	}

	var (
		totalBasis   int64
		bucketTotals domain.PendingCounters
		counterBase  domain.PendingCounters
	)

	for i, tx := range snapshot.Transactions {
		if reason := structuralDefect(&tx); reason != "" {
			report.Malformed = append(report.Malformed, domain.MalformedRecord{
				Index:  i,
				ID:     tx.ID,
				Reason: reason,
			})
			continue
		}

		counterBase.Beneficiary += tx.BeneficiaryAmount
		counterBase.Infrastructure += tx.InfrastructureAmount
		counterBase.Operator += tx.OperatorAmount

		result := e.checkTransaction(&tx)
		if result.UsedFallbackBasis {
			report.FallbackBasisIDs = append(report.FallbackBasisIDs, tx.ID)
		}
		if result.Degenerate {
			report.DegenerateIDs = append(report.DegenerateIDs, tx.ID)
		} else {
			totalBasis += result.Basis
			bucketTotals.Beneficiary += tx.BeneficiaryAmount
			bucketTotals.Infrastructure += tx.InfrastructureAmount
			bucketTotals.Operator += tx.OperatorAmount
		}
		report.Transactions = append(report.Transactions, result)
	}

	report.Aggregate = e.checkAggregate(totalBasis, bucketTotals)
	report.Duplicates = findDuplicates(snapshot.Transactions)
	report.ConfigDrift = e.checkDrift(declared)
	report.CounterMismatches = reconcileCounters(snapshot.Pending, counterBase)

	return report
}

// structuralDefect reports why a stored record cannot participate in the
// audit arithmetic, or "" if it can. A defective record is reported and
// excluded so a single bad row cannot mask the rest of the audit.
func structuralDefect(tx *domain.Transaction) string {
	switch {
	case tx.ID == "":
		return "missing transaction id"
	case tx.GrossAmount < 0:
		return "negative gross amount"
	case tx.BeneficiaryAmount < 0 || tx.InfrastructureAmount < 0 || tx.OperatorAmount < 0:
		return "negative recorded share"
	}
	return ""
}

func (e *Engine) checkTransaction(tx *domain.Transaction) domain.TransactionResult {
	basis, fallback := tx.BasisAmount()

	result := domain.TransactionResult{
		ID:                tx.ID,
		Basis:             basis,
		UsedFallbackBasis: fallback,
	}

	if basis <= 0 {
		result.Degenerate = true
		return result
	}

	expected := domain.ComputeExpectedSplit(basis, e.policy)
	result.Expected = expected

	// A recorded share below its floored expectation shortchanges that
	// bucket and always fires. Above it, one minor unit of rounding slack
	// plus the residual the producer may have folded in is tolerated.
	overside := shareToleranceMinorUnits + domain.ResidualBound
	for _, share := range domain.Shares() {
		exp := expected.Amount(share)
		act := tx.RecordedAmount(share)
		if act < exp || act > exp+overside {
			result.Violations = append(result.Violations, domain.ShareViolation{
				Share:    share,
				Expected: exp,
				Actual:   act,
			})
		}
	}

	gap := basis - tx.RecordedSum()
	if gap < -overside || gap > overside {
		result.TotalMismatch = &domain.TotalMismatch{
			Basis:       basis,
			RecordedSum: tx.RecordedSum(),
		}
	}

	return result
}

func (e *Engine) checkAggregate(totalBasis int64, totals domain.PendingCounters) domain.AggregateResult {
	result := domain.AggregateResult{
		TotalBasis:     totalBasis,
		RecordedTotals: totals,
	}

	if totalBasis == 0 {
		result.InsufficientData = true
		return result
	}

	basis := decimal.NewFromInt(totalBasis)
	hundred := decimal.NewFromInt(100)

	for _, share := range domain.Shares() {
		actual := decimal.NewFromInt(totals.Amount(share)).Mul(hundred).DivRound(basis, 4)
		expected := decimal.NewFromInt(e.policy.Percentage(share))
		if actual.Sub(expected).Abs().GreaterThan(aggregateTolerancePoints) {
			result.Violations = append(result.Violations, domain.GlobalSplitViolation{
				Share:           share,
				ExpectedPercent: e.policy.Percentage(share),
				ActualPercent:   actual,
			})
		}
	}

	return result
}

// findDuplicates re-scans identifiers even though the store enforces
// uniqueness at append time; a snapshot merged from several stores, or a
// store that failed its own invariant, still gets caught here.
func findDuplicates(txs []domain.Transaction) []domain.DuplicateFinding {
	counts := make(map[string]int, len(txs))
	for _, tx := range txs {
		if tx.ID == "" {
			continue
		}
		counts[tx.ID]++
	}

	var findings []domain.DuplicateFinding
	for id, n := range counts {
		if n > 1 {
			findings = append(findings, domain.DuplicateFinding{ID: id, Count: n})
		}
	}
	sort.Slice(findings, func(i, j int) bool { return findings[i].ID < findings[j].ID })
	return findings
}

func (e *Engine) checkDrift(declared []domain.DeclaredPolicy) []domain.ConfigDriftViolation {
	authoritative := domain.DeclaredPolicy{
		Source:         "policy",
		Beneficiary:    e.policy.Beneficiary(),
		Infrastructure: e.policy.Infrastructure(),
		Operator:       e.policy.Operator(),
	}

	var findings []domain.ConfigDriftViolation
	for _, d := range declared {
		if d.Beneficiary != authoritative.Beneficiary ||
			d.Infrastructure != authoritative.Infrastructure ||
			d.Operator != authoritative.Operator {
			findings = append(findings, domain.ConfigDriftViolation{
				Source:        d.Source,
				Declared:      d,
				Authoritative: authoritative,
			})
		}
	}
	return findings
}

// reconcileCounters checks the pending-payout counters against the sums
// derived from the snapshot's transactions. Within one atomic snapshot the
// two must agree exactly.
func reconcileCounters(pending, derived domain.PendingCounters) []domain.CounterMismatch {
	var findings []domain.CounterMismatch
	for _, share := range domain.Shares() {
		if pending.Amount(share) != derived.Amount(share) {
			findings = append(findings, domain.CounterMismatch{
				Share:   share,
				Counter: pending.Amount(share),
				Derived: derived.Amount(share),
			})
		}
	}
	return findings
}
