package audit

import (
	"encoding/json"
	"fmt"
	"io"

	"revenue-ledger/internal/domain"
)

// RenderJSON writes the report as indented JSON. Output is deterministic
// for a given report.
func RenderJSON(w io.Writer, report *domain.AuditReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RenderText writes a human-readable report. The terse form is a verdict
// plus per-category counts; verbose adds the per-transaction breakdown.
func RenderText(w io.Writer, report *domain.AuditReport, verbose bool) error {
	counts := report.Counts()

	verdict := "PASS"
	if !report.Pass() {
		verdict = "FAIL"
	}

	var err error
	p := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	p("audit verdict: %s (policy version %s)\n", verdict, report.PolicyVersion)
	p("transactions audited: %d\n", report.TransactionCount)
	p("violations: transaction=%d total_mismatch=%d global_split=%d duplicate=%d config_drift=%d counter_mismatch=%d malformed=%d\n",
		counts.Transaction, counts.TotalMismatch, counts.GlobalSplit,
		counts.Duplicate, counts.ConfigDrift, counts.CounterMismatch, counts.Malformed)

	if report.Aggregate.InsufficientData {
		p("aggregate check: insufficient data (total basis is zero)\n")
	} else {
		p("aggregate basis: %d, recorded totals: %d/%d/%d\n",
			report.Aggregate.TotalBasis,
			report.Aggregate.RecordedTotals.Beneficiary,
			report.Aggregate.RecordedTotals.Infrastructure,
			report.Aggregate.RecordedTotals.Operator)
	}
	if len(report.FallbackBasisIDs) > 0 {
		p("gross fallback used for %d transaction(s)\n", len(report.FallbackBasisIDs))
	}
	if len(report.DegenerateIDs) > 0 {
		p("degenerate transactions: %d\n", len(report.DegenerateIDs))
	}

	if !verbose {
		return err
	}

	for _, tr := range report.Transactions {
		if tr.Compliant() && !tr.Degenerate && !tr.UsedFallbackBasis {
			continue
		}
		p("- %s (basis %d)", tr.ID, tr.Basis)
		if tr.Degenerate {
			p(" degenerate")
		}
		if tr.UsedFallbackBasis {
			p(" fallback-basis")
		}
		p("\n")
		for _, v := range tr.Violations {
			p("    %s: expected %d, recorded %d\n", v.Share, v.Expected, v.Actual)
		}
		if tr.TotalMismatch != nil {
			p("    total mismatch: recorded sum %d vs basis %d\n", tr.TotalMismatch.RecordedSum, tr.TotalMismatch.Basis)
		}
	}
	for _, d := range report.Duplicates {
		p("- duplicate id %s seen %d times\n", d.ID, d.Count)
	}
	for _, v := range report.Aggregate.Violations {
		p("- global split %s: expected %d%%, actual %s%%\n", v.Share, v.ExpectedPercent, v.ActualPercent)
	}
	for _, d := range report.ConfigDrift {
		p("- config drift from %s: declared %d/%d/%d, authoritative %d/%d/%d\n",
			d.Source,
			d.Declared.Beneficiary, d.Declared.Infrastructure, d.Declared.Operator,
			d.Authoritative.Beneficiary, d.Authoritative.Infrastructure, d.Authoritative.Operator)
	}
	for _, c := range report.CounterMismatches {
		p("- pending counter %s: stored %d, derived %d\n", c.Share, c.Counter, c.Derived)
	}
	for _, m := range report.Malformed {
		p("- malformed record #%d", m.Index)
		if m.ID != "" {
			p(" (id %s)", m.ID)
		}
		p(": %s\n", m.Reason)
	}

	return err
}
