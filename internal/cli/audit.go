package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"revenue-ledger/internal/audit"
	"revenue-ledger/internal/domain"
	"revenue-ledger/internal/ledgerfile"
	"revenue-ledger/internal/repository"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func auditCmd() *cobra.Command {
	var (
		ledgerPath    string
		databaseURL   string
		policySpec    string
		policyVersion string
		declared      []string
		format        string
		verbose       bool
	)

	c := &cobra.Command{
		Use:   "audit",
		Short: "Audit a ledger snapshot for split compliance",
		Long: `Audit loads one ledger snapshot (from a JSON file or a Postgres
database), recomputes every transaction's expected split, and checks
per-transaction, aggregate, duplicate, counter, and configuration-drift
compliance.

Exit status: 0 fully compliant, 1 at least one violation, 2 the audit
could not run (unreadable ledger, invalid policy).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			policy, err := parsePolicy(policySpec, policyVersion)
			if err != nil {
				return err
			}

			declaredPolicies, err := parseDeclared(declared)
			if err != nil {
				return err
			}

			snapshot, err := loadSnapshot(cmd.Context(), ledgerPath, databaseURL)
			if err != nil {
				return err
			}

			report := audit.NewEngine(policy).Run(snapshot, declaredPolicies)

			if err := renderReport(report, format, verbose); err != nil {
				return err
			}

			if !report.Pass() {
				return errNotCompliant
			}
			return nil
		},
	}

	c.Flags().StringVarP(&ledgerPath, "ledger", "l", "", "Ledger snapshot file (JSON)")
	c.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres URL to snapshot the ledger from (defaults to DATABASE_URL)")
	c.Flags().StringVarP(&policySpec, "policy", "p", "50/30/20", "Authoritative split percentages: beneficiary/infrastructure/operator")
	c.Flags().StringVar(&policyVersion, "policy-version", "v1", "Version tag of the authoritative policy")
	c.Flags().StringArrayVarP(&declared, "declared", "d", nil, "Externally declared split copy for drift checking, label:a/b/c (repeatable)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "Per-transaction breakdown in pretty output")

	return c
}

func parsePolicy(spec, version string) (domain.SplitPolicy, error) {
	parts := strings.Split(spec, "/")
	if len(parts) != 3 {
		return domain.SplitPolicy{}, fmt.Errorf("policy %q: expected beneficiary/infrastructure/operator", spec)
	}
	pcts := make([]int64, 3)
	for i, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return domain.SplitPolicy{}, fmt.Errorf("policy %q: %w", spec, err)
		}
		pcts[i] = v
	}
	return domain.NewSplitPolicy(pcts[0], pcts[1], pcts[2], version)
}

func parseDeclared(specs []string) ([]domain.DeclaredPolicy, error) {
	declared := make([]domain.DeclaredPolicy, 0, len(specs))
	for _, s := range specs {
		d, err := domain.ParseDeclaredSplit(s)
		if err != nil {
			return nil, err
		}
		declared = append(declared, d)
	}
	return declared, nil
}

// loadSnapshot takes exactly one snapshot, preferring the file when both
// sources are given. Any failure here is a fatal precondition: no report is
// produced.
func loadSnapshot(ctx context.Context, ledgerPath, databaseURL string) (*domain.LedgerSnapshot, error) {
	if ledgerPath != "" {
		return ledgerfile.Read(ledgerPath)
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("no ledger source: pass --ledger or --database-url")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return repository.NewPostgresLedgerRepository(db).Snapshot(ctx)
}

func renderReport(report *domain.AuditReport, format string, verbose bool) error {
	if format == "json" {
		return audit.RenderJSON(os.Stdout, report)
	}
	return audit.RenderText(os.Stdout, report, verbose)
}
