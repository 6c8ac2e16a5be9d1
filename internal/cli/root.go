package cli

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Exit statuses for the audit CLI. A compliance failure and a fatal
// precondition are distinguishable by exit code so automated callers can
// tell "the ledger is out of compliance" from "the audit could not run".
const (
	ExitCompliant    = 0
	ExitViolations   = 1
	ExitPrecondition = 2
)

// errNotCompliant marks a completed audit whose verdict is fail. Everything
// else returned from RunE is a precondition failure.
var errNotCompliant = errors.New("audit found violations")

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	// Machine-readable output goes to stdout; keep logrus chatter out of it.
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)

	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errNotCompliant) {
			return ExitViolations
		}
		return ExitPrecondition
	}
	return ExitCompliant
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "revaudit",
		Short:         "Verify a revenue-split ledger against the declared policy",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(auditCmd())
	cmd.AddCommand(exportCmd())
	return cmd
}

func validateFormat(format string) error {
	switch format {
	case "pretty", "json":
		return nil
	}
	return fmt.Errorf("unknown format %q: expected pretty or json", format)
}
