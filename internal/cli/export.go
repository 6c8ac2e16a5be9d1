package cli

import (
	"fmt"
	"os"

	"revenue-ledger/internal/ledgerfile"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var (
		databaseURL string
		out         string
	)

	c := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger to a snapshot file for offline auditing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := loadSnapshot(cmd.Context(), "", databaseURL)
			if err != nil {
				return err
			}

			if err := ledgerfile.Write(out, snapshot); err != nil {
				return err
			}

			fmt.Printf("exported %d transaction(s) to %s\n", len(snapshot.Transactions), out)
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres URL to snapshot the ledger from (defaults to DATABASE_URL)")
	c.Flags().StringVarP(&out, "out", "o", "ledger-snapshot.json", "Destination snapshot file")

	return c
}
