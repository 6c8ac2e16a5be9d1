// Package ledgerfile reads and writes ledger snapshots as JSON files, the
// offline interchange format between the ledger service and the audit CLI.
package ledgerfile

import (
	"encoding/json"
	"fmt"
	"os"

	"revenue-ledger/internal/domain"
)

// rawSnapshot defers per-transaction decoding so one bad record surfaces as
// a malformed finding instead of failing the whole file.
type rawSnapshot struct {
	Transactions []json.RawMessage      `json:"transactions"`
	Pending      domain.PendingCounters `json:"pending_payouts"`
}

// Read loads a snapshot from path. A missing or structurally unreadable
// file is a fatal precondition (wrapped domain.ErrLedgerUnavailable);
// individual records that fail to decode are captured as malformed records
// in the returned snapshot.
func Read(path string) (*domain.LedgerSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	snapshot := &domain.LedgerSnapshot{
		Transactions: make([]domain.Transaction, 0, len(raw.Transactions)),
		Pending:      raw.Pending,
	}

	for i, record := range raw.Transactions {
		var tx domain.Transaction
		if err := json.Unmarshal(record, &tx); err != nil {
			snapshot.Malformed = append(snapshot.Malformed, domain.MalformedRecord{
				Index:  i,
				Reason: fmt.Sprintf("undecodable record: %v", err),
			})
			continue
		}
		snapshot.Transactions = append(snapshot.Transactions, tx)
	}

	return snapshot, nil
}

// Write stores a snapshot at path in the format Read expects.
func Write(path string, snapshot *domain.LedgerSnapshot) error {
	out := struct {
		Transactions []domain.Transaction   `json:"transactions"`
		Pending      domain.PendingCounters `json:"pending_payouts"`
	}{
		Transactions: snapshot.Transactions,
		Pending:      snapshot.Pending,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
