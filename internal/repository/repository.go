package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"revenue-ledger/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/lib/pq"
)

// LedgerRepository is the append-only ledger store. There is deliberately
// no update or delete: corrections are new compensating transactions.
type LedgerRepository interface {
	Append(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]domain.Transaction, error)
	Snapshot(ctx context.Context) (*domain.LedgerSnapshot, error)
}

type postgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) *postgresLedgerRepository {
	return &postgresLedgerRepository{db: db}
}

const uniqueViolation = pq.ErrorCode("23505")

// Append inserts the transaction and bumps the pending-payout counters in
// one database transaction. The primary key on the id column makes the
// duplicate guard atomic: of two concurrent appends with the same id,
// exactly one commits.
func (r *postgresLedgerRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log.WithFields(log.Fields{
		"transaction_id": tx.ID,
		"gross_amount":   tx.GrossAmount,
		"source":         tx.Source,
	}).Info("Appending transaction to ledger")

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO transactions (
			id, recorded_at,
			gross_amount, net_amount,
			beneficiary_amount, infrastructure_amount, operator_amount,
			source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var netAmount sql.NullInt64
	if tx.NetAmount != nil {
		netAmount = sql.NullInt64{Int64: *tx.NetAmount, Valid: true}
	}

	_, err = dbTx.ExecContext(ctx, query,
		tx.ID,
		tx.RecordedAt,
		tx.GrossAmount,
		netAmount,
		tx.BeneficiaryAmount,
		tx.InfrastructureAmount,
		tx.OperatorAmount,
		tx.Source,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateTransaction
		}
		log.WithError(err).WithField("transaction_id", tx.ID).Error("Failed to append transaction")
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	counterQuery := `UPDATE pending_payouts SET amount = amount + $1 WHERE share = $2`
	for _, share := range domain.Shares() {
		if _, err := dbTx.ExecContext(ctx, counterQuery, tx.RecordedAmount(share), string(share)); err != nil {
			log.WithError(err).WithField("share", share).Error("Failed to bump pending counter")
			return fmt.Errorf("failed to bump pending counter: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}

	log.WithField("transaction_id", tx.ID).Info("Transaction successfully appended")
	return nil
}

func (r *postgresLedgerRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, recorded_at,
			gross_amount, net_amount,
			beneficiary_amount, infrastructure_amount, operator_amount,
			source
		FROM transactions
		WHERE id = $1
	`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		log.WithError(err).WithField("transaction_id", id).Error("Failed to get transaction by ID")
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}

	return tx, nil
}

func (r *postgresLedgerRepository) List(ctx context.Context, limit, offset int) ([]domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, recorded_at,
			gross_amount, net_amount,
			beneficiary_amount, infrastructure_amount, operator_amount,
			source
		FROM transactions
		ORDER BY recorded_at, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.WithError(err).Error("Failed to list transactions")
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// Snapshot returns a consistent point-in-time view of the full ledger. The
// read runs inside a repeatable-read read-only transaction, so the list and
// the counters come from the same database snapshot and a partially
// committed append is never observed. In-flight appends are not waited on;
// one that commits after the snapshot begins simply belongs to the next
// audit run.
func (r *postgresLedgerRepository) Snapshot(ctx context.Context) (*domain.LedgerSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dbTx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer dbTx.Rollback()

	query := `
		SELECT id, recorded_at,
			gross_amount, net_amount,
			beneficiary_amount, infrastructure_amount, operator_amount,
			source
		FROM transactions
		ORDER BY recorded_at, id
	`

	rows, err := dbTx.QueryContext(ctx, query)
	if err != nil {
		log.WithError(err).Error("Failed to read ledger snapshot")
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer rows.Close()

	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	pending, err := readPendingCounters(ctx, dbTx)
	if err != nil {
		log.WithError(err).Error("Failed to read pending counters")
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	return &domain.LedgerSnapshot{
		Transactions: transactions,
		Pending:      pending,
	}, nil
}

func readPendingCounters(ctx context.Context, dbTx *sql.Tx) (domain.PendingCounters, error) {
	var counters domain.PendingCounters

	rows, err := dbTx.QueryContext(ctx, `SELECT share, amount FROM pending_payouts`)
	if err != nil {
		return counters, err
	}
	defer rows.Close()

	for rows.Next() {
		var share string
		var amount int64
		if err := rows.Scan(&share, &amount); err != nil {
			return counters, err
		}
		switch domain.Share(share) {
		case domain.ShareBeneficiary:
			counters.Beneficiary = amount
		case domain.ShareInfrastructure:
			counters.Infrastructure = amount
		case domain.ShareOperator:
			counters.Operator = amount
		}
	}

	return counters, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var netAmount sql.NullInt64

	err := row.Scan(
		&tx.ID,
		&tx.RecordedAt,
		&tx.GrossAmount,
		&netAmount,
		&tx.BeneficiaryAmount,
		&tx.InfrastructureAmount,
		&tx.OperatorAmount,
		&tx.Source,
	)
	if err != nil {
		return nil, err
	}

	if netAmount.Valid {
		tx.NetAmount = &netAmount.Int64
	}

	return &tx, nil
}

func collectTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan transaction row")
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, *tx)
	}

	if err := rows.Err(); err != nil {
		log.WithError(err).Error("Error iterating over transaction rows")
		return nil, fmt.Errorf("error iterating over transaction rows: %w", err)
	}

	return transactions, nil
}
