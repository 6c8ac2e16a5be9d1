package repository

import (
	"context"
	"sync"

	"revenue-ledger/internal/domain"
)

// memoryLedgerRepository is an in-process LedgerRepository. All writes go
// through one mutex, so the duplicate guard and the counter bump are atomic
// and a snapshot never observes a half-written append.
type memoryLedgerRepository struct {
	mu           sync.RWMutex
	transactions []domain.Transaction
	index        map[string]int
	pending      domain.PendingCounters
}

func NewMemoryLedgerRepository() *memoryLedgerRepository {
	return &memoryLedgerRepository{index: make(map[string]int)}
}

func (r *memoryLedgerRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[tx.ID]; exists {
		return domain.ErrDuplicateTransaction
	}

	r.index[tx.ID] = len(r.transactions)
	r.transactions = append(r.transactions, *tx)
	r.pending.Beneficiary += tx.BeneficiaryAmount
	r.pending.Infrastructure += tx.InfrastructureAmount
	r.pending.Operator += tx.OperatorAmount
	return nil
}

func (r *memoryLedgerRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.index[id]
	if !exists {
		return nil, domain.ErrTransactionNotFound
	}
	tx := r.transactions[i]
	return &tx, nil
}

func (r *memoryLedgerRepository) List(ctx context.Context, limit, offset int) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset >= len(r.transactions) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.transactions) {
		end = len(r.transactions)
	}

	out := make([]domain.Transaction, end-offset)
	copy(out, r.transactions[offset:end])
	return out, nil
}

// Snapshot copies the ledger under the read lock and releases it before
// returning; it never blocks appends beyond the copy itself.
func (r *memoryLedgerRepository) Snapshot(ctx context.Context) (*domain.LedgerSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	transactions := make([]domain.Transaction, len(r.transactions))
	copy(transactions, r.transactions)

	return &domain.LedgerSnapshot{
		Transactions: transactions,
		Pending:      r.pending,
	}, nil
}
