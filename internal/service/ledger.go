package service

import (
	"context"
	"fmt"
	"time"

	"revenue-ledger/internal/domain"
	"revenue-ledger/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type LedgerServiceInterface interface {
	RecordTransaction(ctx context.Context, req domain.RecordTransactionRequest) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]domain.Transaction, error)
	PendingPayouts(ctx context.Context) (domain.PendingCounters, error)
	Policy() domain.SplitPolicy
}

type LedgerService struct {
	ledger repository.LedgerRepository
	policy domain.SplitPolicy
	events EventPublisher
}

// NewLedgerService wires the producer path. The policy is the single
// authoritative SplitPolicy constructed at process start; every component
// receives it explicitly.
func NewLedgerService(ledger repository.LedgerRepository, policy domain.SplitPolicy, events EventPublisher) *LedgerService {
	return &LedgerService{ledger: ledger, policy: policy, events: events}
}

func (s *LedgerService) Policy() domain.SplitPolicy {
	return s.policy
}

// RecordTransaction is the only way collaborators create ledger entries. It
// computes the recorded shares with the same split calculator the auditor
// uses, so the recording and verification paths cannot drift. The flooring
// residual stays unallocated; no bucket absorbs it.
func (s *LedgerService) RecordTransaction(ctx context.Context, req domain.RecordTransactionRequest) (*domain.Transaction, error) {
	if req.GrossAmount < 0 {
		return nil, fmt.Errorf("gross amount must be non-negative")
	}
	if req.NetAmount != nil && *req.NetAmount < 0 {
		return nil, fmt.Errorf("net amount must be non-negative when provided")
	}
	if req.NetAmount != nil && *req.NetAmount > req.GrossAmount {
		return nil, fmt.Errorf("net amount cannot exceed gross amount")
	}
	if req.Source == "" {
		return nil, fmt.Errorf("source is required")
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	basis := req.GrossAmount
	if req.NetAmount != nil {
		basis = *req.NetAmount
	}
	alloc := domain.ComputeExpectedSplit(basis, s.policy)

	tx := &domain.Transaction{
		ID:                   id,
		RecordedAt:           time.Now().UTC(),
		GrossAmount:          req.GrossAmount,
		NetAmount:            req.NetAmount,
		BeneficiaryAmount:    alloc.Beneficiary,
		InfrastructureAmount: alloc.Infrastructure,
		OperatorAmount:       alloc.Operator,
		Source:               req.Source,
	}

	if err := s.ledger.Append(ctx, tx); err != nil {
		if err == domain.ErrDuplicateTransaction {
			return nil, err
		}
		log.WithError(err).WithField("transaction_id", id).Error("Failed to record transaction")
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"transaction_id": tx.ID,
		"basis":          basis,
		"residual":       alloc.Residual,
		"source":         tx.Source,
	}).Info("Transaction successfully recorded")

	s.publishRecorded(ctx, tx, alloc.Residual)

	return tx, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	if id == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}

	tx, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, limit, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.ledger.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}

func (s *LedgerService) PendingPayouts(ctx context.Context) (domain.PendingCounters, error) {
	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return domain.PendingCounters{}, fmt.Errorf("failed to read pending payouts: %w", err)
	}
	return snapshot.Pending, nil
}

// publishRecorded is best effort: the transaction is durable once appended,
// a delivery failure only loses the notification.
func (s *LedgerService) publishRecorded(ctx context.Context, tx *domain.Transaction, residual int64) {
	if s.events == nil {
		return
	}

	event := domain.LedgerEvent{
		Service:    "revenue-ledger",
		EventType:  domain.EventTransactionRecorded,
		EntityID:   tx.ID,
		OccurredAt: time.Now().UTC(),
		Payload: map[string]interface{}{
			"gross_amount":          tx.GrossAmount,
			"beneficiary_amount":    tx.BeneficiaryAmount,
			"infrastructure_amount": tx.InfrastructureAmount,
			"operator_amount":       tx.OperatorAmount,
			"residual":              residual,
			"source":                tx.Source,
		},
	}
	if tx.NetAmount != nil {
		event.Payload["net_amount"] = *tx.NetAmount
	}

	if err := s.events.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("transaction_id", tx.ID).Warn("Failed to publish transaction event")
	}
}
