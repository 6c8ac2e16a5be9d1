package service

import (
	"context"
	"fmt"
	"time"

	"revenue-ledger/internal/audit"
	"revenue-ledger/internal/domain"
	"revenue-ledger/internal/repository"

	log "github.com/sirupsen/logrus"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

// AuditService runs the compliance audit over a fresh ledger snapshot and
// announces the outcome. The engine itself never mutates anything; a
// failing verdict is data, not an error.
type AuditService struct {
	ledger   repository.LedgerRepository
	engine   *audit.Engine
	declared []domain.DeclaredPolicy
	events   EventPublisher
}

func NewAuditService(ledger repository.LedgerRepository, engine *audit.Engine, declared []domain.DeclaredPolicy, events EventPublisher) *AuditService {
	return &AuditService{ledger: ledger, engine: engine, declared: declared, events: events}
}

// RunAudit takes one snapshot and audits it. An unreadable ledger is the
// only error path; it is a fatal precondition, not a compliance failure.
func (s *AuditService) RunAudit(ctx context.Context) (*domain.AuditReport, error) {
	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit cannot start: %w", err)
	}

	report := s.engine.Run(snapshot, s.declared)

	counts := report.Counts()
	log.WithFields(log.Fields{
		"pass":         report.Pass(),
		"transactions": report.TransactionCount,
		"violations":   counts.Total(),
	}).Info("Audit run completed")

	s.publishCompleted(ctx, report)

	return report, nil
}

func (s *AuditService) publishCompleted(ctx context.Context, report *domain.AuditReport) {
	if s.events == nil {
		return
	}

	counts := report.Counts()
	event := domain.LedgerEvent{
		Service:    "revenue-ledger",
		EventType:  domain.EventAuditCompleted,
		EntityID:   report.PolicyVersion,
		OccurredAt: time.Now().UTC(),
		Payload: map[string]interface{}{
			"pass":              report.Pass(),
			"transaction_count": report.TransactionCount,
			"violation_total":   counts.Total(),
			"violations":        counts,
		},
	}

	if err := s.events.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish audit event")
	}
}
