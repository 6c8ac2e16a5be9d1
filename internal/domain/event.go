package domain

import "time"

// Event types published by the ledger service.
const (
	EventTransactionRecorded = "transaction_recorded"
	EventAuditCompleted      = "audit_completed"
)

type LedgerEvent struct {
	Service    string                 `json:"service"`
	EventType  string                 `json:"event_type"`
	EntityID   string                 `json:"entity_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}
