package domain

import (
	"errors"
	"time"
)

// Ledger errors
var (
	ErrDuplicateTransaction = errors.New("transaction already recorded")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrLedgerUnavailable    = errors.New("ledger is unreadable")
)

// Transaction is one recorded payment with the allocation the producer
// actually wrote at append time. Transactions are append-only: there is no
// update or delete anywhere in the system, corrections are new compensating
// transactions.
type Transaction struct {
	ID                   string    `json:"id"`
	RecordedAt           time.Time `json:"recorded_at"`
	GrossAmount          int64     `json:"gross_amount"`
	NetAmount            *int64    `json:"net_amount"`
	BeneficiaryAmount    int64     `json:"beneficiary_amount"`
	InfrastructureAmount int64     `json:"infrastructure_amount"`
	OperatorAmount       int64     `json:"operator_amount"`
	Source               string    `json:"source"`
}

// BasisAmount returns the amount subject to splitting: net when present and
// non-negative, otherwise gross. fallback reports whether gross was used.
func (t *Transaction) BasisAmount() (basis int64, fallback bool) {
	if t.NetAmount != nil && *t.NetAmount >= 0 {
		return *t.NetAmount, false
	}
	return t.GrossAmount, true
}

// RecordedAmount returns the amount the producer recorded for a share.
func (t *Transaction) RecordedAmount(s Share) int64 {
	switch s {
	case ShareBeneficiary:
		return t.BeneficiaryAmount
	case ShareInfrastructure:
		return t.InfrastructureAmount
	case ShareOperator:
		return t.OperatorAmount
	}
	return 0
}

// RecordedSum returns the total the producer allocated across all shares.
func (t *Transaction) RecordedSum() int64 {
	return t.BeneficiaryAmount + t.InfrastructureAmount + t.OperatorAmount
}

type RecordTransactionRequest struct {
	ID          string `json:"id"`
	GrossAmount int64  `json:"gross_amount"`
	NetAmount   *int64 `json:"net_amount"`
	Source      string `json:"source"`
}

// PendingCounters are the not-yet-disbursed running totals per share. They
// are auxiliary state: the auditor reconciles them against the
// transaction-derived sums rather than trusting them.
type PendingCounters struct {
	Beneficiary    int64 `json:"beneficiary"`
	Infrastructure int64 `json:"infrastructure"`
	Operator       int64 `json:"operator"`
}

// Amount returns the pending counter for a share.
func (c PendingCounters) Amount(s Share) int64 {
	switch s {
	case ShareBeneficiary:
		return c.Beneficiary
	case ShareInfrastructure:
		return c.Infrastructure
	case ShareOperator:
		return c.Operator
	}
	return 0
}

// MalformedRecord is a ledger entry that could not be decoded or fails
// structural validation. It is carried in the snapshot so the auditor can
// report it instead of silently dropping it.
type MalformedRecord struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// LedgerSnapshot is a fixed, consistent point-in-time view of the ledger.
// One audit run operates on exactly one snapshot.
type LedgerSnapshot struct {
	Transactions []Transaction     `json:"transactions"`
	Pending      PendingCounters   `json:"pending_payouts"`
	Malformed    []MalformedRecord `json:"malformed_records,omitempty"`
}
