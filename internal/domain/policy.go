package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Policy errors
var (
	ErrInvalidPolicy = errors.New("split policy percentages must be non-negative and sum to 100")
)

// Share identifies one of the three fixed payout buckets.
type Share string

const (
	ShareBeneficiary    Share = "beneficiary"
	ShareInfrastructure Share = "infrastructure"
	ShareOperator       Share = "operator"
)

// Shares returns the three payout buckets in canonical order.
func Shares() []Share {
	return []Share{ShareBeneficiary, ShareInfrastructure, ShareOperator}
}

// SplitPolicy is the single authoritative declaration of how every payment
// is divided. It is immutable after construction; all other copies of the
// percentages in the system are inputs to the drift check, never sources of
// truth.
type SplitPolicy struct {
	beneficiary    int64
	infrastructure int64
	operator       int64
	version        string
}

// NewSplitPolicy constructs a policy from whole percentage points. It fails
// with ErrInvalidPolicy unless all three are non-negative and sum to exactly
// 100.
func NewSplitPolicy(beneficiary, infrastructure, operator int64, version string) (SplitPolicy, error) {
	if beneficiary < 0 || infrastructure < 0 || operator < 0 {
		return SplitPolicy{}, fmt.Errorf("%w: got %d/%d/%d", ErrInvalidPolicy, beneficiary, infrastructure, operator)
	}
	if beneficiary+infrastructure+operator != 100 {
		return SplitPolicy{}, fmt.Errorf("%w: got %d/%d/%d", ErrInvalidPolicy, beneficiary, infrastructure, operator)
	}
	return SplitPolicy{
		beneficiary:    beneficiary,
		infrastructure: infrastructure,
		operator:       operator,
		version:        version,
	}, nil
}

func (p SplitPolicy) Beneficiary() int64    { return p.beneficiary }
func (p SplitPolicy) Infrastructure() int64 { return p.infrastructure }
func (p SplitPolicy) Operator() int64       { return p.operator }
func (p SplitPolicy) Version() string       { return p.version }

// Percentage returns the declared percentage for a share.
func (p SplitPolicy) Percentage(s Share) int64 {
	switch s {
	case ShareBeneficiary:
		return p.beneficiary
	case ShareInfrastructure:
		return p.infrastructure
	case ShareOperator:
		return p.operator
	}
	return 0
}

func (p SplitPolicy) String() string {
	return fmt.Sprintf("%d/%d/%d (version %s)", p.beneficiary, p.infrastructure, p.operator, p.version)
}

// DeclaredPolicy is an externally declared copy of the split percentages
// (deployment config, dashboard constants, webhook settings). Declared
// copies are compared against the authoritative SplitPolicy by the drift
// check; they are not validated at construction so that a broken copy is
// reported rather than rejected.
type DeclaredPolicy struct {
	Source         string `json:"source"`
	Beneficiary    int64  `json:"beneficiary"`
	Infrastructure int64  `json:"infrastructure"`
	Operator       int64  `json:"operator"`
}

// ParseDeclaredSplit parses a "label:beneficiary/infrastructure/operator"
// declaration, e.g. "dashboard:50/30/20".
func ParseDeclaredSplit(s string) (DeclaredPolicy, error) {
	label, rest, ok := strings.Cut(s, ":")
	if !ok || label == "" {
		return DeclaredPolicy{}, fmt.Errorf("declared split %q: expected label:a/b/c", s)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return DeclaredPolicy{}, fmt.Errorf("declared split %q: expected three percentages", s)
	}
	pcts := make([]int64, 3)
	for i, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return DeclaredPolicy{}, fmt.Errorf("declared split %q: %w", s, err)
		}
		pcts[i] = v
	}
	return DeclaredPolicy{
		Source:         label,
		Beneficiary:    pcts[0],
		Infrastructure: pcts[1],
		Operator:       pcts[2],
	}, nil
}
