package domain

// Allocation is the result of splitting a basis amount across the three
// shares. All amounts are minor currency units. Residual is the part of the
// basis left unallocated by per-share flooring; it is never redistributed
// here, callers decide what to do with it.
type Allocation struct {
	Beneficiary    int64 `json:"beneficiary"`
	Infrastructure int64 `json:"infrastructure"`
	Operator       int64 `json:"operator"`
	Residual       int64 `json:"residual"`
}

// Amount returns the allocated amount for a share.
func (a Allocation) Amount(s Share) int64 {
	switch s {
	case ShareBeneficiary:
		return a.Beneficiary
	case ShareInfrastructure:
		return a.Infrastructure
	case ShareOperator:
		return a.Operator
	}
	return 0
}

// Sum returns the total allocated across the three shares, excluding the
// residual.
func (a Allocation) Sum() int64 {
	return a.Beneficiary + a.Infrastructure + a.Operator
}

// ResidualBound is the largest residual per-share flooring can produce:
// number of shares minus one minor units.
const ResidualBound int64 = 2

// ComputeExpectedSplit divides a basis amount across the three shares by
// flooring basis*percentage/100 per share in integer arithmetic. The
// leftover is returned as Residual. A non-positive basis allocates nothing.
func ComputeExpectedSplit(basis int64, policy SplitPolicy) Allocation {
	if basis <= 0 {
		return Allocation{}
	}
	alloc := Allocation{
		Beneficiary:    basis * policy.Beneficiary() / 100,
		Infrastructure: basis * policy.Infrastructure() / 100,
		Operator:       basis * policy.Operator() / 100,
	}
	alloc.Residual = basis - alloc.Sum()
	return alloc
}
