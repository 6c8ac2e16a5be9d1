package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPolicy(t *testing.T, b, i, o int64) SplitPolicy {
	t.Helper()
	p, err := NewSplitPolicy(b, i, o, "test")
	require.NoError(t, err)
	return p
}

func TestComputeExpectedSplit(t *testing.T) {
	policy := mustPolicy(t, 50, 30, 20)

	t.Run("splits evenly divisible amounts with zero residual", func(t *testing.T) {
		alloc := ComputeExpectedSplit(10000, policy)
		assert.Equal(t, int64(5000), alloc.Beneficiary)
		assert.Equal(t, int64(3000), alloc.Infrastructure)
		assert.Equal(t, int64(2000), alloc.Operator)
		assert.Equal(t, int64(0), alloc.Residual)
	})

	t.Run("floors each share and reports the residual", func(t *testing.T) {
		// 101 * 50% = 50.5 -> 50, 101 * 30% = 30.3 -> 30, 101 * 20% = 20.2 -> 20
		alloc := ComputeExpectedSplit(101, policy)
		assert.Equal(t, int64(50), alloc.Beneficiary)
		assert.Equal(t, int64(30), alloc.Infrastructure)
		assert.Equal(t, int64(20), alloc.Operator)
		assert.Equal(t, int64(1), alloc.Residual)
	})

	t.Run("never redistributes the residual", func(t *testing.T) {
		alloc := ComputeExpectedSplit(99, policy)
		assert.Equal(t, alloc.Residual, int64(99)-alloc.Sum())
	})

	t.Run("allocates nothing for zero or negative basis", func(t *testing.T) {
		assert.Equal(t, Allocation{}, ComputeExpectedSplit(0, policy))
		assert.Equal(t, Allocation{}, ComputeExpectedSplit(-500, policy))
	})
}

func TestComputeExpectedSplitProperties(t *testing.T) {
	policies := []SplitPolicy{
		mustPolicy(t, 50, 30, 20),
		mustPolicy(t, 33, 33, 34),
		mustPolicy(t, 70, 20, 10),
		mustPolicy(t, 100, 0, 0),
		mustPolicy(t, 1, 1, 98),
	}

	for _, policy := range policies {
		for basis := int64(0); basis <= 1000; basis++ {
			alloc := ComputeExpectedSplit(basis, policy)
			sum := alloc.Sum()

			require.LessOrEqual(t, sum, basis, "allocated more than the basis for %s basis=%d", policy, basis)
			require.Less(t, basis-sum, int64(3), "residual above theoretical bound for %s basis=%d", policy, basis)
			require.Equal(t, basis-sum, alloc.Residual, "residual must account for the gap exactly")
			require.GreaterOrEqual(t, alloc.Beneficiary, int64(0))
			require.GreaterOrEqual(t, alloc.Infrastructure, int64(0))
			require.GreaterOrEqual(t, alloc.Operator, int64(0))
		}
	}
}

func TestAllocationAccessors(t *testing.T) {
	alloc := Allocation{Beneficiary: 5, Infrastructure: 3, Operator: 2, Residual: 1}
	assert.Equal(t, int64(5), alloc.Amount(ShareBeneficiary))
	assert.Equal(t, int64(3), alloc.Amount(ShareInfrastructure))
	assert.Equal(t, int64(2), alloc.Amount(ShareOperator))
	assert.Equal(t, int64(10), alloc.Sum())
}
