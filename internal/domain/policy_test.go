package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitPolicy(t *testing.T) {
	t.Run("accepts percentages summing to 100", func(t *testing.T) {
		p, err := NewSplitPolicy(50, 30, 20, "v1")
		require.NoError(t, err)
		assert.Equal(t, int64(50), p.Beneficiary())
		assert.Equal(t, int64(30), p.Infrastructure())
		assert.Equal(t, int64(20), p.Operator())
		assert.Equal(t, "v1", p.Version())
	})

	t.Run("rejects percentages not summing to 100", func(t *testing.T) {
		_, err := NewSplitPolicy(50, 30, 19, "v1")
		assert.ErrorIs(t, err, ErrInvalidPolicy)

		_, err = NewSplitPolicy(50, 30, 21, "v1")
		assert.ErrorIs(t, err, ErrInvalidPolicy)
	})

	t.Run("rejects negative percentages even when they sum to 100", func(t *testing.T) {
		_, err := NewSplitPolicy(120, -30, 10, "v1")
		assert.ErrorIs(t, err, ErrInvalidPolicy)
	})

	t.Run("allows zero shares", func(t *testing.T) {
		p, err := NewSplitPolicy(100, 0, 0, "v2")
		require.NoError(t, err)
		assert.Equal(t, int64(0), p.Operator())
	})
}

func TestPolicyPercentage(t *testing.T) {
	p, err := NewSplitPolicy(50, 30, 20, "v1")
	require.NoError(t, err)

	assert.Equal(t, int64(50), p.Percentage(ShareBeneficiary))
	assert.Equal(t, int64(30), p.Percentage(ShareInfrastructure))
	assert.Equal(t, int64(20), p.Percentage(ShareOperator))
	assert.Equal(t, int64(0), p.Percentage(Share("unknown")))
}

func TestParseDeclaredSplit(t *testing.T) {
	t.Run("parses a well-formed declaration", func(t *testing.T) {
		d, err := ParseDeclaredSplit("dashboard:50/30/20")
		require.NoError(t, err)
		assert.Equal(t, "dashboard", d.Source)
		assert.Equal(t, int64(50), d.Beneficiary)
		assert.Equal(t, int64(30), d.Infrastructure)
		assert.Equal(t, int64(20), d.Operator)
	})

	t.Run("keeps non-summing declarations so drift can be reported", func(t *testing.T) {
		d, err := ParseDeclaredSplit("webhook:50/25/20")
		require.NoError(t, err)
		assert.Equal(t, int64(25), d.Infrastructure)
	})

	t.Run("rejects missing label", func(t *testing.T) {
		_, err := ParseDeclaredSplit("50/30/20")
		assert.Error(t, err)
	})

	t.Run("rejects wrong arity", func(t *testing.T) {
		_, err := ParseDeclaredSplit("dashboard:50/50")
		assert.Error(t, err)
	})

	t.Run("rejects non-numeric percentages", func(t *testing.T) {
		_, err := ParseDeclaredSplit("dashboard:fifty/30/20")
		assert.Error(t, err)
	})
}
