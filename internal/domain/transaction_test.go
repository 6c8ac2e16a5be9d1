package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestBasisAmount(t *testing.T) {
	t.Run("prefers net when present and non-negative", func(t *testing.T) {
		tx := Transaction{GrossAmount: 10000, NetAmount: int64Ptr(9500)}
		basis, fallback := tx.BasisAmount()
		assert.Equal(t, int64(9500), basis)
		assert.False(t, fallback)
	})

	t.Run("falls back to gross when net is absent", func(t *testing.T) {
		tx := Transaction{GrossAmount: 10000}
		basis, fallback := tx.BasisAmount()
		assert.Equal(t, int64(10000), basis)
		assert.True(t, fallback)
	})

	t.Run("falls back to gross when net is negative", func(t *testing.T) {
		tx := Transaction{GrossAmount: 10000, NetAmount: int64Ptr(-1)}
		basis, fallback := tx.BasisAmount()
		assert.Equal(t, int64(10000), basis)
		assert.True(t, fallback)
	})

	t.Run("zero net is a valid basis, not a fallback", func(t *testing.T) {
		tx := Transaction{GrossAmount: 10000, NetAmount: int64Ptr(0)}
		basis, fallback := tx.BasisAmount()
		assert.Equal(t, int64(0), basis)
		assert.False(t, fallback)
	})
}

func TestRecordedAmounts(t *testing.T) {
	tx := Transaction{BeneficiaryAmount: 500, InfrastructureAmount: 300, OperatorAmount: 200}
	assert.Equal(t, int64(500), tx.RecordedAmount(ShareBeneficiary))
	assert.Equal(t, int64(300), tx.RecordedAmount(ShareInfrastructure))
	assert.Equal(t, int64(200), tx.RecordedAmount(ShareOperator))
	assert.Equal(t, int64(1000), tx.RecordedSum())
}
