package cli

import (
	"path/filepath"
	"testing"

	"revenue-ledger/internal/domain"
	"revenue-ledger/internal/ledgerfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	t.Run("parses a valid triple", func(t *testing.T) {
		p, err := parsePolicy("50/30/20", "v3")
		require.NoError(t, err)
		assert.Equal(t, int64(50), p.Beneficiary())
		assert.Equal(t, int64(30), p.Infrastructure())
		assert.Equal(t, int64(20), p.Operator())
		assert.Equal(t, "v3", p.Version())
	})

	t.Run("rejects non-summing percentages", func(t *testing.T) {
		_, err := parsePolicy("50/30/30", "v1")
		assert.ErrorIs(t, err, domain.ErrInvalidPolicy)
	})

	t.Run("rejects malformed specs", func(t *testing.T) {
		_, err := parsePolicy("50/30", "v1")
		assert.Error(t, err)

		_, err = parsePolicy("a/b/c", "v1")
		assert.Error(t, err)
	})
}

func TestParseDeclared(t *testing.T) {
	declared, err := parseDeclared([]string{"dashboard:50/30/20", "webhook:50/25/25"})
	require.NoError(t, err)
	require.Len(t, declared, 2)
	assert.Equal(t, "webhook", declared[1].Source)
	assert.Equal(t, int64(25), declared[1].Operator)

	_, err = parseDeclared([]string{"nolabel"})
	assert.Error(t, err)
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("pretty"))
	assert.NoError(t, validateFormat("json"))
	assert.Error(t, validateFormat("xml"))
}

func writeSnapshot(t *testing.T, txs ...domain.Transaction) string {
	t.Helper()
	var pending domain.PendingCounters
	for _, tx := range txs {
		pending.Beneficiary += tx.BeneficiaryAmount
		pending.Infrastructure += tx.InfrastructureAmount
		pending.Operator += tx.OperatorAmount
	}
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, ledgerfile.Write(path, &domain.LedgerSnapshot{Transactions: txs, Pending: pending}))
	return path
}

func TestAuditCommand(t *testing.T) {
	net := int64(10000)
	compliant := domain.Transaction{
		ID: "tx-1", GrossAmount: 10000, NetAmount: &net,
		BeneficiaryAmount: 5000, InfrastructureAmount: 3000, OperatorAmount: 2000,
		Source: "test",
	}
	skewed := compliant
	skewed.ID = "tx-2"
	skewed.BeneficiaryAmount = 4000
	skewed.InfrastructureAmount = 3500
	skewed.OperatorAmount = 2500

	t.Run("compliant ledger exits zero", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"audit", "--ledger", writeSnapshot(t, compliant), "--format", "json"})
		assert.NoError(t, cmd.Execute())
	})

	t.Run("violating ledger returns the compliance error", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"audit", "--ledger", writeSnapshot(t, compliant, skewed), "--format", "json"})
		assert.ErrorIs(t, cmd.Execute(), errNotCompliant)
	})

	t.Run("drift alone fails the audit", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{
			"audit",
			"--ledger", writeSnapshot(t, compliant),
			"--declared", "dashboard:50/25/25",
			"--format", "json",
		})
		assert.ErrorIs(t, cmd.Execute(), errNotCompliant)
	})

	t.Run("missing ledger is a precondition failure, not a verdict", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"audit", "--ledger", filepath.Join(t.TempDir(), "missing.json"), "--database-url", ""})
		err := cmd.Execute()
		require.Error(t, err)
		assert.NotErrorIs(t, err, errNotCompliant)
		assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
	})

	t.Run("invalid policy flag is a precondition failure", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"audit", "--ledger", writeSnapshot(t, compliant), "--policy", "60/30/20"})
		err := cmd.Execute()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidPolicy)
	})
}
