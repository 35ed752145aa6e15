package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebase-sim/internal/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStakingCommand(t *testing.T) {
	out, err := run(t, "staking")
	require.NoError(t, err)
	assert.Contains(t, out, "periods=15")
	assert.Contains(t, out, "roi=15.5721%")
}

func TestBondingCommand_WritesLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bonding.csv")
	out, err := run(t, "bonding", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "roi=14.5709%")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 17)
	assert.Equal(t, "index,bonded,notstaked,staked,balance,value", lines[0])
}

func TestBondingCommand_BadSchedule(t *testing.T) {
	_, err := run(t, "bonding", "--restake", "TF")
	require.Error(t, err)
	assert.True(t, model.IsConfiguration(err))
}

func TestEpochsCommand(t *testing.T) {
	out, err := run(t, "epochs", "--epochs", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Epoch  1 | Treasury: $51,000,000"), lines[0])
}

func TestRestakeCommand(t *testing.T) {
	out, err := run(t, "restake", "--max-interval", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "best: always")
}

func TestSweepCommand(t *testing.T) {
	out, err := run(t, "sweep", "--rates", "0,1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
}

func TestCompareCommand(t *testing.T) {
	out, err := run(t, "compare", "--config", filepath.Join("..", "..", "examples", "scenarios", "reference.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "bond_restake_every_3")
	assert.Contains(t, out, "staking: periods=15")

	_, err = run(t, "compare")
	assert.Error(t, err, "--config is required")
}
