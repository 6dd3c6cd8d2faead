package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	netlist := filepath.Join(dir, "divider.cir")
	require.NoError(t, os.WriteFile(netlist, []byte("divider\nV1 1 0 5\nR1 1 2 1k\nR2 2 0 2k\n.op\n"), 0o644))
	csv := filepath.Join(dir, "out.csv")

	out, err := execute(t, "run", netlist, "--csv", csv, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Node Voltages:")
	assert.Contains(t, out, "V(2) =")

	data, err := os.ReadFile(csv)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Time, Node1, Node2, Current1")
}

func TestRunCommandErrors(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.cir"))
	assert.Error(t, err)

	_, err = execute(t, "run")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "jjspice ")
}
