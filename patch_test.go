package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRoutingConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "troute.yaml")
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.Nil(t, err)
	return string(data)
}

func TestDisableRoutingReplacesTokens(t *testing.T) {
	path := writeRoutingConfig(t, "compute_kernel: routing\nnetwork: routing\n")
	require.Nil(t, DisableRouting(path))
	require.Equal(t, "compute_kernel: no_routing\nnetwork: no_routing\n", readFile(t, path))
}

func TestDisableRoutingIsIdempotent(t *testing.T) {
	path := writeRoutingConfig(t, "compute_kernel: routing\n")

	require.Nil(t, DisableRouting(path))
	once := readFile(t, path)

	require.Nil(t, DisableRouting(path))
	require.Equal(t, once, readFile(t, path))
	require.Equal(t, "compute_kernel: no_routing\n", once)
}

func TestDisableRoutingKeepsCompoundKeys(t *testing.T) {
	path := writeRoutingConfig(t, "routing: on\nrouting_parameters:\n  dt: 300\n")
	require.Nil(t, DisableRouting(path))
	require.Equal(t, "no_routing: on\nrouting_parameters:\n  dt: 300\n", readFile(t, path))
}

func TestDisableRoutingPreservesRestOfFile(t *testing.T) {
	content := "# troute configuration\nlog_parameters:\n  showtiming: true\nmode: routing\n"
	path := writeRoutingConfig(t, content)
	require.Nil(t, DisableRouting(path))
	require.Equal(t, "# troute configuration\nlog_parameters:\n  showtiming: true\nmode: no_routing\n", readFile(t, path))
}

func TestDisableRoutingMissingFile(t *testing.T) {
	err := DisableRouting(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NotNil(t, err)
}
