package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCaseResultDirIsDeterministic(t *testing.T) {
	c := BenchmarkCase{Duration: "1d", Ops: 3, Gage: "GAGE42"}
	require.Equal(t, filepath.Join("results", "1d_3_GAGE42"), CaseResultDir("results", c))
	require.Equal(t, CaseResultDir("results", c), CaseResultDir("results", c))
}

func TestEnsureResultDirKeepsExistingFiles(t *testing.T) {
	root := t.TempDir()
	c := BenchmarkCase{Duration: "1y", Ops: 8, Gage: "G"}

	dir, err := EnsureResultDir(root, c)
	require.Nil(t, err)
	marker := filepath.Join(dir, parallelBenchmarkJson)
	require.Nil(t, os.WriteFile(marker, []byte("previous"), 0o644))

	again, err := EnsureResultDir(root, c)
	require.Nil(t, err)
	require.Equal(t, dir, again)

	data, err := os.ReadFile(marker)
	require.Nil(t, err)
	require.Equal(t, "previous", string(data))
}
