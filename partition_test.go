package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTool(t *testing.T, name string, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func caseDirWithNetwork(t *testing.T, networks ...string) string {
	t.Helper()
	dir := t.TempDir()
	require.Nil(t, os.MkdirAll(filepath.Join(dir, configDirName), 0o755))
	for _, network := range networks {
		require.Nil(t, os.WriteFile(filepath.Join(dir, configDirName, network), []byte("gpkg"), 0o644))
	}
	return dir
}

func TestPartitionParsesLastOutputLine(t *testing.T) {
	tool := ExecPartitionTool{Bin: writeTool(t, "partition", `
echo "reading network $1"
echo "requested $2 partitions"
echo "6"
touch partitions_6.json
`)}
	caseDir := caseDirWithNetwork(t, "GAGE42.gpkg")

	plan, err := tool.Partition(context.Background(), filepath.Join(caseDir, configDirName, "GAGE42.gpkg"), 8, caseDir)
	require.Nil(t, err)
	require.Equal(t, 8, plan.Requested)
	require.Equal(t, 6, plan.Count)
	require.Equal(t, "partitions_6.json", plan.File)

	_, err = os.Stat(filepath.Join(caseDir, plan.File))
	require.Nil(t, err)
}

func TestPartitionCountComesFromStdout(t *testing.T) {
	tool := ExecPartitionTool{Bin: writeTool(t, "partition", `
echo "6"
echo "wrote partition assignment" >&2
touch partitions_6.json
`)}
	caseDir := caseDirWithNetwork(t, "net.gpkg")

	plan, err := tool.Partition(context.Background(), filepath.Join(caseDir, configDirName, "net.gpkg"), 8, caseDir)
	require.Nil(t, err)
	require.Equal(t, 6, plan.Count)
	require.Equal(t, "partitions_6.json", plan.File)
}

func TestPartitionRunsInsideCaseDirectory(t *testing.T) {
	tool := ExecPartitionTool{Bin: writeTool(t, "partition", `
pwd
echo "4"
`)}
	caseDir := caseDirWithNetwork(t, "net.gpkg")

	plan, err := tool.Partition(context.Background(), filepath.Join(caseDir, configDirName, "net.gpkg"), 4, caseDir)
	require.Nil(t, err)
	require.Equal(t, 4, plan.Count)
}

func TestPartitionToolFailure(t *testing.T) {
	tool := ExecPartitionTool{Bin: writeTool(t, "partition", `
echo "cannot read network" >&2
exit 2
`)}
	caseDir := caseDirWithNetwork(t, "net.gpkg")

	_, err := tool.Partition(context.Background(), filepath.Join(caseDir, configDirName, "net.gpkg"), 4, caseDir)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "cannot read network")
}

func TestPartitionRejectsJunkCount(t *testing.T) {
	tool := ExecPartitionTool{Bin: writeTool(t, "partition", `echo "done without a count"`)}
	caseDir := caseDirWithNetwork(t, "net.gpkg")

	_, err := tool.Partition(context.Background(), filepath.Join(caseDir, configDirName, "net.gpkg"), 4, caseDir)
	require.NotNil(t, err)
}

func TestParsePartitionCount(t *testing.T) {
	count, err := parsePartitionCount("reading\nwriting\n8\n")
	require.Nil(t, err)
	require.Equal(t, 8, count)

	count, err = parsePartitionCount("3")
	require.Nil(t, err)
	require.Equal(t, 3, count)

	_, err = parsePartitionCount("")
	require.NotNil(t, err)

	_, err = parsePartitionCount("partitions: 8")
	require.NotNil(t, err)

	_, err = parsePartitionCount("0\n")
	require.NotNil(t, err)
}

func TestFindNetworkFile(t *testing.T) {
	caseDir := caseDirWithNetwork(t, "GAGE42.gpkg")
	network, err := FindNetworkFile(filepath.Join(caseDir, configDirName))
	require.Nil(t, err)
	require.Equal(t, filepath.Join(caseDir, configDirName, "GAGE42.gpkg"), network)
}

func TestFindNetworkFileNone(t *testing.T) {
	caseDir := caseDirWithNetwork(t)
	_, err := FindNetworkFile(filepath.Join(caseDir, configDirName))
	require.NotNil(t, err)
}

func TestFindNetworkFileAmbiguous(t *testing.T) {
	caseDir := caseDirWithNetwork(t, "a.gpkg", "b.gpkg")
	_, err := FindNetworkFile(filepath.Join(caseDir, configDirName))
	require.NotNil(t, err)
}
