package main

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// entries ending in a slash become directories
func writeArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		content := entries[name]
		if name[len(name)-1] == '/' {
			require.Nil(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o755, Typeflag: tar.TypeDir}))
			continue
		}
		header := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		require.Nil(t, tw.WriteHeader(header))
		_, err := tw.Write([]byte(content))
		require.Nil(t, err)
	}
	require.Nil(t, tw.Close())
	require.Nil(t, gz.Close())
	require.Nil(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestExtractStripsWrapperDirectory(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "GAGE42.tar.gz")
	writeArchive(t, archive, map[string]string{
		"GAGE42/":                   "",
		"GAGE42/config/":            "",
		"GAGE42/config/troute.yaml": "routing: enabled\n",
		"GAGE42/forcings/data.csv":  "1,2,3\n",
	})

	target := filepath.Join(dir, "out")
	require.Nil(t, ExtractArchive(archive, target))

	data, err := os.ReadFile(filepath.Join(target, "config", "troute.yaml"))
	require.Nil(t, err)
	require.Equal(t, "routing: enabled\n", string(data))

	_, err = os.Stat(filepath.Join(target, "forcings", "data.csv"))
	require.Nil(t, err)

	_, err = os.Stat(filepath.Join(target, "GAGE42"))
	require.True(t, os.IsNotExist(err))
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.gz")
	writeArchive(t, archive, map[string]string{
		"GAGE42/../../evil.txt": "boom",
	})

	err := ExtractArchive(archive, filepath.Join(dir, "out"))
	require.NotNil(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "evil.txt"))
	require.True(t, os.IsNotExist(statErr))
}

func TestExtractCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "broken.tar.gz")
	require.Nil(t, os.WriteFile(archive, []byte("not a tarball"), 0o644))

	err := ExtractArchive(archive, filepath.Join(dir, "out"))
	require.NotNil(t, err)
}

func TestExtractMissingArchive(t *testing.T) {
	dir := t.TempDir()
	err := ExtractArchive(filepath.Join(dir, "absent.tar.gz"), filepath.Join(dir, "out"))
	require.NotNil(t, err)
}

func TestWorkspacePrepareClearsResidue(t *testing.T) {
	workspace := Workspace{Root: t.TempDir()}
	c := BenchmarkCase{Duration: "1d", Ops: 3, Gage: "GAGE42"}

	dir, err := workspace.Prepare(c)
	require.Nil(t, err)
	require.Equal(t, filepath.Join(workspace.Root, "1d_3_GAGE42"), dir)
	require.Nil(t, os.WriteFile(filepath.Join(dir, "residue.parquet"), []byte("stale"), 0o644))

	dir, err = workspace.Prepare(c)
	require.Nil(t, err)
	_, err = os.Stat(filepath.Join(dir, "residue.parquet"))
	require.True(t, os.IsNotExist(err))
}
