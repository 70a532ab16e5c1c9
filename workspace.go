package main

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	configDirName     = "config"
	realizationName   = "realization.json"
	routingConfigName = "troute.yaml"
)

type Workspace struct {
	Root string
}

func (w Workspace) CaseDir(c BenchmarkCase) string {
	return filepath.Join(w.Root, c.Name())
}

// Prepare destroys whatever a previous run left in the case directory.
func (w Workspace) Prepare(c BenchmarkCase) (string, error) {
	dir := w.CaseDir(c)
	if err := os.RemoveAll(dir); err != nil {
		return "", errors.Wrapf(err, "clean working directory %v", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create working directory %v", dir)
	}
	return dir, nil
}
