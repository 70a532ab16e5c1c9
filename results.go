package main

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	parallelBenchmarkJson = "parallel_benchmark.json"
	parallelBenchmarkMd   = "parallel_benchmark.md"
	routingBenchmarkJson  = "routing_benchmark.json"
	routingBenchmarkMd    = "routing_benchmark.md"
)

var exportNames = []string{
	parallelBenchmarkJson,
	parallelBenchmarkMd,
	routingBenchmarkJson,
	routingBenchmarkMd,
}

// Reruns of a case land in the same directory and overwrite its exports.
func CaseResultDir(root string, c BenchmarkCase) string {
	return filepath.Join(root, c.Name())
}

func EnsureResultDir(root string, c BenchmarkCase) (string, error) {
	dir := CaseResultDir(root, c)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create result directory %v", dir)
	}
	return dir, nil
}
