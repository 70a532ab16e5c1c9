package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var durations = []string{"1d", "1m", "1y", "10y"}

type BenchmarkCase struct {
	Duration string
	Ops      int
	Gage     string
	Archive  string
}

func (c BenchmarkCase) Name() string {
	return fmt.Sprintf("%v_%v_%v", c.Duration, c.Ops, c.Gage)
}

// DiscoverCases walks root/{duration}/{ops}/*.tar.gz and returns every
// runnable case plus the tier directories skipped for missing archives.
func DiscoverCases(root string) ([]BenchmarkCase, []string, error) {
	cases := make([]BenchmarkCase, 0)
	skipped := make([]string, 0)
	for _, duration := range durations {
		dir := filepath.Join(root, duration)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				Logger.Warnf("duration directory %v is missing, skipping", dir)
				continue
			}
			return nil, nil, errors.Wrapf(err, "read duration directory %v", dir)
		}
		tiers := make([]os.DirEntry, 0, len(entries))
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if _, ok := opsValue(entry.Name()); !ok {
				continue
			}
			tiers = append(tiers, entry)
		}
		slices.SortFunc(tiers, func(a, b os.DirEntry) int {
			aInt, _ := strconv.Atoi(a.Name())
			bInt, _ := strconv.Atoi(b.Name())
			return aInt - bInt
		})
		for _, tier := range tiers {
			ops, _ := opsValue(tier.Name())
			archive, ok, err := findArchive(filepath.Join(dir, tier.Name()))
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				Logger.Warnf("no dataset archive under %v, skipping case", filepath.Join(dir, tier.Name()))
				skipped = append(skipped, filepath.Join(duration, tier.Name()))
				continue
			}
			cases = append(cases, BenchmarkCase{
				Duration: duration,
				Ops:      ops,
				Gage:     strings.TrimSuffix(filepath.Base(archive), ".tar.gz"),
				Archive:  archive,
			})
		}
	}
	return cases, skipped, nil
}

func opsValue(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	value, err := strconv.Atoi(name)
	if err != nil || value == 0 {
		return 0, false
	}
	return value, true
}

func findArchive(dir string) (string, bool, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tar.gz"))
	if err != nil {
		return "", false, errors.Wrapf(err, "scan %v for dataset archives", dir)
	}
	if len(matches) == 0 {
		return "", false, nil
	}
	if len(matches) > 1 {
		Logger.Warnf("%v dataset archives under %v, using %v", len(matches), dir, matches[0])
	}
	return matches[0], true, nil
}
