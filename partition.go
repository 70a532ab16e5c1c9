package main

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Count is authoritative: the tool may settle on fewer partitions than
// requested, and every consumer of the plan follows the achieved count.
type PartitionPlan struct {
	Requested int
	Count     int
	File      string
}

type PartitionTool interface {
	Partition(ctx context.Context, networkFile string, requested int, workDir string) (PartitionPlan, error)
}

// ExecPartitionTool shells out to the partition generator. The last line of
// the tool's stdout is the count it settled on, and the assignment file it
// writes into the working directory is named after that count. Diagnostics
// on stderr never enter the parse.
type ExecPartitionTool struct {
	Bin string
}

func (t ExecPartitionTool) Partition(ctx context.Context, networkFile string, requested int, workDir string) (PartitionPlan, error) {
	Logger.Infof("partitioning %v for %v ranks", networkFile, requested)
	cmd := exec.CommandContext(ctx, t.Bin, networkFile, strconv.Itoa(requested), ".")
	cmd.Dir = workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.Output()
	if err != nil {
		return PartitionPlan{}, errors.Newf("partition tool failed: err=%v, out=%v", err, string(stdout)+stderr.String())
	}
	count, err := parsePartitionCount(string(stdout))
	if err != nil {
		return PartitionPlan{}, err
	}
	if count != requested {
		Logger.Warnf("partition tool produced %v partitions instead of %v", count, requested)
	}
	return PartitionPlan{
		Requested: requested,
		Count:     count,
		File:      fmt.Sprintf("partitions_%v.json", count),
	}, nil
}

func parsePartitionCount(output string) (int, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return 0, errors.New("partition tool produced no output")
	}
	lines := strings.Split(trimmed, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	count, err := strconv.Atoi(last)
	if err != nil {
		return 0, errors.Newf("last partition tool output line %q is not a partition count", last)
	}
	if count <= 0 {
		return 0, errors.Newf("partition tool reported invalid partition count %v", count)
	}
	return count, nil
}

// FindNetworkFile returns the single network description file of a case.
// Zero or several candidates fail the case before any tool invocation.
func FindNetworkFile(configDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(configDir, "*.gpkg"))
	if err != nil {
		return "", errors.Wrapf(err, "scan %v for network files", configDir)
	}
	if len(matches) == 0 {
		return "", errors.Newf("no network description file in %v", configDir)
	}
	if len(matches) > 1 {
		return "", errors.Newf("%v network description files in %v, expected exactly one", len(matches), configDir)
	}
	return matches[0], nil
}
