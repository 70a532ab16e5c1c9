package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
)

// Setup, when set, runs before every execution, warmups included.
type Benchmark struct {
	Warmup  int
	Runs    int
	Timeout time.Duration
	Setup   func() error
}

// Timing matches the hyperfine JSON export layout.
type Timing struct {
	Command   string    `json:"command"`
	Mean      float64   `json:"mean"`
	Stddev    float64   `json:"stddev"`
	Median    float64   `json:"median"`
	User      float64   `json:"user"`
	System    float64   `json:"system"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Times     []float64 `json:"times"`
	ExitCodes []int     `json:"exit_codes"`
}

func (b *Benchmark) Measure(ctx context.Context, dir string, args []string) (*Timing, error) {
	if b.Runs < 1 {
		return nil, errors.New("at least one measured run is required")
	}
	command := strings.Join(args, " ")
	for i := 0; i < b.Warmup; i++ {
		Logger.Infof("running warmup #%v/%v cmd %v", i+1, b.Warmup, command)
		if _, _, err := b.execute(ctx, dir, args); err != nil {
			return nil, errors.Wrapf(err, "warmup #%v failed", i+1)
		}
	}
	timing := &Timing{Command: command}
	user, system := 0.0, 0.0
	for i := 0; i < b.Runs; i++ {
		Logger.Infof("running workload #%v/%v cmd %v", i+1, b.Runs, command)
		elapsed, state, err := b.execute(ctx, dir, args)
		if err != nil {
			return nil, errors.Wrapf(err, "run #%v failed", i+1)
		}
		timing.Times = append(timing.Times, elapsed.Seconds())
		timing.ExitCodes = append(timing.ExitCodes, state.ExitCode())
		user += state.UserTime().Seconds()
		system += state.SystemTime().Seconds()
	}
	timing.Mean = mean(timing.Times)
	timing.Stddev = stddev(timing.Times, timing.Mean)
	timing.Median = median(timing.Times)
	timing.Min = slices.Min(timing.Times)
	timing.Max = slices.Max(timing.Times)
	timing.User = user / float64(b.Runs)
	timing.System = system / float64(b.Runs)
	return timing, nil
}

func (b *Benchmark) execute(ctx context.Context, dir string, args []string) (time.Duration, *os.ProcessState, error) {
	if b.Setup != nil {
		if err := b.Setup(); err != nil {
			return 0, nil, errors.Wrap(err, "setup failed")
		}
	}
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	start := time.Now()
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)
	if err != nil {
		return 0, nil, errors.Newf("err=%v, out=%v", err, string(output))
	}
	return elapsed, cmd.ProcessState, nil
}

func mean(values []float64) float64 {
	total := 0.0
	for _, value := range values {
		total += value
	}
	return total / float64(len(values))
}

func stddev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	total := 0.0
	for _, value := range values {
		total += (value - mean) * (value - mean)
	}
	return math.Sqrt(total / float64(len(values)-1))
}

func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// ExportJSON writes a single element results array, the shape summary
// consumers read results[0].mean from.
func (t *Timing) ExportJSON(path string) error {
	payload := struct {
		Results []*Timing `json:"results"`
	}{Results: []*Timing{t}}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode timing export")
	}
	return errors.Wrapf(os.WriteFile(path, append(data, '\n'), 0o644), "write %v", path)
}

func (t *Timing) ExportMarkdown(path string) error {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Command", "Mean [s]", "Min [s]", "Max [s]", "Relative"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.Append([]string{
		fmt.Sprintf("`%v`", t.Command),
		fmt.Sprintf("%.3f ± %.3f", t.Mean, t.Stddev),
		fmt.Sprintf("%.3f", t.Min),
		fmt.Sprintf("%.3f", t.Max),
		"1.00",
	})
	table.Render()
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "write %v", path)
}
