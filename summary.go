package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
)

var resultDirPattern = regexp.MustCompile(`^(\d+[dmy])_(\d+)_(.+)$`)

var summaryHeader = []string{
	"Duration", "Operations", "Gage",
	"Parallel Runtime (s)", "Routing Runtime (s)", "Total Runtime (s)",
}

// Runtimes are nil when the export is missing or unreadable, shown as N/A.
type SummaryRow struct {
	Duration string
	Ops      int
	Gage     string
	Parallel *float64
	Routing  *float64
}

func (r SummaryRow) total() *float64 {
	if r.Parallel == nil || r.Routing == nil {
		return nil
	}
	total := *r.Parallel + *r.Routing
	return &total
}

func (r SummaryRow) cells() []string {
	return []string{
		r.Duration,
		strconv.Itoa(r.Ops),
		r.Gage,
		fmtRuntime(r.Parallel),
		fmtRuntime(r.Routing),
		fmtRuntime(r.total()),
	}
}

func fmtRuntime(value *float64) string {
	if value == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.3f", *value)
}

// WriteSummary renders the aggregate view of a results tree on w and drops
// benchmark_summary.csv next to the result directories.
func WriteSummary(root string, w io.Writer) error {
	rows, err := collectSummary(root)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "No benchmark results found")
		return nil
	}
	info := HostStat()
	fmt.Fprintln(w, "\n=== SYSTEM INFORMATION ===")
	for _, pair := range info.Display() {
		fmt.Fprintf(w, "%v: %v\n", pair[0], pair[1])
	}
	fmt.Fprintln(w, "\n=== BENCHMARK RESULTS ===")
	table := tablewriter.NewWriter(w)
	table.SetHeader(summaryHeader)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		table.Append(row.cells())
	}
	table.Render()

	csvPath := filepath.Join(root, "benchmark_summary.csv")
	if err := writeSummaryCsv(csvPath, info, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nCSV saved to: %v\n", csvPath)
	return nil
}

func collectSummary(root string) ([]SummaryRow, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read results directory %v", root)
	}
	rows := make([]SummaryRow, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		match := resultDirPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		ops, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		rows = append(rows, SummaryRow{
			Duration: match[1],
			Ops:      ops,
			Gage:     match[3],
			Parallel: loadMeanRuntime(filepath.Join(dir, parallelBenchmarkJson)),
			Routing:  loadMeanRuntime(filepath.Join(dir, routingBenchmarkJson)),
		})
	}
	slices.SortFunc(rows, func(a, b SummaryRow) int {
		if a.Ops != b.Ops {
			return a.Ops - b.Ops
		}
		return durationRank(a.Duration) - durationRank(b.Duration)
	})
	return rows, nil
}

// A missing or malformed export yields nil instead of failing the summary.
func loadMeanRuntime(path string) *float64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var payload struct {
		Results []struct {
			Mean float64 `json:"mean"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Results) == 0 {
		return nil
	}
	return &payload.Results[0].Mean
}

func durationRank(duration string) int {
	for i, d := range durations {
		if d == duration {
			return i
		}
	}
	return len(durations)
}

func writeSummaryCsv(path string, info SysInfo, rows []SummaryRow) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# System Information")
	for _, pair := range info.Display() {
		fmt.Fprintf(&buf, "# %v: %v\n", pair[0], pair[1])
	}
	fmt.Fprintln(&buf, "#")
	writer := csv.NewWriter(&buf)
	if err := writer.Write(summaryHeader); err != nil {
		return errors.Wrapf(err, "encode summary csv")
	}
	for _, row := range rows {
		if err := writer.Write(row.cells()); err != nil {
			return errors.Wrapf(err, "encode summary csv")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrapf(err, "encode summary csv")
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "write %v", path)
}
