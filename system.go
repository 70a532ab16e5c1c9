package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
)

type CaseStatus string

const (
	CaseCompleted CaseStatus = "completed"
	CaseSkipped   CaseStatus = "skipped"
	CaseFailed    CaseStatus = "failed"
)

type CaseOutcome struct {
	Case   string
	Status CaseStatus
	Err    error
}

type RunReport struct {
	Outcomes []CaseOutcome
}

func (r RunReport) Count(status CaseStatus) int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Status == status {
			count++
		}
	}
	return count
}

type System struct {
	cfg       Config
	workspace Workspace
	partition PartitionTool
	mirror    *ResultsMirror
}

func NewSystem(cfg Config) *System {
	return &System{
		cfg:       cfg,
		workspace: Workspace{Root: cfg.DataDir},
		partition: ExecPartitionTool{Bin: cfg.PartitionBin},
	}
}

// A failing case is reported and the matrix moves on. Only discovery errors
// and context cancellation abort the run itself.
func (s *System) Run(ctx context.Context) (RunReport, error) {
	Logger.Infof("start benchmark")
	info := HostStat()
	Logger.Infof("host stat: %+v", info)

	if s.cfg.ResultsDbUrl != "" {
		mirror, err := OpenResultsMirror(s.cfg.ResultsDbUrl)
		if err != nil {
			Logger.Errorf("results mirror unavailable: %v", err)
		} else if err := mirror.Init(info); err != nil {
			Logger.Errorf("failed to initialize results mirror: %v", err)
			mirror.Close()
		} else {
			s.mirror = mirror
			defer mirror.Close()
		}
	}

	cases, skipped, err := DiscoverCases(s.cfg.BenchmarkDir)
	if err != nil {
		return RunReport{}, err
	}
	report := RunReport{}
	for _, name := range skipped {
		report.Outcomes = append(report.Outcomes, CaseOutcome{Case: name, Status: CaseSkipped})
	}
	Logger.Infof("discovered %v benchmark cases, skipped %v dataset directories", len(cases), len(skipped))

	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(err, "benchmark interrupted")
		}
		if err := s.RunCase(ctx, c); err != nil {
			Logger.Errorf("failed to execute case %v: %v", c.Name(), err)
			report.Outcomes = append(report.Outcomes, CaseOutcome{Case: c.Name(), Status: CaseFailed, Err: err})
			continue
		}
		report.Outcomes = append(report.Outcomes, CaseOutcome{Case: c.Name(), Status: CaseCompleted})
	}
	Logger.Infof(
		"benchmark finished: %v completed, %v skipped, %v failed",
		report.Count(CaseCompleted), report.Count(CaseSkipped), report.Count(CaseFailed),
	)
	return report, nil
}

func (s *System) RunCase(ctx context.Context, c BenchmarkCase) error {
	Logger.Infof("running case %v", c.Name())

	caseDir, err := s.workspace.Prepare(c)
	if err != nil {
		return err
	}
	if err := ExtractArchive(c.Archive, caseDir); err != nil {
		return err
	}
	if err := DisableRouting(filepath.Join(caseDir, configDirName, routingConfigName)); err != nil {
		return err
	}
	networkFile, err := FindNetworkFile(filepath.Join(caseDir, configDirName))
	if err != nil {
		return err
	}
	plan, err := s.partition.Partition(ctx, networkFile, s.cfg.Parallelism, caseDir)
	if err != nil {
		return err
	}
	resultDir, err := EnsureResultDir(s.cfg.ResultsDir, c)
	if err != nil {
		return err
	}

	parallel := &Benchmark{Warmup: s.cfg.Warmup, Runs: s.cfg.Runs, Timeout: s.cfg.Timeout}
	parallelTiming, err := parallel.Measure(ctx, caseDir, s.parallelCommand(networkFile, plan))
	if err != nil {
		return errors.Wrap(err, "parallel benchmark")
	}
	if err := parallelTiming.ExportJSON(filepath.Join(resultDir, parallelBenchmarkJson)); err != nil {
		return err
	}
	if err := parallelTiming.ExportMarkdown(filepath.Join(resultDir, parallelBenchmarkMd)); err != nil {
		return err
	}

	routing := &Benchmark{
		Warmup:  s.cfg.Warmup,
		Runs:    s.cfg.Runs,
		Timeout: s.cfg.Timeout,
		Setup: func() error {
			return clearDir(s.trouteOutputDir(caseDir))
		},
	}
	routingTiming, err := routing.Measure(ctx, caseDir, s.routingCommand())
	if err != nil {
		return errors.Wrap(err, "routing benchmark")
	}
	if err := routingTiming.ExportJSON(filepath.Join(resultDir, routingBenchmarkJson)); err != nil {
		return err
	}
	if err := routingTiming.ExportMarkdown(filepath.Join(resultDir, routingBenchmarkMd)); err != nil {
		return err
	}

	if s.mirror != nil {
		timings := map[string]*Timing{"parallel": parallelTiming, "routing": routingTiming}
		if err := s.mirror.RecordCase(c, timings, resultDir); err != nil {
			Logger.Warnf("failed to mirror results of case %v: %v", c.Name(), err)
		}
	}
	Logger.Infof("case %v completed", c.Name())
	return nil
}

// The rank count follows the achieved partition count, not the requested
// one. Paths are relative to the case working directory the command runs in.
func (s *System) parallelCommand(networkFile string, plan PartitionPlan) []string {
	network := filepath.Join(configDirName, filepath.Base(networkFile))
	return []string{
		s.cfg.MpirunBin, "-n", strconv.Itoa(plan.Count),
		s.cfg.NgenBin,
		network, "all",
		network, "all",
		filepath.Join(configDirName, realizationName),
		plan.File,
	}
}

func (s *System) routingCommand() []string {
	return []string{
		s.cfg.TrouteBin, "-m", "nwm_routing",
		"-f", filepath.Join(configDirName, routingConfigName),
	}
}

// An absolute output override is cleared where it points, not under the case.
func (s *System) trouteOutputDir(caseDir string) string {
	if filepath.IsAbs(s.cfg.TrouteOutput) {
		return s.cfg.TrouteOutput
	}
	return filepath.Join(caseDir, s.cfg.TrouteOutput)
}

// clearDir removes everything inside dir but leaves dir itself in place.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read output directory %v", dir)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return errors.Wrapf(err, "remove stale output %v", entry.Name())
		}
	}
	return nil
}
