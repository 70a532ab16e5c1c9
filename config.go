package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BenchmarkDir string
	DataDir      string
	ResultsDir   string

	Warmup      int
	Runs        int
	Parallelism int
	Timeout     time.Duration

	MpirunBin    string
	NgenBin      string
	PartitionBin string
	TrouteBin    string
	TrouteOutput string

	ResultsDbUrl string
}

func StringEnv(key string, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func IntEnv(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func DurationEnv(key string, def time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

// Zero Timeout leaves benchmark commands unbounded.
func LoadConfig() Config {
	if err := godotenv.Load(); err == nil {
		Logger.Infof("loaded environment overrides from .env")
	}
	benchmarkDir := StringEnv("BENCHMARK_DIR", "/ngen/bench")
	return Config{
		BenchmarkDir: benchmarkDir,
		DataDir:      StringEnv("BENCHMARK_DATA_DIR", "/ngen/data"),
		ResultsDir:   StringEnv("BENCHMARK_RESULTS_DIR", filepath.Join(benchmarkDir, "results")),
		Warmup:       IntEnv("BENCHMARK_WARMUP", 1),
		Runs:         IntEnv("BENCHMARK_RUNS", 3),
		Parallelism:  IntEnv("BENCHMARK_PARALLELISM", runtime.NumCPU()),
		Timeout:      DurationEnv("BENCHMARK_TIMEOUT", 0),
		MpirunBin:    StringEnv("MPIRUN_BIN", "mpirun"),
		NgenBin:      StringEnv("NGEN_BIN", "/dmod/bin/ngen-parallel"),
		PartitionBin: StringEnv("PARTITION_BIN", "/dmod/bin/partitionGenerator"),
		TrouteBin:    StringEnv("TROUTE_BIN", "python3"),
		TrouteOutput: StringEnv("TROUTE_OUTPUT_DIR", filepath.Join("outputs", "troute")),
		ResultsDbUrl: StringEnv("RESULTS_DB_URL", ""),
	}
}
