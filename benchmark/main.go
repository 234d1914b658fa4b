// Package main provides a performance benchmarking tool for the tally CLI.
// It generates synthetic point files of increasing size, builds series from
// each one several times, treating the first successful cached run as cold and
// averaging the rest as warm, and writes the timings to a CSV file.
//
// Prerequisites:
// - tally binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic datasets are written
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Datasets    []int
	Scenarios   map[string][]string
}

// benchNow pins the window so every run builds the same series.
const benchNow = "2024-06-15T12:00:00Z"

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Datasets:    []int{10_000, 100_000, 1_000_000},
		Scenarios: map[string][]string{
			"daily-sum":     {"-g", "day", "-n", "90"},
			"hourly-total":  {"-g", "hour", "-n", "14", "--accumulation", "total"},
			"monthly-max":   {"-g", "month", "--interval-unit", "year", "-n", "2", "-a", "max:last"},
			"daily-current": {"-g", "day", "-n", "90", "--accumulation", "current", "--historical"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("tally", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results, config)
}

// checkPrerequisites verifies that the tally binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("tally"); err != nil {
		return fmt.Errorf("tally binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("work dir %s is not usable: %w", config.WorkDir, err)
	}
	return nil
}

// generateDataset writes n random points spread over the two years before benchNow.
func generateDataset(dir string, n int) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("points_%d.json", n))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	end, _ := time.Parse(time.RFC3339, benchNow)
	span := int64(2 * 365 * 24 * time.Hour)
	rng := rand.New(rand.NewPCG(uint64(n), 1))

	points := make([]map[string]any, n)
	for i := range points {
		ts := end.Add(-time.Duration(rng.Int64N(span)))
		points[i] = map[string]any{
			"timestamp": ts.Format(time.RFC3339),
			"visits":    rng.IntN(100),
			"latency":   rng.Float64() * 250,
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(points); err != nil {
		return "", fmt.Errorf("failed to write dataset %s: %w", path, err)
	}
	return path, nil
}

// runBenchmarks executes all scenarios across the configured dataset sizes
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %d scenarios, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Datasets), len(config.Scenarios), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.Datasets {
		dataset := fmt.Sprintf("%d points", size)
		fmt.Printf("Generating %s\n", dataset)
		path, err := generateDataset(config.WorkDir, size)
		if err != nil {
			return nil, err
		}

		for name, extraArgs := range config.Scenarios {
			results = append(results, runBenchmarkSuite(config, dataset, path, name, extraArgs))
		}
	}

	return results, nil
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a scenario
func runBenchmarkSuite(config BenchmarkConfig, dataset, path, scenario string, extraArgs []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", scenario, dataset)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     scenario,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a tally build multiple times with the specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path string, extraArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{"series", path, "-f", "visits,latency", "--now", benchNow, "--cache-backend", cacheBackend}
	args = append(args, extraArgs...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("tally", args...)

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Series built in") &&
		strings.Contains(outputStr, "Cache backend")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/tally_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "scenario", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult, config BenchmarkConfig) {
	fmt.Printf("Benchmark complete\n")

	for scenario := range config.Scenarios {
		printScenarioSummary(results, scenario)
	}

	fmt.Printf("Benchmark script completed successfully\n")
}

// printScenarioSummary displays results for a specific scenario
func printScenarioSummary(results []BenchmarkResult, scenario string) {
	fmt.Printf("%s:\n", scenario)
	for _, result := range results {
		if result.Command == scenario {
			fmt.Printf("  %-16s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
