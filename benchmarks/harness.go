package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/sarchlab/waitstate/insts"
	"github.com/sarchlab/waitstate/loader"
	"github.com/sarchlab/waitstate/timing/core"
)

// BenchmarkResult holds the scheduling results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Target is the architecture the kernel was scheduled for
	Target string `json:"target"`

	// Instructions is the number of input instructions
	Instructions int `json:"instructions"`

	// Hazards is the number of instructions that needed padding
	Hazards int `json:"hazards"`

	// Padding is the number of wait states inserted
	Padding int `json:"padding"`

	// ExpectedPadding is the padding the benchmark documents
	ExpectedPadding int `json:"expected_padding"`

	// PaddingByRule credits the padding to hazard rules
	PaddingByRule map[string]int `json:"padding_by_rule,omitempty"`

	// PaddingTime is the time the padding costs at the configured clock
	PaddingTime time.Duration `json:"padding_time_ns"`

	// WallTime is the actual time taken to schedule the kernel
	WallTime time.Duration `json:"wall_time_ns"`

	// Err is set if scheduling failed
	Err string `json:"error,omitempty"`
}

// Matches returns true if the kernel was scheduled with the documented
// padding.
func (r BenchmarkResult) Matches() bool {
	return r.Err == "" && r.Padding == r.ExpectedPadding
}

// Benchmark defines a single kernel benchmark.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Target is the architecture the kernel is written for
	Target string

	// Kernel is the instruction stream to schedule
	Kernel []insts.Instruction

	// ExpectedPadding is the total padding the stream needs on Target
	ExpectedPadding int
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Config is passed to every compilation. Benchmark targets take
	// precedence over its target.
	Config *core.Config

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Config:  core.DefaultConfig(),
		Output:  os.Stdout,
		Verbose: false,
	}
}

// Harness runs kernel benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Config == nil {
		config.Config = core.DefaultConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark schedules a single benchmark kernel.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:            bench.Name,
		Description:     bench.Description,
		Target:          bench.Target,
		Instructions:    len(bench.Kernel),
		ExpectedPadding: bench.ExpectedPadding,
	}

	k := &loader.Kernel{
		Name:         bench.Name,
		Target:       bench.Target,
		Instructions: bench.Kernel,
	}

	start := time.Now()
	res, err := core.Compile(context.Background(), h.config.Config, k)
	result.WallTime = time.Since(start)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	result.Target = res.Target.String()
	result.Hazards = res.Stats.Hazards
	result.Padding = res.Stats.Padding
	result.PaddingByRule = res.Stats.PaddingByRule
	result.PaddingTime = res.Stats.PaddingTime
	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Hazard Scheduler Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Target: %s\n", r.Target)
		if r.Err != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Err)
			_, _ = fmt.Fprintln(h.config.Output, "")
			continue
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions:     %s\n", humanize.Comma(int64(r.Instructions)))
		_, _ = fmt.Fprintf(h.config.Output, "  Hazards:          %d\n", r.Hazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Padding:          %d (expected %d)\n", r.Padding, r.ExpectedPadding)
		_, _ = fmt.Fprintf(h.config.Output, "  Padding Time:     %v\n", r.PaddingTime)
		if h.config.Verbose {
			for rule, n := range sortedRules(r.PaddingByRule) {
				_, _ = fmt.Fprintf(h.config.Output, "    %-20s %d\n", rule, n)
			}
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,target,instructions,hazards,padding,expected_padding,padding_time_ns")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%s,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Target,
			r.Instructions,
			r.Hazards,
			r.Padding,
			r.ExpectedPadding,
			r.PaddingTime.Nanoseconds(),
		)
	}
}

// WriteJSON writes benchmark results as indented JSON.
func (h *Harness) WriteJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return errors.Wrap(err, "failed to encode benchmark results")
	}
	return nil
}

func sortedRules(m map[string]int) iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for _, rule := range slices.Sorted(maps.Keys(m)) {
			if !yield(rule, m[rule]) {
				return
			}
		}
	}
}
