package workloads

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/Priyanshumishra77/ibex/soc"
)

// Result holds the replay results for a single workload run.
type Result struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Description explains what the workload stresses
	Description string `json:"description"`

	// Cycles is the total cycle count of the replay
	Cycles uint64 `json:"cycles"`

	// Requests is the number of trap request windows opened
	Requests uint64 `json:"requests"`

	// Episodes is the number of completed trap captures
	Episodes uint64 `json:"episodes"`

	// WaitCycles is the cycles spent waiting for a grant
	WaitCycles uint64 `json:"wait_cycles"`

	// ServiceCycles is the cycles spent inside handlers
	ServiceCycles uint64 `json:"service_cycles"`

	// AvgAckLatency is the mean request-to-grant delay in cycles
	AvgAckLatency float64 `json:"avg_ack_latency"`

	// MaxAckLatency is the worst request-to-grant delay in cycles
	MaxAckLatency uint64 `json:"max_ack_latency"`

	// ServiceFraction is the share of cycles spent inside handlers
	ServiceFraction float64 `json:"service_fraction"`

	// CauseCounts tallies captured causes by name
	CauseCounts map[string]uint64 `json:"cause_counts,omitempty"`

	// FetchRedirects is the number of times the fetch stream was steered
	FetchRedirects uint64 `json:"fetch_redirects"`

	// ICacheHitRate is the handler fetch hit rate (if the cache is enabled)
	ICacheHitRate float64 `json:"icache_hit_rate,omitempty"`

	// WallTime is the actual time taken to run the replay
	WallTime time.Duration `json:"wall_time_ns"`
}

// HarnessConfig configures the replay harness.
type HarnessConfig struct {
	// EnableICache enables instruction cache simulation for handler fetch
	EnableICache bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableICache: true,
		Output:       os.Stdout,
		Verbose:      false,
	}
}

// Harness replays workloads and reports results.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a new replay harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:    config,
		workloads: []Workload{},
	}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll replays all workloads and returns results.
func (h *Harness) RunAll() []Result {
	results := make([]Result, 0, len(h.workloads))

	for _, w := range h.workloads {
		result := h.runWorkload(w)
		results = append(results, result)
	}

	return results
}

// runWorkload replays a single workload on fresh state.
func (h *Harness) runWorkload(w Workload) Result {
	sc := w.Scenario.Clone()
	sc.UseICache = h.config.EnableICache

	system := soc.New(sc)

	start := time.Now()
	stats := system.Run()
	wallTime := time.Since(start)

	result := Result{
		Name:            w.Name,
		Description:     w.Description,
		Cycles:          stats.Cycles,
		Requests:        stats.Requests,
		Episodes:        stats.Episodes,
		WaitCycles:      stats.WaitCycles,
		ServiceCycles:   stats.ServiceCycles,
		AvgAckLatency:   stats.AvgAckLatency(),
		MaxAckLatency:   stats.MaxAckLatency,
		ServiceFraction: stats.ServiceFraction(),
		CauseCounts:     stats.CauseCounts,
		FetchRedirects:  system.Fetch().Stats().Redirects,
		WallTime:        wallTime,
	}

	if sc.UseICache {
		result.ICacheHitRate = system.Fetch().ICacheStats().HitRate()
	}

	return result
}

// PrintResults outputs workload results in a human-readable format.
func (h *Harness) PrintResults(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Trap Controller Replay Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Workload: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Episodes ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Cycles:           %d\n", r.Cycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Requests:         %d\n", r.Requests)
		_, _ = fmt.Fprintf(h.config.Output, "  Episodes:         %d\n", r.Episodes)
		_, _ = fmt.Fprintf(h.config.Output, "  Wait Cycles:      %d\n", r.WaitCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Service Cycles:   %d\n", r.ServiceCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Avg Grant Delay:  %.2f\n", r.AvgAckLatency)
		_, _ = fmt.Fprintf(h.config.Output, "  Max Grant Delay:  %d\n", r.MaxAckLatency)
		_, _ = fmt.Fprintf(h.config.Output, "  Service Fraction: %.3f\n", r.ServiceFraction)

		if len(r.CauseCounts) > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Causes ---")
			names := make([]string, 0, len(r.CauseCounts))
			for name := range r.CauseCounts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				_, _ = fmt.Fprintf(h.config.Output, "  %s: %d\n", name, r.CauseCounts[name])
			}
		}

		_, _ = fmt.Fprintln(h.config.Output, "  --- Fetch ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Redirects: %d\n", r.FetchRedirects)
		if h.config.EnableICache {
			_, _ = fmt.Fprintf(h.config.Output, "  I-Cache Hit Rate: %.1f%%\n", 100.0*r.ICacheHitRate)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs workload results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,requests,episodes,wait_cycles,service_cycles,avg_ack_latency,max_ack_latency,redirects")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%d,%.3f,%d,%d\n",
			r.Name,
			r.Cycles,
			r.Requests,
			r.Episodes,
			r.WaitCycles,
			r.ServiceCycles,
			r.AvgAckLatency,
			r.MaxAckLatency,
			r.FetchRedirects,
		)
	}
}

// Report is the complete output format for replay results.
type Report struct {
	// Metadata about the replay run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual workload results
	Results []Result `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the replay run.
type ReportMetadata struct {
	// Timestamp when the replay was run
	Timestamp string `json:"timestamp"`

	// Config describes the harness configuration
	Config ReportConfig `json:"config"`
}

// ReportConfig describes the harness configuration used.
type ReportConfig struct {
	ICacheEnabled bool `json:"icache_enabled"`
}

// ReportSummary contains aggregate statistics across all workloads.
type ReportSummary struct {
	// TotalWorkloads is the number of workloads replayed
	TotalWorkloads int `json:"total_workloads"`

	// TotalCycles is the sum of all replayed cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalEpisodes is the sum of all completed trap episodes
	TotalEpisodes uint64 `json:"total_episodes"`

	// TotalWallTime is the total wall clock time for all replays
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs workload results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []Result) error {
	var totalCycles, totalEpisodes uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalCycles += r.Cycles
		totalEpisodes += r.Episodes
		totalWallTime += r.WallTime
	}

	report := Report{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Config: ReportConfig{
				ICacheEnabled: h.config.EnableICache,
			},
		},
		Results: results,
		Summary: ReportSummary{
			TotalWorkloads: len(results),
			TotalCycles:    totalCycles,
			TotalEpisodes:  totalEpisodes,
			TotalWallTime:  totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
