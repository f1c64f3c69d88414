// Package main provides the entry point for ibexsim.
// ibexsim replays an interrupt scenario against the trap controller core
// and reports how the cycles were spent.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/Priyanshumishra77/ibex/scenario"
	"github.com/Priyanshumishra77/ibex/soc"
)

var (
	scenarioPath = flag.String("scenario", "", "Path to scenario JSON file (built-in scenario if empty)")
	cycles       = flag.Uint64("cycles", 0, "Override the scenario cycle count")
	trace        = flag.Bool("trace", false, "Print a per-cycle trace to stdout")
	verbose      = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Usage: ibexsim [options]\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	os.Exit(run())
}

func run() int {
	sc := scenario.Default()
	if *scenarioPath != "" {
		var err error
		sc, err = scenario.Load(*scenarioPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading scenario: %v\n", err)
			return 1
		}
	}
	if *cycles > 0 {
		sc.Cycles = *cycles
	}
	if err := sc.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid scenario: %v\n", err)
		return 1
	}

	if *verbose {
		fmt.Printf("Scenario: %s\n", sc.Name)
		fmt.Printf("Cycles: %d\n", sc.Cycles)
		fmt.Printf("Events: %d\n", len(sc.Events))
		fmt.Printf("Vector base: 0x%08X\n", sc.VectorBase)
	}

	var opts []soc.Option
	if *trace {
		opts = append(opts, soc.WithTrace(os.Stdout))
	}

	system := soc.New(sc, opts...)
	stats := system.Run()

	report(sc, system, stats)

	return 0
}

// report prints the end-of-run summary.
func report(sc *scenario.Scenario, system *soc.System, stats soc.Stats) {
	totalCycles := stats.Cycles
	if totalCycles == 0 {
		totalCycles = 1 // Avoid division by zero
	}

	waitCycles := stats.WaitCycles
	serviceCycles := stats.ServiceCycles
	normalCycles := stats.Cycles - waitCycles - serviceCycles

	fmt.Printf("\n")
	fmt.Printf("Scenario: %s\n", sc.Name)
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("Trap Episodes: %d\n", stats.Episodes)
	fmt.Printf("Avg Grant Latency: %.2f cycles\n", stats.AvgAckLatency())
	fmt.Printf("\n")
	fmt.Printf("Breakdown:\n")
	fmt.Printf("  Normal execution:  %4d cycles (%5.1f%%)\n",
		normalCycles, 100.0*float64(normalCycles)/float64(totalCycles))
	fmt.Printf("  Waiting for grant: %4d cycles (%5.1f%%)\n",
		waitCycles, 100.0*float64(waitCycles)/float64(totalCycles))
	fmt.Printf("  In handlers:       %4d cycles (%5.1f%%)\n",
		serviceCycles, 100.0*float64(serviceCycles)/float64(totalCycles))

	if len(stats.CauseCounts) > 0 {
		names := make([]string, 0, len(stats.CauseCounts))
		for name := range stats.CauseCounts {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Printf("\n")
		fmt.Printf("Causes:\n")
		for _, name := range names {
			fmt.Printf("  %s: %d\n", name, stats.CauseCounts[name])
		}
	}

	fetchStats := system.Fetch().Stats()
	fmt.Printf("\n")
	fmt.Printf("Fetch Events:\n")
	fmt.Printf("  Redirects: %d\n", fetchStats.Redirects)
	if sc.UseICache {
		icache := system.Fetch().ICacheStats()
		fmt.Printf("  I-cache hit rate: %.1f%%\n", 100.0*icache.HitRate())
	}

	if *verbose {
		fmt.Printf("\n")
		fmt.Printf("Final mcause: 0x%08X\n", system.CSRs().MCause())
		fmt.Printf("Final mepc: 0x%08X\n", system.CSRs().MEPC())
	}
}
