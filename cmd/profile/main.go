// Package main provides a profiling wrapper for ibexsim to identify
// performance bottlenecks in the replay loop.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/Priyanshumishra77/ibex/scenario"
	"github.com/Priyanshumishra77/ibex/soc"
)

var (
	scenarioPath = flag.String("scenario", "", "Path to scenario JSON file (built-in storm if empty)")
	cpuProfile   = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile   = flag.String("memprofile", "", "write memory profile to file")
	duration     = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	cycles       = flag.Uint64("cycles", 10_000_000, "cycles to replay")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	sc := stormScenario(*cycles)
	if *scenarioPath != "" {
		loaded, err := scenario.Load(*scenarioPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading scenario: %v\n", err)
			os.Exit(1)
		}
		loaded.Cycles = *cycles
		sc = loaded
	}

	fmt.Printf("Scenario: %s\n", sc.Name)
	fmt.Printf("Cycles: %d\n", sc.Cycles)

	start := time.Now()

	// Set timeout
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping replay\n", *duration)
		os.Exit(2)
	}()

	system := soc.New(sc)
	stats := system.Run()

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Cycles replayed: %d\n", stats.Cycles)
	fmt.Printf("Trap episodes: %d\n", stats.Episodes)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if elapsed.Seconds() > 0 {
		fmt.Printf("Cycles/second: %.0f\n", float64(stats.Cycles)/elapsed.Seconds())
	}
}

// stormScenario builds a long back-to-back episode storm so the profile
// covers the grant, capture and return paths, not just idle ticks.
func stormScenario(cycles uint64) *scenario.Scenario {
	return &scenario.Scenario{
		Name:          "storm",
		Cycles:        cycles,
		VectorBase:    0x0000_0100,
		AckLatency:    1,
		HandlerCycles: 2,
		IRQEnable:     true,
		UseICache:     true,
		Events: []scenario.Event{
			{Cycle: 0, Action: scenario.ActionRaiseIRQ, Line: 3},
			{Cycle: 0, Action: scenario.ActionRaiseIRQ, Line: 11},
		},
	}
}
