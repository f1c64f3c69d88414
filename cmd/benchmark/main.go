// Command benchmark replays the standard trap controller workloads.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output results in JSON format
//	-no-icache  Disable instruction cache simulation for handler fetch
//
// Example:
//
//	# Replay all workloads with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
// The replay results can be compared across controller configurations to
// see where the cycles of an interrupt-heavy workload go.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Priyanshumishra77/ibex/workloads"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	noICache := flag.Bool("no-icache", false, "Disable instruction cache simulation")
	flag.Parse()

	// Configure harness
	config := workloads.DefaultConfig()
	config.EnableICache = !*noICache
	config.Output = os.Stdout

	// Create harness and add workloads
	harness := workloads.NewHarness(config)
	harness.AddWorkloads(workloads.GetWorkloads())

	// Print configuration
	if !*csvOutput && !*jsonOutput {
		fmt.Println("Trap Controller Replay Harness")
		fmt.Println("==============================")
		fmt.Printf("I-Cache: %v\n", config.EnableICache)
		fmt.Println("")
	}

	// Replay workloads
	results := harness.RunAll()

	// Output results
	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		// Print summary
		fmt.Println("=== Summary ===")
		fmt.Println("")
		fmt.Println("Expected characteristics:")
		fmt.Println("- quiet: no requests, fetch runs undisturbed")
		fmt.Println("- single_interrupt: one round trip, grant delay visible")
		fmt.Println("- interrupt_storm: back-to-back episodes, high service fraction")
		fmt.Println("- fault_mix: one episode per synchronous cause")
		fmt.Println("- priority_collision: store fault wins, interrupt follows")
		fmt.Println("- gated_enable: nothing happens until the enable arrives")
	}
}
