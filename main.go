// Package main provides the entry point for ibexsim.
// ibexsim is a cycle-level model of a small RISC-V trap controller.
//
// For the full CLI, use: go run ./cmd/ibexsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("ibexsim - RISC-V trap controller simulator")
	fmt.Println("")
	fmt.Println("Usage: ibexsim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -scenario  Path to scenario JSON file")
	fmt.Println("  -cycles    Override the scenario cycle count")
	fmt.Println("  -trace     Print a per-cycle trace to stdout")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/ibexsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/ibexsim' instead.")
	}
}
