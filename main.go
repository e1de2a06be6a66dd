// Package main provides the entry point for waitstate.
// waitstate inserts the wait states AMD GPUs require between dependent
// instructions of a kernel.
//
// For the full CLI, use: go run ./cmd/waitstate
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("waitstate - GPU instruction hazard scheduler")
	fmt.Println("")
	fmt.Println("Usage: waitstate <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  schedule   Pad one kernel and print the scheduled listing")
	fmt.Println("  rules      List the hazard catalogue for a target")
	fmt.Println("  batch      Schedule many kernels concurrently")
	fmt.Println("  bench      Schedule the built-in kernels")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/waitstate' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/waitstate' instead.")
	}
}
