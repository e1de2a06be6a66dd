// Command waitstate inserts the wait states GPU hardware requires between
// dependent instructions of a kernel.
//
// Usage:
//
//	waitstate schedule kernel.yaml [--stats]
//	waitstate rules [--target gfx90a]
//	waitstate batch a.yaml b.yaml ... [--progress]
//	waitstate bench [--csv | --json]
//
// Global flags select a configuration file (--config) and override its
// target (--target). klog flags such as -v=2 enable scheduling logs.
package main

import (
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

func main() {
	err := NewRootCommand().Execute()
	klog.Flush()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}
