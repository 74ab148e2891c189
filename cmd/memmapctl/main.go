// Command memmapctl inspects raw firmware memory map dumps offline: it compacts them, summarizes
// them, prints them the way the boot-time shim does, and plans top-down allocations against them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
