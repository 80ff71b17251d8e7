// Command hubspoke renders, inspects and serves hub-and-spoke mindmaps.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		bad.Fprintf(os.Stderr, "hubspoke: %v\n", err)
		os.Exit(1)
	}
}
