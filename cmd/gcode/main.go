// Package main is the gcode command line: stateless chart calculations and
// maintenance of the Daily G-Code stores.
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
