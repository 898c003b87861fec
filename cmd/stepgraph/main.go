// Package main is the entry point for the stepgraph CLI tool.
package main

import (
	"github.com/hargabyte/stepgraph/internal/cmd"
)

func main() {
	cmd.Execute()
}
