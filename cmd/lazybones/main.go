// Package main is the entry point for the lazybones CLI.
package main

import (
	"github.com/katapios/lazybones/internal/cmd"
)

func main() {
	cmd.Execute()
}
