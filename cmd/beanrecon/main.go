// Package main is the entry point for the beanrecon CLI.
package main

import (
	"os"

	"github.com/pigeonworks-llc/beanrecon/cmd/beanrecon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
