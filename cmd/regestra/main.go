// Package main provides the entry point for the regestra CLI.
package main

import (
	"os"

	"github.com/regestra/regestra/cmd/regestra/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
