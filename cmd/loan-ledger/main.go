package main

import (
	"os"

	"loan-ledger/cmd/loan-ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
