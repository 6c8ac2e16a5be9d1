package main

import (
	"os"

	"revenue-ledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
