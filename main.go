package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/iqbalbaharum/betting-market-client/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
