package main

import (
	"os"

	"github.com/ndewijer/Stockbroker-Backend/cmd/stockbroker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
