package main

import (
	"os"

	"github.com/cdelzotti/sigh/cmd/sighc"
)

func main() {
	if err := sighc.Execute(); err != nil {
		os.Exit(1)
	}
}
