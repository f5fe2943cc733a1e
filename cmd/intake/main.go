package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"fundingintake/internal/client/cmd"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	root := cmd.NewRootCmd(version, buildDate)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
