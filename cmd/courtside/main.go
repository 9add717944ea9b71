package main

import (
	"os"

	"github.com/courtside-app/courtside/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
