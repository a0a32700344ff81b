package main

import (
	"os"

	"secretsession/cmd/secretctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
