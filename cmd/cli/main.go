package main

import (
	"os"

	"github.com/limaJavier/sessiontable/cmd/cli/commands"
)

func main() {
	code, err := commands.Execute()
	if err != nil {
		os.Exit(1)
	}
	os.Exit(code)
}
