package main

import (
	"fmt"
	"os"

	"github.com/Skotchmaster/shopsplit/cmd/shopctl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		if hint := commands.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
}
