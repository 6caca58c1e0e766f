package main

import (
	"os"

	"github.com/fcobackup/fco-backup-fetcher/cmd/fco-backup-fetcher/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
