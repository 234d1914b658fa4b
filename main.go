// Package main is the entry point for the tally CLI.
package main

import (
	"github.com/huangsam/tally/cmd"
	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	iocache.CloseCaching()

	if err != nil {
		contract.LogFatal("Error running tally", err)
	}
}
