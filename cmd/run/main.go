package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/thep200/github-harvester/cfg"
	githubapi "github.com/thep200/github-harvester/internal/github_api"
	"github.com/thep200/github-harvester/internal/harvester"
	"github.com/thep200/github-harvester/pkg/log"
)

func main() {
	kind := flag.String("kind", "followers", "What to harvest (followers, contributors, forks)")
	target := flag.String("target", "", "Target: username for followers, owner/repo for contributors, empty for forks")
	out := flag.String("out", "", "Directory for export files (overrides config)")
	flag.Parse()

	ctx := context.Background()
	// loader, _ := cfg.NewMockLoader()
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := log.NewCslLogger()

	if *out != "" {
		config.Export.Dir = *out
	}

	fetchTarget, err := harvester.NewFetchTarget(*kind, *target)
	if err != nil {
		logger.Error(ctx, "Invalid target: %v", err)
		os.Exit(1)
	}

	caller := githubapi.NewCaller(logger, config)
	h, err := harvester.NewHarvester(logger, config, caller)
	if err != nil {
		logger.Error(ctx, "Failed to create harvester: %v", err)
		os.Exit(1)
	}
	defer h.Close()

	//
	logger.Info(ctx, "Starting Github harvester")
	job := h.Run(ctx, fetchTarget)
	if job.Status() == harvester.StatusCompleted {
		logger.Info(ctx, "Successfully! %d records exported to %s", job.RecordsNormalized(), job.ExportPath())
	} else {
		logger.Error(ctx, "Failed! %s", job.Reason())
		os.Exit(1)
	}
}
