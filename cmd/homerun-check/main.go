package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/homerun/internal/smoketest"
	"github.com/okian/homerun/pkg/logger"
)

// Default configuration constants.
const (
	defaultTopN        = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	gen := smoketest.DefaultGenerateConfig()
	var (
		generate = flag.String("generate", "", "Write a synthetic CSV dataset to this path and exit")
		players  = flag.Int("players", gen.Players, "Players to generate")
		seasons  = flag.Int("seasons", gen.Seasons, "Seasons per player")
		seed     = flag.Uint64("seed", gen.Seed, "Generator seed")
		baseURL  = flag.String("url", "http://localhost:8000", "Base URL of the service")
		topN     = flag.Int("top", defaultTopN, "Leaderboard entries to verify")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent player probes")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile  = flag.String("log", "", "Also append logs to this file")
		verbose  = flag.Bool("verbose", false, "Log every probed player")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoketest.ShowHelp()
		return
	}

	closeLog, err := smoketest.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	if *generate != "" {
		gen.Players = *players
		gen.Seasons = *seasons
		gen.Seed = *seed
		if _, err := smoketest.GenerateFile(ctx, *generate, gen); err != nil {
			logger.Get().Error(ctx, "generation failed", logger.Error(err))
			exit(cancel, closeLog)
		}
		return
	}

	config := &smoketest.Config{
		BaseURL: *baseURL,
		TopN:    *topN,
		Workers: *workers,
		Timeout: *timeout,
		Verbose: *verbose,
	}
	if _, err := smoketest.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "probe failed", logger.Error(err))
		exit(cancel, closeLog)
	}
}

func exit(cancel context.CancelFunc, closeLog func() error) {
	cancel()
	_ = closeLog()
	os.Exit(1)
}
