package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/gradebook/internal/loadgen"
	"github.com/okian/gradebook/pkg/logger"
)

const (
	defaultCount   = 50
	defaultTimeout = 10 * time.Second
	runTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		count      = flag.Int("count", defaultCount, "Number of submissions to generate")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		clear      = flag.Bool("clear", false, "Clear the history before submitting")
		outputFile = flag.String("output", "", "Write the generated submissions to this JSON file")
		verbose    = flag.Bool("verbose", false, "Log every failed submission")
		logFormat  = flag.String("log-format", "text", "Log output format: text or json")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	if err := logger.InitWithOptions(logger.WithFormat(*logFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg := &loadgen.Config{
		BaseURL:     *baseURL,
		Count:       *count,
		Workers:     *workers,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		ClearBefore: *clear,
		Verbose:     *verbose,
	}
	if err := run(cfg); err != nil {
		logger.Get().Error(context.Background(), "seeding failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg *loadgen.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	_, err := loadgen.Run(ctx, cfg)
	return err
}
