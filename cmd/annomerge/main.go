// Package main assembles the annotations of a segmented task into one file.
package main

import (
	"context"
	"os"
	"time"

	"github.com/akamensky/argparse"
	"go.viam.com/rdk/logging"

	"github.com/viam-modules/annotation-merge/assembly"
)

func main() {
	parser := argparse.NewParser("annomerge", "Merge the annotations of overlapping segments into task annotations")
	configPath := parser.String("c", "config", &argparse.Options{Help: "Task config (JSON)", Required: true})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Log merge statistics"})
	timeout := parser.Int("t", "timeout", &argparse.Options{Help: "Give up after this many seconds (0 = never)", Default: 0})

	logger := logging.NewLogger("annomerge")
	if err := parser.Parse(os.Args); err != nil {
		logger.Error(parser.Usage(err))
		os.Exit(1)
	}
	if *verbose {
		logger = logging.NewDebugLogger("annomerge")
	}

	if err := run(*configPath, *timeout, logger); err != nil {
		logger.Errorw("assembly failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, timeoutSeconds int, logger logging.Logger) error {
	cfg, err := assembly.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if timeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
		defer cancel()
	}
	return assembly.Run(ctx, cfg, logger)
}
