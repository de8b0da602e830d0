// Package main is the entry point for the Midgard VR viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/config"
	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	err = run(cfg)
	if err != nil {
		logger.Error("viewer error", zap.Error(err))
	} else {
		logger.Info("viewer closed normally")
	}
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

// run owns every resource so deferred cleanup finishes before main exits.
func run(cfg *config.Config) error {
	logger.Info("=== Midgard VR Viewer ===",
		zap.String("device_strategy", cfg.Devices.Strategy),
		zap.String("sensor", cfg.Sensor.Listen),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := viewer.New(cfg, logger.Named("viewer"))
	if err != nil {
		return fmt.Errorf("creating viewer: %w", err)
	}
	defer v.Close()

	return v.Run(ctx)
}
