package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/ironsheep/image-grayscale/internal/config"
	"github.com/ironsheep/image-grayscale/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	fs := pflag.NewFlagSet("grayscale-server", pflag.ContinueOnError)
	showVersion := fs.BoolP("version", "v", false, "print version information")
	config.Flags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "grayscale-server - HTTP service that converts uploaded images to grayscale PNG")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage: grayscale-server [options]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Every setting can also be given as an environment variable, e.g. %s_SERVER_PORT=9090.\n", config.EnvPrefix)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if *showVersion {
		fmt.Printf("grayscale-server %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	logger := newLogger(cfg)
	maxBody, err := cfg.MaxBodyBytes()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid max body size")
	}
	logger.Info().
		Str("version", Version).
		Str("commit", GitCommit).
		Str("max_body_size", cfg.Upload.MaxBodySize).
		Int64("max_body_bytes", maxBody).
		Msg("starting grayscale-server")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.New(cfg, logger).Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	zerolog.SetGlobalLevel(cfg.LogLevel())

	if cfg.Log.Format == "console" {
		return log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
