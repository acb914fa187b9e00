// Command pathsub is an interactive shell over a subscription store.
//
// It loads an initial tree, subscribes and publishes at paths typed at the
// prompt, and prints every debounced notification as it settles.
//
// Usage:
//
//	pathsub [flags]
//
// Flags:
//
//	-config string      YAML file with delay, allow_unobserved_publish and tree
//	-delay duration     Debounce delay (overrides the config file)
//	-allow-unobserved   Apply publishes to paths without subscribers
//	-trace string       Append a CBOR event trace to this file
//	-log-level string   Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Start with an empty tree
//	pathsub
//
//	# Start from a file and record a trace for pathsub-log
//	pathsub -config tree.yaml -trace session.plog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathsub/pathsub-go/cmd/pathsub/shell"
	"github.com/pathsub/pathsub-go/pkg/log"
	"github.com/pathsub/pathsub-go/pkg/subscription"
)

// Config holds the command line configuration.
type Config struct {
	ConfigFile      string
	Delay           time.Duration
	AllowUnobserved bool
	TraceFile       string
	LogLevel        string
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "YAML file with delay, allow_unobserved_publish and tree")
	flag.DurationVar(&config.Delay, "delay", 0, "Debounce delay (overrides the config file)")
	flag.BoolVar(&config.AllowUnobserved, "allow-unobserved", false, "Apply publishes to paths without subscribers")
	flag.StringVar(&config.TraceFile, "trace", "", "Append a CBOR event trace to this file")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	level, err := parseLogLevel(config.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	file, err := loadFileConfig(config.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	storeConfig := buildStoreConfig(config, file)

	var fileLogger *log.FileLogger
	if config.TraceFile != "" {
		fileLogger, err = log.NewFileLogger(config.TraceFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open trace file: %v\n", err)
			os.Exit(1)
		}
		defer fileLogger.Close()
	}

	store := subscription.NewStoreWithConfig(file.Tree, storeConfig)
	defer store.Close()

	sh, err := shell.New(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Log through the shell so output does not garble the prompt.
	logger := slog.New(slog.NewTextHandler(sh.Stderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	store.SetLogger(logger)
	store.SetTrace(buildTrace(logger, level, fileLogger))

	logger.Info("store ready",
		"delay", storeConfig.Delay,
		"allow_unobserved", storeConfig.AllowUnobservedPublish,
		"trace", config.TraceFile,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig.String())
			cancel()
			sh.Close()
		case <-ctx.Done():
		}
	}()

	sh.Run(ctx, cancel)

	if fileLogger != nil {
		if err := fileLogger.Close(); err != nil {
			logger.Warn("trace incomplete", "path", config.TraceFile, "error", err)
		}
		logger.Info("trace closed", "path", config.TraceFile, "events", fileLogger.Written())
	}
}

// buildStoreConfig layers command line flags over the file configuration.
func buildStoreConfig(cfg Config, file FileConfig) subscription.Config {
	storeConfig := subscription.DefaultConfig()
	if file.Delay > 0 {
		storeConfig.Delay = file.Delay
	}
	if cfg.Delay > 0 {
		storeConfig.Delay = cfg.Delay
	}
	storeConfig.AllowUnobservedPublish = file.AllowUnobservedPublish || cfg.AllowUnobserved
	return storeConfig
}

// buildTrace combines the console and file trace sinks. Console tracing is
// only enabled at debug level.
func buildTrace(logger *slog.Logger, level slog.Level, fileLogger *log.FileLogger) log.Logger {
	var sinks []log.Logger
	if level <= slog.LevelDebug {
		sinks = append(sinks, log.NewSlogAdapter(logger))
	}
	if fileLogger != nil {
		sinks = append(sinks, fileLogger)
	}
	if len(sinks) == 0 {
		return nil
	}
	return log.NewMultiLogger(sinks...)
}

func parseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
