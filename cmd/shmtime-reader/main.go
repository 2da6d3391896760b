package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/maximewewer/shmtime-reader/internal/config"
	"github.com/maximewewer/shmtime-reader/internal/report"
	"github.com/maximewewer/shmtime-reader/internal/shm"
	"github.com/maximewewer/shmtime-reader/pkg/logger"
	"github.com/maximewewer/shmtime-reader/pkg/metrics"
)

var (
	// Build information, set via ldflags
	version = "dev"
	commit  = "unknown"
)

const formatOption = "--format"

// snapshotReader is satisfied by *shm.Reader.
type snapshotReader interface {
	Read(ctx context.Context, unit int) (*shm.Snapshot, error)
}

type readerFactory func(cfg *config.Config) snapshotReader

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr, newReader))
}

func newReader(cfg *config.Config) snapshotReader {
	return shm.NewReader(shm.ReaderConfig{
		BaseKey:       cfg.SHM.BaseKey,
		ReadRetries:   cfg.SHM.ReadRetries,
		RetryInterval: cfg.SHM.RetryInterval,
	})
}

// run executes the CLI and returns the process exit status.
func run(args []string, stdout, stderr io.Writer, factory readerFactory) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newApp(stdout, stderr, factory).RunContext(ctx, args)
	if err == nil {
		return 0
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(stderr, msg)
		}
		return exitErr.ExitCode()
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func newApp(stdout, stderr io.Writer, factory readerFactory) *cli.App {
	return &cli.App{
		Name:            "shmtime-reader",
		Usage:           "Read NTP shared memory reference clock samples",
		ArgsUsage:       "<shm_unit> [--format]",
		Version:         fmt.Sprintf("%s (commit: %s)", version, commit),
		HideHelp:        true,
		HideVersion:     true,
		SkipFlagParsing: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		// Exit codes are mapped by run.
		ExitErrHandler: func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			return readAction(c, factory)
		},
	}
}

// parseArgs applies the positional grammar <unit> [--format].
func parseArgs(name string, args []string) (int, bool, error) {
	if len(args) < 1 || len(args) > 2 {
		return 0, false, cli.Exit(usage(name), 1)
	}

	unit, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, false, cli.Exit(usage(name), 1)
	}
	if unit < 0 {
		return 0, false, cli.Exit("Error: Invalid unit number. Must be non-negative.", 1)
	}

	if len(args) == 2 {
		if args[1] != formatOption {
			return 0, false, cli.Exit(fmt.Sprintf("Error: Unknown option '%s'\nValid option: %s", args[1], formatOption), 1)
		}
		return unit, true, nil
	}

	return unit, false, nil
}

func usage(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s <shm_unit> [--format]\n", name)
	b.WriteString("  <shm_unit>: NTP shared memory unit number (typically 0-3)\n")
	b.WriteString("  --format:   Display human-readable formatted output\n")
	b.WriteString("  (default):  Output raw bytes to stdout\n")
	b.WriteString("\nExamples:\n")
	fmt.Fprintf(&b, "  %s 0          # Output raw bytes\n", name)
	fmt.Fprintf(&b, "  %s 0 --format # Display formatted output", name)
	return b.String()
}

func readAction(c *cli.Context, factory readerFactory) error {
	unit, format, err := parseArgs(c.App.Name, c.Args().Slice())
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return cli.Exit("Error: Failed to load configuration: "+err.Error(), 1)
	}

	if err := logger.InitLogger(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		Component:  "shmtime-reader",
		EnableFile: cfg.Logging.EnableFile,
	}); err != nil {
		return cli.Exit("Error: Failed to initialize logger: "+err.Error(), 1)
	}

	logger.Startup(version, commit, map[string]interface{}{
		"go_version": runtime.Version(),
		"config":     cfg,
	})

	if _, err := shm.KeyFor(cfg.SHM.BaseKey, unit); err != nil {
		return cli.Exit(fmt.Sprintf("Error: Invalid unit number. Unit %d has no SHM key above base 0x%x.", unit, cfg.SHM.BaseKey), 1)
	}

	loc, err := cfg.Output.Location()
	if err != nil {
		return cli.Exit("Error: Invalid timezone: "+err.Error(), 1)
	}

	snap, err := factory(cfg).Read(c.Context, unit)
	if err != nil {
		return readError(err)
	}

	if format {
		err = report.WriteFormatted(c.App.Writer, snap.Sample, loc)
	} else {
		err = report.WriteRaw(c.App.Writer, snap.Raw)
	}
	if err != nil {
		logger.Error("main", "Failed to write output", err)
		return cli.Exit("Error: Failed to write output: "+err.Error(), 1)
	}

	if cfg.Metrics.TextfilePath != "" {
		if err := exportMetrics(cfg, snap); err != nil {
			return cli.Exit("Error: Failed to write metrics textfile: "+err.Error(), 1)
		}
	}

	return nil
}

// readError renders the diagnostic for a failed lookup or attach.
func readError(err error) error {
	var lookupErr *shm.LookupError
	if errors.As(err, &lookupErr) {
		return cli.Exit(fmt.Sprintf(
			"Error: Failed to get shared memory segment for unit %d (key: 0x%x)\nError details: %v\n%s",
			lookupErr.Unit, lookupErr.Key, lookupErr.Err, lookupErr.Hint()), 1)
	}

	var attachErr *shm.AttachError
	if errors.As(err, &attachErr) {
		return cli.Exit(fmt.Sprintf(
			"Error: Failed to attach to shared memory segment\nError details: %v\n%s",
			attachErr.Err, attachErr.Hint()), 1)
	}

	return cli.Exit("Error: "+err.Error(), 1)
}

func exportMetrics(cfg *config.Config, snap *shm.Snapshot) error {
	registry := metrics.NewRegistryWithConfig(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	if err := registry.Register(); err != nil {
		return err
	}

	m := registry.GetMetrics()
	m.SetBuildInfo(version)
	m.ObserveSnapshot(snap)

	if err := registry.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		return err
	}

	logger.SafeDebug("main", "Metrics textfile written", map[string]interface{}{
		"path": cfg.Metrics.TextfilePath,
		"unit": snap.Unit,
	})
	return nil
}
