package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/orbits/internal/version"
)

var errUnknownCommand = errors.New("unknown command")

func main() {
	flag.Usage = func() { printUsage(os.Stdout) }
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, flag.Arg(0), flag.Args()[1:], os.Stdout)
	stop()

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUnknownCommand):
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", flag.Arg(0))
		printUsage(os.Stderr)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches one subcommand. Output meant for the user goes to stdout;
// diagnostics go through the monitoring logger.
func run(ctx context.Context, command string, args []string, stdout io.Writer) error {
	switch command {
	case "simulate":
		return runSimulate(ctx, args, stdout)
	case "import":
		return runImport(ctx, args, stdout)
	case "plot":
		return runPlot(ctx, args, stdout)
	case "relative":
		return runRelative(ctx, args, stdout)
	case "serve":
		return runServe(ctx, args, stdout)
	case "migrate":
		return runMigrate(ctx, args, stdout)
	case "runs":
		return runRuns(ctx, args, stdout)
	case "delete":
		return runDelete(ctx, args, stdout)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `orbits - simulate, store and plot n-body trajectories

Usage: orbits <command> [options] [args]

Commands:
  simulate   Run the simulator and write <body>.csv files and/or a database
  import     Copy a directory of <body>.csv files into the database
  plot       Plot one body as loaded
  relative   Plot one body relative to another (reference pinned at origin)
  serve      Serve trajectories, relative motion and charts over HTTP
  migrate    Manage the database schema (up, down, status, force <version>)
  runs       List recorded simulation runs
  delete     Remove stored trajectories from the database
  version    Show orbits version
  help       Show this help message

Common Flags:
  --config <file>      Configuration file (.json, .yaml); defaults to
                       config/orbits.defaults.json when present
  --data <dir>         Read trajectories from <dir>/<body>.csv
  --db <file>          Read trajectories from the SQLite store
                       (--data and --db are mutually exclusive)
  --format png|html    Output format for plot and relative (default png)

Examples:
  # Simulate the configured system and store it
  orbits simulate --out data --db orbits.db

  # Earth as seen from the sun, as an interactive chart
  orbits relative --format html --out earth.html sun earth

  # Browse stored trajectories
  orbits serve --db orbits.db --listen :8080`)
}
