// Package appshell wires a command runner to the process: signals, argv,
// standard streams and the exit status.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"srat/internal/appcore"
)

// Runner executes a command line and returns its exit code.
type Runner func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// Exec runs run with a context cancelled by SIGINT/SIGTERM. A run that was
// interrupted but still reports success exits with ExitCancelled.
func Exec(run Runner, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(argv) == 0 {
		argv = []string{"-h"}
	}
	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == appcore.ExitOK {
		code = appcore.ExitCancelled
	}
	return code
}

// Main is Exec on the process streams, followed by os.Exit.
func Main(run Runner) {
	os.Exit(Exec(run, os.Args[1:], os.Stdout, os.Stderr))
}
