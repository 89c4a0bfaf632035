package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/danpilch/hycucheck/pkg/checks"
	"github.com/danpilch/hycucheck/pkg/config"
	"github.com/danpilch/hycucheck/pkg/debug"
	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/danpilch/hycucheck/pkg/logging"
	"github.com/danpilch/hycucheck/pkg/output"
	"github.com/danpilch/hycucheck/pkg/plugin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// usageError is an argument problem detected before any check runs.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check_hycu -l <host> -a <token> -t <type> [-n <name>] [-w N] [-c N]",
		Short: "Monitor a HYCU backup controller",
		Long: `check_hycu queries the HYCU REST API and reports one aspect of backup
health in monitoring-plugin format: a status line with perfdata and
exit code 0 (OK), 1 (WARNING), 2 (CRITICAL) or 3 (UNKNOWN).

Examples:
  check_hycu -l hycu.local -a $TOKEN -t vm -n web01
  check_hycu -l hycu.local -a $TOKEN -t jobs -w 5 -c 10 -p 24
  check_hycu -l hycu.local -a $TOKEN -t license -w 30 -c 7
  check_hycu -l hycu.local -t port -n 8443`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	config.RegisterFlags(cmd.Flags())

	cmd.AddCommand(newListCmd(stdout))
	cmd.AddCommand(newVersionCmd(stdout))
	cmd.AddCommand(newSelftestCmd(stdout, stderr))
	return cmd
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return plugin.OK.ExitCode()
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	// Flag parsing errors and bad arguments. Usage follows the status line.
	fmt.Fprintf(stdout, "%s: %v\n", plugin.Unknown, err)
	fmt.Fprintln(stdout, cmd.UsageString())
	return plugin.Unknown.ExitCode()
}

func runCheck(cmd *cobra.Command, stdout, stderr io.Writer) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(cmd.Flags(), envFile)
	if err != nil {
		return &usageError{err: err}
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return &usageError{err: err}
	}

	logger, err := logging.New(logging.LogConfig{Verbose: cfg.Verbose, File: cfg.LogFile, Writer: stderr})
	if err != nil {
		return &usageError{err: err}
	}
	defer logging.Close(logger)

	trace := debug.NewTraceLogger(stderr)
	trace.SetEnabled(false)

	clientCfg := cfg.ClientConfig()
	if cfg.Verbose {
		clientCfg.WrapTransport = func(rt http.RoundTripper) http.RoundTripper {
			return debug.NewTraceTransport(rt, trace)
		}
	}
	client := hycu.NewClient(clientCfg, logger)

	registry := checks.DefaultRegistry()
	var timed []*debug.TimedCheck
	if cfg.Verbose {
		registry, timed = debug.Instrument(registry)
	}

	dispatcher := checks.NewDispatcher(registry, checks.NewEnv(client, logger))
	dispatcher.SetDiagnostics(stderr)

	req := cfg.Request()
	if _, err := dispatcher.Validate(req); err != nil {
		var dispatchErr *checks.DispatchError
		if errors.As(err, &dispatchErr) && format == output.FormatPlugin {
			defer fmt.Fprintln(stdout, cmd.UsageString())
		}
	}

	logger.WithFields(logrus.Fields{
		"type":    req.Type,
		"host":    req.Host,
		"timeout": req.Timeout,
	}).Debug("Starting check")

	result := dispatcher.Dispatch(cmd.Context(), req)

	if cfg.Verbose {
		debug.DumpMetrics(stderr, result.Metrics)
		debug.TimingReport(stderr, debug.Timings(timed))
		debug.TraceReport(stderr, trace.Entries())
	}

	formatter := output.NewFormatter(format, stdout)
	formatter.SetVerbose(cfg.Verbose)
	if err := formatter.Render(result); err != nil {
		logger.WithError(err).Error("Failed to write result")
	}
	return &exitError{code: result.ExitCode()}
}
