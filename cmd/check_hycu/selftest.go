package main

import (
	"fmt"
	"io"

	"github.com/danpilch/hycucheck/pkg/checks"
	"github.com/danpilch/hycucheck/pkg/config"
	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/danpilch/hycucheck/pkg/logging"
	"github.com/danpilch/hycucheck/pkg/selftest"
	"github.com/spf13/cobra"
)

func newSelftestCmd(stdout, stderr io.Writer) *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run every check against a live controller",
		Long: `selftest reads HYCU_HOST, HYCU_TOKEN, TIMEOUT, TEST_VM_NAME,
TEST_TARGET_NAME, TEST_POLICY_NAME and per-check thresholds such as
JOBS_WARNING from the environment or a .env file, runs each check and
prints a summary table. It exits 1 when a required check does not
return OK.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return &usageError{err: err}
			}
			settings := selftest.LoadSettings()
			if err := settings.Validate(); err != nil {
				return &usageError{err: err}
			}

			logger, err := logging.New(logging.LogConfig{Verbose: settings.Verbose, Writer: stderr})
			if err != nil {
				return &usageError{err: err}
			}

			client := hycu.NewClient(hycu.ClientConfig{
				Host:    settings.Host,
				Token:   settings.Token,
				Timeout: settings.Timeout,
			}, logger)
			dispatcher := checks.NewDispatcher(checks.DefaultRegistry(), checks.NewEnv(client, logger))
			dispatcher.SetDiagnostics(stderr)

			fmt.Fprintf(stdout, "HYCU Host: %s\n\n", settings.Host)
			report := selftest.NewRunner(dispatcher, logger).Run(cmd.Context(), selftest.Scenarios(settings))
			report.Render(stdout)
			return &exitError{code: report.ExitCode()}
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load environment from this file (default .env when present)")
	return cmd
}
