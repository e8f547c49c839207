package commands

import (
	"os"

	"github.com/pangpang20/gaussdb-django/internal/worker"
	"github.com/spf13/cobra"
)

// runWorker runs the test worker. Replaced in tests.
var runWorker = worker.Run

// NewWorkerCommand creates the worker command.
func NewWorkerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the Django backend test suite",
		Long: `Read the test app list and run the suite script with
DJANGO_TEST_APPS set, the native driver libraries on LD_LIBRARY_PATH and a
GAUSSQL_RUN_ID for the run. The script's exit status becomes the exit status
of this command.`,
		Example: `  gaussql worker
  gaussql worker --apps-file apps.txt --shards 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			res, err := runWorker(cmd.Context(), worker.Options{
				AppsFile: cc.Cfg.Worker.AppsFile,
				Script:   cc.Cfg.Worker.Script,
				Shards:   cc.Cfg.Worker.Shards,
				Env:      cc.Cfg.ChildEnv(os.Environ()),
				Stdout:   cc.Out,
				Stderr:   cc.ErrOut,
				Logger:   cc.Logger,
			})
			if err != nil {
				return err
			}
			if res.ExitCode != 0 {
				return &ExitCodeError{Code: res.ExitCode}
			}
			return nil
		},
	}

	cmd.Flags().String("apps-file", "", "Newline-delimited list of test apps (default django_test_apps.txt)")
	cmd.Flags().String("script", "", "Test suite script run with bash (default ./django_test_suite.sh)")
	cmd.Flags().Int("shards", 0, "Number of concurrent script runs (default 1)")
	return cmd
}
