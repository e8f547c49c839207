package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"strings"
)

// Job is one invocation of the suite script.
type Job struct {
	Script string
	Apps   []string
	Env    []string
	RunID  string
	Shard  int
}

// Environ returns the script environment: the base environment plus the
// app list and run id.
func (j Job) Environ() []string {
	env := slices.Clone(j.Env)
	return append(env,
		AppsEnvVar+"="+strings.Join(j.Apps, " "),
		RunIDEnvVar+"="+j.RunID,
	)
}

// Runner executes a job and reports the script's exit code.
type Runner interface {
	Run(ctx context.Context, job Job, stdout, stderr io.Writer) (int, error)
}

// ExecRunner runs the script with bash.
type ExecRunner struct {
	// Shell defaults to "bash".
	Shell string
}

// Run starts the script and waits for it. A non-zero exit is returned as the
// exit code with a nil error.
func (r ExecRunner) Run(ctx context.Context, job Job, stdout, stderr io.Writer) (int, error) {
	shell := r.Shell
	if shell == "" {
		shell = "bash"
	}
	cmd := exec.CommandContext(ctx, shell, job.Script) //nolint:gosec // script path comes from settings
	cmd.Env = job.Environ()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		return exitErr.ExitCode(), nil
	default:
		return -1, fmt.Errorf("failed to run %s: %w", job.Script, err)
	}
}
