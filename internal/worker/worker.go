// Package worker runs the Django test suite script over a list of test
// apps, optionally split into concurrent shards.
package worker

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Environment variables passed to the suite script.
const (
	AppsEnvVar  = "DJANGO_TEST_APPS"
	RunIDEnvVar = "GAUSSQL_RUN_ID"
)

// Options configures a worker run.
type Options struct {
	AppsFile string
	Script   string
	Shards   int
	Env      []string // base environment of the script; nil means none

	Runner Runner
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// ShardResult is the outcome of one script invocation.
type ShardResult struct {
	Index    int
	Apps     []string
	ExitCode int
	Elapsed  time.Duration
}

// Result is the outcome of a worker run.
type Result struct {
	RunID    string
	Apps     []string
	Shards   []ShardResult
	ExitCode int // first non-zero shard exit code, in shard order
	Elapsed  time.Duration
}

// ReadApps reads a newline-delimited app list, dropping blank lines.
func ReadApps(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from settings
	if err != nil {
		return nil, fmt.Errorf("failed to open app list: %w", err)
	}
	defer func() { _ = f.Close() }()

	var apps []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if app := strings.TrimSpace(sc.Text()); app != "" {
			apps = append(apps, app)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read app list: %w", err)
	}
	return apps, nil
}

// Split divides apps into at most n contiguous groups of near-equal size.
func Split(apps []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	if n > len(apps) {
		n = len(apps)
	}
	groups := make([][]string, 0, n)
	start := 0
	for i := range n {
		size := len(apps) / n
		if i < len(apps)%n {
			size++
		}
		groups = append(groups, apps[start:start+size])
		start += size
	}
	return groups
}

// Run reads the app list and runs the suite script. An empty list runs
// nothing and succeeds. A non-zero script exit is reported in
// Result.ExitCode; the returned error is for failures to run at all.
func Run(ctx context.Context, opts Options) (*Result, error) {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	apps, err := ReadApps(opts.AppsFile)
	if err != nil {
		return nil, err
	}

	header := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(stdout, "%s %s\n", header("test apps:"), strings.Join(apps, " "))

	res := &Result{RunID: uuid.NewString(), Apps: apps}
	if len(apps) == 0 {
		fmt.Fprintln(stdout, "no test apps; nothing to run")
		return res, nil
	}

	groups := Split(apps, opts.Shards)
	res.Shards = make([]ShardResult, len(groups))
	logger.Info("starting test run",
		slog.String("run_id", res.RunID),
		slog.Int("apps", len(apps)),
		slog.Int("shards", len(groups)))

	start := time.Now()
	var outMu sync.Mutex
	var g errgroup.Group
	for i, group := range groups {
		job := Job{
			Script: opts.Script,
			Apps:   group,
			Env:    opts.Env,
			RunID:  res.RunID,
			Shard:  i,
		}
		out, errOut := stdout, stderr
		if len(groups) > 1 {
			prefix := fmt.Sprintf("[shard %d] ", i+1)
			out = newPrefixWriter(&outMu, stdout, prefix)
			errOut = newPrefixWriter(&outMu, stderr, prefix)
		}
		g.Go(func() error {
			shardStart := time.Now()
			code, err := runner.Run(ctx, job, out, errOut)
			flush(out, errOut)
			if err != nil {
				return fmt.Errorf("shard %d: %w", job.Shard+1, err)
			}
			res.Shards[job.Shard] = ShardResult{
				Index:    job.Shard,
				Apps:     job.Apps,
				ExitCode: code,
				Elapsed:  time.Since(shardStart),
			}
			logger.Debug("shard finished",
				slog.Int("shard", job.Shard+1),
				slog.Int("exit_code", code))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)

	for _, s := range res.Shards {
		if s.ExitCode != 0 {
			res.ExitCode = s.ExitCode
			break
		}
	}

	printSummary(stdout, res)
	return res, nil
}

func printSummary(w io.Writer, res *Result) {
	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	if len(res.Shards) > 1 {
		for _, s := range res.Shards {
			status := ok("ok")
			if s.ExitCode != 0 {
				status = fail(fmt.Sprintf("exit %d", s.ExitCode))
			}
			fmt.Fprintf(w, "  shard %d: %s in %s (%d apps)\n", s.Index+1, status, s.Elapsed.Round(time.Millisecond), len(s.Apps))
		}
	}

	status := ok("PASSED")
	if res.ExitCode != 0 {
		status = fail(fmt.Sprintf("FAILED (exit %d)", res.ExitCode))
	}
	fmt.Fprintf(w, "%s in %s [run %s]\n", status, res.Elapsed.Round(time.Millisecond), res.RunID)
}

// prefixWriter prefixes every output line. All writers of one run share a
// mutex, so lines from concurrent shards never interleave.
type prefixWriter struct {
	mu     *sync.Mutex
	w      io.Writer
	prefix string
	buf    []byte
}

func newPrefixWriter(mu *sync.Mutex, w io.Writer, prefix string) *prefixWriter {
	return &prefixWriter{mu: mu, w: w, prefix: prefix}
}

// Write emits complete lines and buffers a trailing partial line.
func (p *prefixWriter) Write(b []byte) (int, error) {
	p.buf = append(p.buf, b...)
	for {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		if err := p.emit(p.buf[:i+1]); err != nil {
			return 0, err
		}
		p.buf = p.buf[i+1:]
	}
}

func (p *prefixWriter) emit(line []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.w, p.prefix+string(line))
	return err
}

// Flush writes any buffered partial line.
func (p *prefixWriter) Flush() error {
	if len(p.buf) == 0 {
		return nil
	}
	err := p.emit(append(p.buf, '\n'))
	p.buf = nil
	return err
}

func flush(ws ...io.Writer) {
	for _, w := range ws {
		if pw, ok := w.(*prefixWriter); ok {
			_ = pw.Flush()
		}
	}
}
