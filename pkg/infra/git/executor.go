package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pullhook/pkg/domain/interfaces"
	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/m-mizutani/pullhook/pkg/domain/types"
)

// Default values of Executor settings
const (
	DefaultBinary  = "git"
	DefaultRemote  = "origin"
	DefaultTimeout = 60 * time.Second
)

// Executor runs `git pull <remote> <branch>` in a working directory. Runs
// against the same directory never overlap.
type Executor struct {
	runner   interfaces.CommandRunner
	binary   string
	remote   string
	timeout  time.Duration
	revision func(dir string) (string, error)
	locks    *dirLocks
}

// Option is a functional option for Executor configuration
type Option func(*Executor)

// WithRunner replaces the os/exec based command runner
func WithRunner(r interfaces.CommandRunner) Option {
	return func(x *Executor) {
		x.runner = r
	}
}

// WithBinary sets the git executable name or path
func WithBinary(binary string) Option {
	return func(x *Executor) {
		x.binary = binary
	}
}

// WithRemote sets the remote to pull from
func WithRemote(remote string) Option {
	return func(x *Executor) {
		x.remote = remote
	}
}

// WithTimeout bounds both waiting for the directory lock and running the command
func WithTimeout(d time.Duration) Option {
	return func(x *Executor) {
		x.timeout = d
	}
}

// WithRevisionReader replaces the go-git based HEAD lookup
func WithRevisionReader(f func(dir string) (string, error)) Option {
	return func(x *Executor) {
		x.revision = f
	}
}

// NewExecutor creates a new sync executor
func NewExecutor(opts ...Option) *Executor {
	x := &Executor{
		runner:   NewExecRunner(),
		binary:   DefaultBinary,
		remote:   DefaultRemote,
		timeout:  DefaultTimeout,
		revision: HeadRevision,
		locks:    newDirLocks(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Sync pulls branch into dir and reports what the command did
func (x *Executor) Sync(ctx context.Context, dir, branch string) (*model.SyncResult, error) {
	logger := ctxlog.From(ctx)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "project directory not found",
			goerr.T(types.ErrTagConfiguration), goerr.V("dir", dir))
	}
	if info, err := os.Stat(absDir); err != nil || !info.IsDir() {
		return nil, goerr.New("project directory not found",
			goerr.T(types.ErrTagConfiguration), goerr.V("dir", absDir))
	}

	result := &model.SyncResult{
		RunID:  uuid.NewString(),
		Dir:    absDir,
		Branch: branch,
	}
	logger = logger.With("run_id", result.RunID, "dir", absDir, "branch", branch)

	lockCtx, cancelLock := context.WithTimeout(ctx, x.timeout)
	release, err := x.locks.acquire(lockCtx, absDir)
	cancelLock()
	if err != nil {
		return nil, goerr.Wrap(err, "timed out waiting for another sync of the same directory",
			goerr.T(types.ErrTagTimeout), goerr.V("dir", absDir))
	}
	defer release()

	result.Before = x.readRevision(ctx, absDir)

	runCtx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	args := []string{"pull", x.remote, branch}
	logger.Debug("Running sync command", "command", x.binary, "args", args)

	start := time.Now()
	out, runErr := x.runner.Run(runCtx, absDir, x.binary, args...)
	result.Duration = time.Since(start)

	if out != nil {
		result.Stdout = string(out.Stdout)
		result.Stderr = string(out.Stderr)
		result.ExitCode = out.ExitCode
	} else {
		result.ExitCode = -1
	}

	// a command that exited cleanly counts as done even if the deadline passed meanwhile
	switch {
	case runErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.Status = model.SyncTimedOut
		logger.Warn("Sync command timed out", "timeout", x.timeout)
	case runErr != nil || result.ExitCode != 0:
		result.Status = model.SyncFailed
		if result.Stderr == "" && runErr != nil {
			result.Stderr = runErr.Error()
		}
		logger.Warn("Sync command failed", "exit_code", result.ExitCode, "stderr", result.Stderr)
	default:
		result.Status = model.SyncSucceeded
	}

	result.After = x.readRevision(ctx, absDir)
	return result, nil
}

func (x *Executor) readRevision(ctx context.Context, dir string) string {
	if x.revision == nil {
		return ""
	}
	rev, err := x.revision(dir)
	if err != nil {
		ctxlog.From(ctx).Debug("Failed to read HEAD revision", "dir", dir, "error", err)
		return ""
	}
	return rev
}
