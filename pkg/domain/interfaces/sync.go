package interfaces

import (
	"context"

	"github.com/m-mizutani/pullhook/pkg/domain/model"
)

// SyncExecutor updates a working directory from its remote
type SyncExecutor interface {
	// Sync pulls branch into dir. Process level outcomes (non-zero exit,
	// timeout) are reported in SyncResult.Status; the error is reserved for
	// failures that prevented the command from running.
	Sync(ctx context.Context, dir, branch string) (*model.SyncResult, error)
}

// CommandRunner runs an external command in a directory and captures its output
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (*CommandOutput, error)
}

// CommandOutput is what CommandRunner captured. ExitCode is -1 when the
// process was killed or never exited normally.
type CommandOutput struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Notifier reports sync outcomes to an external channel
type Notifier interface {
	NotifySync(ctx context.Context, payload *model.EventPayload, result *model.SyncResult) error
}

// SyncRecorder collects metrics about dispatch decisions and sync runs
type SyncRecorder interface {
	ObserveDecision(action model.DispatchAction)
	ObserveSync(result *model.SyncResult)
}
