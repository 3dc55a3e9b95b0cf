package model

import "time"

// SyncStatus is the outcome of one sync run
type SyncStatus string

const (
	SyncSucceeded SyncStatus = "succeeded"
	SyncFailed    SyncStatus = "failed"
	SyncTimedOut  SyncStatus = "timed_out"
)

// SyncResult represents the result of one external update command
type SyncResult struct {
	RunID    string        // Unique ID of this run, for log correlation
	Dir      string        // Working directory the command ran in
	Branch   string        // Branch that was pulled
	Status   SyncStatus    // Outcome of the command
	ExitCode int           // Process exit code, -1 if the process did not exit normally
	Stdout   string        // Captured standard output
	Stderr   string        // Captured standard error
	Duration time.Duration // Wall clock time of the command
	Before   string        // HEAD revision before the command, empty if unknown
	After    string        // HEAD revision after the command, empty if unknown
}

// Succeeded reports whether the command exited with status 0
func (r *SyncResult) Succeeded() bool {
	return r != nil && r.Status == SyncSucceeded
}

// Changed reports whether HEAD moved during the run. Unknown revisions count as unchanged.
func (r *SyncResult) Changed() bool {
	return r != nil && r.Before != "" && r.After != "" && r.Before != r.After
}
