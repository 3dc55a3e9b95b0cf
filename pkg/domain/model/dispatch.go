package model

// DispatchAction is the variant tag of DispatchDecision
type DispatchAction int

const (
	DispatchIgnore DispatchAction = iota
	DispatchSync
	DispatchError
)

func (a DispatchAction) String() string {
	switch a {
	case DispatchSync:
		return "sync"
	case DispatchError:
		return "error"
	default:
		return "ignore"
	}
}

// Reasons attached to Ignore and Error decisions
const (
	ReasonNoAction            = "event received, no action taken"
	ReasonBranchNotConfigured = "branch not configured"
	ReasonEmptyBranch         = "empty branch in ref"
)

// DispatchDecision is one of Sync(branch), Ignore(branch, reason) or Error(reason)
type DispatchDecision struct {
	Action DispatchAction
	Branch string
	Reason string
}

// SyncDecision builds Sync(branch)
func SyncDecision(branch string) DispatchDecision {
	return DispatchDecision{Action: DispatchSync, Branch: branch}
}

// IgnoreDecision builds Ignore(branch) with a classification reason
func IgnoreDecision(branch, reason string) DispatchDecision {
	return DispatchDecision{Action: DispatchIgnore, Branch: branch, Reason: reason}
}

// ErrorDecision builds Error(reason)
func ErrorDecision(reason string) DispatchDecision {
	return DispatchDecision{Action: DispatchError, Reason: reason}
}
