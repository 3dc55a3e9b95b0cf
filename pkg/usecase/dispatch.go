package usecase

import (
	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/m-mizutani/pullhook/pkg/domain/types"
)

// Decide chooses what to do with an event. It has no side effects.
func Decide(eventType, branch string, branches []string) model.DispatchDecision {
	if eventType != types.EventPush {
		return model.IgnoreDecision(branch, model.ReasonNoAction)
	}
	if branch == "" {
		return model.ErrorDecision(model.ReasonEmptyBranch)
	}

	for _, b := range branches {
		if b == branch {
			return model.SyncDecision(branch)
		}
	}
	return model.IgnoreDecision(branch, model.ReasonBranchNotConfigured)
}
