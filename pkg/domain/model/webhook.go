package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/pullhook/pkg/domain/types"
)

// WebhookRequest is the raw inbound notification. It is not modified after
// the controller builds it.
type WebhookRequest struct {
	EventType  string    // Retrieved from X-GitHub-Event header
	DeliveryID string    // Retrieved from X-GitHub-Delivery header
	Signature  string    // Retrieved from X-Hub-Signature-256 header
	Body       []byte    // Raw request body, exactly as signed
	ReceivedAt time.Time // Time when the request was received
}

// EventPayload holds the fields extracted from a webhook body
type EventPayload struct {
	EventType   string
	DeliveryID  string
	Repository  string // repository.name
	Ref         string // e.g. refs/heads/main
	Branch      string // derived from Ref
	CommitCount int

	// Optional details, empty when the body does not carry them
	FullName   string // repository.full_name
	Pusher     string // pusher.name
	HeadCommit string // head_commit.id
}

// IsPush reports whether the payload came from a push event
func (p *EventPayload) IsPush() bool {
	return p.EventType == types.EventPush
}

const branchRefPrefix = "refs/heads/"

// BranchFromRef derives a branch name from a git ref. refs/heads/<branch> is
// stripped to <branch> (which may itself contain slashes). Any other shape
// yields the segment after the last slash.
func BranchFromRef(ref string) string {
	if strings.HasPrefix(ref, branchRefPrefix) {
		return strings.TrimPrefix(ref, branchRefPrefix)
	}
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}
