package usecase

import (
	"encoding/json"

	"github.com/google/go-github/v66/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/m-mizutani/pullhook/pkg/domain/types"
)

// ParseEvent builds an EventPayload from the event headers and the JSON body.
// Every event type must carry a JSON body; only push events need structured fields.
func ParseEvent(eventType, deliveryID string, body []byte) (*model.EventPayload, error) {
	payload := &model.EventPayload{
		EventType:  eventType,
		DeliveryID: deliveryID,
	}

	if eventType != types.EventPush {
		if !json.Valid(body) {
			return nil, goerr.New("invalid JSON payload",
				goerr.T(types.ErrTagPayload),
				goerr.V("event_type", eventType),
				goerr.V("delivery_id", deliveryID),
			)
		}
		return payload, nil
	}

	// Only the fields needed for dispatch are typed; commit records stay opaque.
	var envelope struct {
		Ref        *string `json:"ref"`
		Repository *struct {
			Name *string `json:"name"`
		} `json:"repository"`
		Commits []json.RawMessage `json:"commits"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, goerr.Wrap(err, "invalid JSON payload",
			goerr.T(types.ErrTagPayload),
			goerr.V("event_type", eventType),
			goerr.V("delivery_id", deliveryID),
		)
	}

	// commits: [] is valid, a missing or null commits field is not
	switch {
	case envelope.Repository == nil || envelope.Repository.Name == nil:
		return nil, missingField("repository.name", deliveryID)
	case envelope.Ref == nil:
		return nil, missingField("ref", deliveryID)
	case envelope.Commits == nil:
		return nil, missingField("commits", deliveryID)
	}

	payload.Repository = *envelope.Repository.Name
	payload.Ref = *envelope.Ref
	payload.Branch = model.BranchFromRef(payload.Ref)
	payload.CommitCount = len(envelope.Commits)

	enrichPush(payload, body)
	return payload, nil
}

// enrichPush fills optional details from the full push event. Bodies that do
// not fit go-github's types are still accepted without them.
func enrichPush(payload *model.EventPayload, body []byte) {
	var event github.PushEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return
	}
	payload.FullName = event.GetRepo().GetFullName()
	payload.Pusher = event.GetPusher().GetName()
	payload.HeadCommit = event.GetHeadCommit().GetID()
}

func missingField(field, deliveryID string) error {
	return goerr.New("invalid payload: missing "+field,
		goerr.T(types.ErrTagPayload),
		goerr.V("field", field),
		goerr.V("delivery_id", deliveryID),
	)
}
