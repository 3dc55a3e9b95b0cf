package model

// Response status values
const (
	StatusSuccess  = "success"
	StatusIgnored  = "ignored"
	StatusReceived = "received"
	StatusError    = "error"
)

// Response is the JSON body returned by the webhook endpoint
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Outcome is what the webhook use case produced for a request that did not fail
type Outcome struct {
	Response
	Decision DispatchDecision
	Payload  *EventPayload
	Result   *SyncResult // nil unless a sync ran
}
