package types

// Request headers consumed by the webhook endpoint
const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderDelivery  = "X-GitHub-Delivery"
	HeaderSignature = "X-Hub-Signature-256"
)

// SignaturePrefix is prepended to the hex encoded HMAC-SHA256 digest
const SignaturePrefix = "sha256="

// EventPush is the only event type that can trigger a sync
const EventPush = "push"
