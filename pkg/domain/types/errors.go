package types

import "github.com/m-mizutani/goerr/v2"

// Tags attached to errors with goerr.T to classify them for the HTTP boundary.
var (
	ErrTagAuthentication = goerr.NewTag("authentication")
	ErrTagPayload        = goerr.NewTag("payload")
	ErrTagConfiguration  = goerr.NewTag("configuration")
	ErrTagExecution      = goerr.NewTag("execution")
	ErrTagTimeout        = goerr.NewTag("timeout")
)

// ErrorKind is the closed set of error categories a request can end with
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindAuthentication
	KindPayload
	KindConfiguration
	KindExecution
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindPayload:
		return "payload"
	case KindConfiguration:
		return "configuration"
	case KindExecution:
		return "execution"
	case KindTimeout:
		return "timeout"
	default:
		return "unexpected"
	}
}

// KindOf classifies err by its goerr tag. Untagged errors are KindUnexpected.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnexpected
	case goerr.HasTag(err, ErrTagAuthentication):
		return KindAuthentication
	case goerr.HasTag(err, ErrTagPayload):
		return KindPayload
	case goerr.HasTag(err, ErrTagConfiguration):
		return KindConfiguration
	case goerr.HasTag(err, ErrTagTimeout):
		return KindTimeout
	case goerr.HasTag(err, ErrTagExecution):
		return KindExecution
	default:
		return KindUnexpected
	}
}
