package chatstream

import (
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
)

// Display messages for the upstream status classes.
const (
	RateLimitMessage        = "Rate limit exceeded. Please try again later."
	CreditsExhaustedMessage = "AI credits exhausted. Please add credits to continue."
	DefaultFailureMessage   = "Failed to get AI response"
)

// ErrNoBody is reported when the response carries no readable body.
var ErrNoBody = errors.New("no response body")

// StatusKind classifies an unsuccessful upstream status.
type StatusKind int

const (
	StatusUpstream StatusKind = iota
	StatusRateLimited
	StatusCreditsExhausted
)

func (k StatusKind) String() string {
	switch k {
	case StatusRateLimited:
		return "rate_limited"
	case StatusCreditsExhausted:
		return "credits_exhausted"
	default:
		return "upstream"
	}
}

// StatusError is reported when the stream source answers with a non-2xx
// status. Message is ready for display.
type StatusError struct {
	StatusCode int
	Kind       StatusKind
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// ClassifyStatus maps an unsuccessful status code and its body to a
// StatusError. 429 and 402 get fixed messages; anything else uses the body's
// "error" field when present and fallback otherwise.
func ClassifyStatus(statusCode int, body []byte, fallback string) *StatusError {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &StatusError{StatusCode: statusCode, Kind: StatusRateLimited, Message: RateLimitMessage}
	case http.StatusPaymentRequired:
		return &StatusError{StatusCode: statusCode, Kind: StatusCreditsExhausted, Message: CreditsExhaustedMessage}
	}

	msg := fallback
	if gjson.ValidBytes(body) {
		if e := gjson.GetBytes(body, "error"); e.Type == gjson.String && e.Str != "" {
			msg = e.Str
		}
	}

	return &StatusError{StatusCode: statusCode, Kind: StatusUpstream, Message: msg}
}

// ConnectionError is reported when the request for the stream could not be
// sent at all.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ReadError is reported when reading the stream fails part way through.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return "stream interrupted: " + e.Err.Error()
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
