package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingCredential is matched by errors.Is when no API key is configured
// for a provider that needs one.
var ErrMissingCredential = errors.New("missing API key")

// Kind classifies provider failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindMissingCredential
	KindAuth
	KindRateLimit
	KindNetwork
	KindProvider
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindNetwork:
		return "network"
	case KindProvider:
		return "provider"
	case KindResponse:
		return "response"
	default:
		return "unknown"
	}
}

// Error is returned by every provider call.
type Error struct {
	Kind     Kind
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func missingCredential(provider string) *Error {
	return &Error{
		Kind:     KindMissingCredential,
		Provider: provider,
		Message:  "an API key is required",
		Err:      ErrMissingCredential,
	}
}

func networkError(provider string, err error) *Error {
	return &Error{Kind: KindNetwork, Provider: provider, Message: "request failed", Err: err}
}

func responseError(provider, message string, err error) *Error {
	return &Error{Kind: KindResponse, Provider: provider, Message: message, Err: err}
}

// statusError maps a non-2xx HTTP status to an error kind. body is kept
// short since some providers echo the whole request back.
func statusError(provider string, status int, body []byte) *Error {
	kind := KindProvider
	message := "API error"
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuth
		message = "invalid API key"
	case http.StatusTooManyRequests:
		kind = KindRateLimit
		message = "rate limited"
	}

	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	e := &Error{Kind: kind, Provider: provider, Status: status, Message: message}
	if len(body) > 0 {
		e.Err = errors.New(string(body))
	}
	return e
}
