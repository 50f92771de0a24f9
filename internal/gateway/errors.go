package gateway

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a generation call failed.
type ErrorKind string

const (
	KindNetwork           ErrorKind = "network"
	KindService           ErrorKind = "service"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindCredential        ErrorKind = "credential"
	KindUnknown           ErrorKind = "unknown"
)

// Error is returned by providers for failed generation calls.
type Error struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s error", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatusCode returns the upstream status for service errors.
func (e *Error) HTTPStatusCode() int {
	return e.StatusCode
}

// NetworkError wraps a transport failure.
func NetworkError(provider string, err error) *Error {
	return &Error{Kind: KindNetwork, Provider: provider, Err: err}
}

// ServiceError wraps a non-2xx upstream response.
func ServiceError(provider string, status int, err error) *Error {
	return &Error{Kind: KindService, Provider: provider, StatusCode: status, Err: err}
}

// MalformedResponseError wraps a response that could not be interpreted.
func MalformedResponseError(provider string, err error) *Error {
	return &Error{Kind: KindMalformedResponse, Provider: provider, Err: err}
}

// CredentialError reports a missing or unusable API credential.
func CredentialError(provider string, err error) *Error {
	return &Error{Kind: KindCredential, Provider: provider, Err: err}
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var gwErr *Error
	if errors.As(err, &gwErr) && gwErr != nil {
		return gwErr.Kind
	}
	return KindUnknown
}
