package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrorPayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrorInternal        ErrorCode = "INTERNAL_ERROR"
)

// Caller-facing messages for rejected chat requests.
const (
	MessageMissingFields = "Missing 'user_message' or 'history' in request body"
	MessageInvalidFields = "Invalid 'user_message' or 'history' in request body"
	MessageBodyTooLarge  = "Request body too large"
)

type Error struct {
	Code    ErrorCode
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason, message string, err error) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}

// MissingFieldsError reports a chat request lacking a required key.
func MissingFieldsError(reason string, err error) *Error {
	return newError(ErrorInvalidInput, reason, MessageMissingFields, err)
}

// InvalidFieldsError reports a chat request whose keys have the wrong shape.
func InvalidFieldsError(reason string, err error) *Error {
	return newError(ErrorInvalidInput, reason, MessageInvalidFields, err)
}

// BodyTooLargeError reports a chat request body above the configured limit.
func BodyTooLargeError(limit int64, err error) *Error {
	return newError(ErrorPayloadTooLarge, fmt.Sprintf("body_over_%d_bytes", limit), MessageBodyTooLarge, err)
}
