package suez

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenNotFound means neither token pattern matched the login page
	ErrTokenNotFound = errors.New("cannot find anti-forgery token on login page")

	// ErrInvalidCredentials means the login form was accepted but no session cookie was issued
	ErrInvalidCredentials = errors.New("login error: please check your username/password")

	// ErrCounterNotFound means the consumption page carries no counter id
	ErrCounterNotFound = errors.New("cannot find counter id on consumption page")

	// ErrLastKnownNotFound means the recovery search exhausted its day budget
	ErrLastKnownNotFound = errors.New("no non-zero meter total found")
)

// LoginSubmissionError wraps a transport failure while posting the login form
type LoginSubmissionError struct {
	Err error
}

func (e *LoginSubmissionError) Error() string {
	return fmt.Sprintf("cannot submit login form: %v", e.Err)
}

func (e *LoginSubmissionError) Unwrap() error {
	return e.Err
}

// RemoteError is the portal's own error envelope, ["ERR", message]
type RemoteError struct {
	Endpoint string
	Message  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: portal returned error: %s", e.Endpoint, e.Message)
}

// MalformedResponseError names the logical field that failed validation
type MalformedResponseError struct {
	Field string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Field, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func malformed(field, format string, args ...any) error {
	return &MalformedResponseError{Field: field, Err: fmt.Errorf(format, args...)}
}

// StatusError is returned when the portal answers with a non-2xx status
// and a body that is not an error envelope.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected HTTP status %d", e.Endpoint, e.StatusCode)
}
