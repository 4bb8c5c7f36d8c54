package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Error kinds surfaced by the assistant. Classify with errors.Is.
var (
	// ErrValidation is returned before any network call: empty prompt or no credential
	ErrValidation = goerr.New("validation error")
	// ErrNetwork is a transport-level failure reaching a remote service
	ErrNetwork = goerr.New("network error")
	// ErrAPI is a non-success status from a remote service, see APIError
	ErrAPI = goerr.New("api error")
	// ErrParse is a shape mismatch in a completion envelope or its payload
	ErrParse = goerr.New("parse error")
	// ErrCredentialFetch is a failure reading the credential store
	ErrCredentialFetch = goerr.New("credential fetch error")
	// ErrBusy rejects a submission while another one is in flight
	ErrBusy = goerr.New("request already in progress")
	// ErrNotSignedIn is returned when an operation needs a current user
	ErrNotSignedIn = goerr.New("not signed in")
)

// APIError carries the status and the service-provided message of a failed call
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("service returned status %d: %s", e.StatusCode, e.Message)
}

// Is makes errors.Is(err, ErrAPI) hold for any *APIError
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// ValidationError is a client-side rejection; Message is meant for the user
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) hold for any *ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
