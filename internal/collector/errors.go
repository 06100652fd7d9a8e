package collector

import (
	"errors"
	"fmt"
)

// Setup-time categories surfaced by ValidateEndpoint. Every setup failure maps
// onto exactly one of the two so the caller can drive a corrective flow.
var (
	ErrCannotConnect = errors.New("cannot connect to price endpoint")
	ErrInvalidData   = errors.New("price endpoint returned invalid data")
)

// ErrNoData is the terminal outcome of a refresh: both retry tiers exhausted
// and no previously fetched snapshot is available to fall back to.
var ErrNoData = errors.New("forecast unavailable and no cached snapshot")

// ValidationError marks a response body that failed the structural contract:
// undecodable JSON, missing required keys, or an unrecognized price label.
// For retry purposes it is treated exactly like a network failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid forecast payload: " + e.Reason }

// IsValidation reports whether err is a payload validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StatusError is a non-2xx response from the endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status %d", e.Code) }
