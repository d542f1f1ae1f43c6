// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auth

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// AuthError adds a behavioural hint to an Error.
type AuthError interface {
	error

	// SuggestedResponseCode gives a HTTP status code.
	SuggestedResponseCode() int

	// Kind is a short label, suitable for logs and metrics.
	Kind() string
}

// Errors returned when verifying a launch.
//
// Except for the missing Host all of them map to the same status,
// so that a client cannot tell which check failed.
const (
	ErrMalformedBody              unauthorizedError = "malformed body"
	ErrMissingSignature           unauthorizedError = "missing signature"
	ErrMalformedSignature         unauthorizedError = "malformed signature"
	ErrSignatureMismatch          unauthorizedError = "signature mismatch"
	ErrMissingRequiredAttribute   unauthorizedError = "missing required attribute"
	ErrUnsupportedSignatureMethod unauthorizedError = "unsupported signature method"
	ErrUnsupportedVersion         unauthorizedError = "unsupported version"
	ErrUnknownConsumer            unauthorizedError = "unknown consumer"
	ErrMissingHostHeader          badRequestError   = "missing host header"
)

// badRequestError is returned on formal errors.
type badRequestError string

// Error implements the error interface.
func (e badRequestError) Error() string { return string(e) }

// SuggestedResponseCode implements the AuthError interface.
func (e badRequestError) SuggestedResponseCode() int { return http.StatusBadRequest }

// Kind implements the AuthError interface.
func (e badRequestError) Kind() string { return kind(string(e)) }

// unauthorizedError is given when the request could not be verified.
//
// The client should not learn anything beyond that from it.
type unauthorizedError string

// Error implements the error interface.
func (e unauthorizedError) Error() string { return string(e) }

// SuggestedResponseCode implements the AuthError interface.
func (e unauthorizedError) SuggestedResponseCode() int { return http.StatusUnauthorized }

// Kind implements the AuthError interface.
func (e unauthorizedError) Kind() string { return kind(string(e)) }

func kind(s string) string {
	return strings.Replace(s, " ", "_", -1)
}

// Cause returns the AuthError that err has been derived from,
// or nil if there is none.
func Cause(err error) AuthError {
	if err == nil {
		return nil
	}
	if a, ok := errors.Cause(err).(AuthError); ok {
		return a
	}
	return nil
}
