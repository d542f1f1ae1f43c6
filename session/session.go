// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package session turns a verified LTI launch into a short-lived session,
// which is carried by the client in a signed cookie.
package session // import "blitznote.com/src/caddy.lti/session"

import (
	"github.com/pkg/errors"

	auth "blitznote.com/src/caddy.lti/oauth1.auth"
)

// Session is what a client keeps between requests.
type Session struct {
	DisplayName string
	VisitCount  uint64
}

// Establish creates the initial session of a verified launch.
//
// The display name must be set.
func Establish(l Launch) (Session, error) {
	if l.DisplayName == "" {
		return Session{}, errors.Wrap(auth.ErrMissingRequiredAttribute, ParamDisplayName)
	}
	return Session{DisplayName: l.DisplayName}, nil
}

// Increment counts a visit.
func Increment(s Session) Session {
	s.VisitCount++
	return s
}
