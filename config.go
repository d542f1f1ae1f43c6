// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lti

import (
	"encoding/base64"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	auth "blitznote.com/src/caddy.lti/oauth1.auth"
	"blitznote.com/src/caddy.lti/session"
)

// Defaults of a Configuration.
const (
	DefaultCookieName   = "lti"
	DefaultCookieMaxAge = 3600    // seconds
	DefaultMaxBodySize  = 1 << 20 // LTI launches are a few KiB
)

// Configuration represents the settings for a scope (path).
//
// Must not be modified after a handler has been created with it.
type Configuration struct {
	// Shared secret, and optionally the consumer key, of the platform.
	Verification auth.Verification

	// Use header "X-Forwarded-Host", if set, in place of "Host".
	// Enable this only behind a proxy that sets it.
	TrustForwardedHost bool

	// Launches with larger bodies will be rejected.
	MaxBodySize int64

	CookieName    string
	CookieMaxAge  int
	SecureCookies bool

	// Pairs of keys for signing and encrypting cookies.
	// If empty, a random key is used and sessions won't survive restarts.
	SessionKeys [][]byte

	// Normalize display names to this, if set.
	DisplayNameForm *struct{ Use norm.Form }

	// A skilled attacker will monitor traffic, and timings.
	// Enabling this merely obscures the endpoint by passing failed launches on.
	SilenceAuthErrors bool
}

// NewDefaultConfiguration creates a new default configuration.
func NewDefaultConfiguration(secret string) *Configuration {
	return &Configuration{
		Verification: auth.Verification{Secret: auth.NewSecret(secret)},
		MaxBodySize:  DefaultMaxBodySize,
		CookieName:   DefaultCookieName,
		CookieMaxAge: DefaultCookieMaxAge,
	}
}

// AddSessionKeys decodes the arguments and appends them to the keys for cookies.
//
// The format of each element is base64 (standard encoding, padded).
// Keys alternate: one for authentication (32 or 64 bytes),
// then one for encryption (16, 24, or 32 bytes for AES).
// The first element that cannot be used is returned as error string.
func (c *Configuration) AddSessionKeys(encoded []string) error {
	for idx := range encoded {
		binary, err := base64.StdEncoding.DecodeString(encoded[idx])
		if err != nil {
			return errors.Wrap(err, encoded[idx])
		}
		isBlockKey := len(c.SessionKeys)%2 == 1
		switch l := len(binary); {
		case !isBlockKey && l != 32 && l != 64:
			return errors.Errorf("%s: want 32 or 64 bytes, got %d", encoded[idx], l)
		case isBlockKey && l != 16 && l != 24 && l != 32:
			return errors.Errorf("%s: want 16, 24, or 32 bytes, got %d", encoded[idx], l)
		}
		c.SessionKeys = append(c.SessionKeys, binary)
	}
	return nil
}

// Validate rejects configurations that cannot work.
func (c *Configuration) Validate() error {
	switch {
	case c.Verification.Secret.IsZero():
		return errors.New("the shared secret is missing")
	case c.MaxBodySize <= 0:
		return errors.New("max body size must be positive")
	case c.CookieName == "":
		return errors.New("the cookie name must not be empty")
	case c.CookieMaxAge < 0:
		return errors.New("cookie max age must not be negative")
	}
	return nil
}

func (c *Configuration) sessionStore() *session.Store {
	keys := c.SessionKeys
	if len(keys) == 0 {
		keys = [][]byte{session.GenerateKey()}
	}
	return session.NewStore(session.Options{
		Name:   c.CookieName,
		MaxAge: c.CookieMaxAge,
		Secure: c.SecureCookies,
	}, keys...)
}

func (c *Configuration) displayNameForm() *norm.Form {
	if c.DisplayNameForm == nil {
		return nil
	}
	return &c.DisplayNameForm.Use
}
