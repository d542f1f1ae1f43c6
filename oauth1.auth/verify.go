// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
)

// Expected values of protocol parameters, if the platform sends them.
const (
	MethodHMACSHA1 = "HMAC-SHA1"
	Version        = "1.0"
)

// Secret is the signing key derived from a consumer secret.
//
// Values are immutable and safe to share between goroutines.
type Secret struct {
	key []byte
}

// NewSecret derives the key for HMAC-SHA1, RFC 5849 section 3.4.2.
//
// No token secret is used with LTI, therefore the key
// is the encoded consumer secret followed by "&".
func NewSecret(consumerSecret string) Secret {
	return Secret{key: []byte(Encode(consumerSecret) + "&")}
}

// IsZero is true for a Secret that has not been derived from anything.
func (s Secret) IsZero() bool { return len(s.key) == 0 }

// Verify checks 'signature', the value of parameter 'oauth_signature',
// against the HMAC-SHA1 of 'baseString'.
func Verify(baseString, signature string, secret Secret) AuthError {
	provided, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return ErrMalformedSignature
	}

	mac := hmac.New(sha1.New, secret.key)
	mac.Write([]byte(baseString))
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return ErrSignatureMismatch
	}
	return nil
}
