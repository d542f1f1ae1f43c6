// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auth

import (
	"crypto/subtle"
	"net/http"
)

// Verification is what a platform and this tool agreed upon.
type Verification struct {
	Secret Secret

	// If not empty, 'oauth_consumer_key' must match this.
	ConsumerKey string
}

// Authenticate implements the "HMAC-SHA1" signature method of OAuth 1.0:
// Knowledge of the shared secret is expressed by providing its "signature".
//
// 'req' and 'params' are results of NewCanonicalRequest.
func Authenticate(req CanonicalRequest, params Normalized, v *Verification) AuthError {
	if v == nil || v.Secret.IsZero() {
		return ErrSignatureMismatch
	}

	if m, present := params.Lookup(SignatureMethodParam); present && m != MethodHMACSHA1 {
		return ErrUnsupportedSignatureMethod
	}
	if ver, present := params.Lookup(VersionParam); present && ver != Version {
		return ErrUnsupportedVersion
	}

	// do this anyway to obscure if the consumer key is known
	err := Verify(req.BaseString(), params.Signature, v.Secret)

	if v.ConsumerKey != "" && err == nil {
		key, _ := params.Lookup(ConsumerKeyParam)
		if subtle.ConstantTimeCompare([]byte(key), []byte(v.ConsumerKey)) != 1 {
			return ErrUnknownConsumer
		}
	}
	return err
}

// AuthenticateHTTP is NewCanonicalRequest followed by Authenticate.
//
// Returns the verified parameters, without the signature.
func AuthenticateHTTP(r *http.Request, body []byte, trustForwardedHost bool, v *Verification) (Normalized, error) {
	req, params, err := NewCanonicalRequest(r, body, trustForwardedHost)
	if err != nil {
		return Normalized{}, err
	}
	if aerr := Authenticate(req, params, v); aerr != nil {
		return Normalized{}, aerr
	}
	return params, nil
}
