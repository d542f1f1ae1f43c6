// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package auth verifies requests signed per OAuth 1.0 (RFC 5849),
// signature method HMAC-SHA1, as sent by learning platforms on a LTI 1.1 launch.
//
// The platform posts a form like this:
//
//  POST /lti HTTP/1.1
//  Host: tool.example.org
//  Content-Type: application/x-www-form-urlencoded
//
//  oauth_consumer_key=key&oauth_nonce=…&oauth_timestamp=…&
//  oauth_signature_method=HMAC-SHA1&oauth_version=1.0&
//  lis_person_name_full=Ada%20Lovelace&…&oauth_signature=(see below)
//
// The signature is computed over the "signature base string":
//
//  POST&https%3A%2F%2Ftool.example.org%2Flti&(encoded, sorted parameters)
//
// This is how you can check one on the Linux shell:
//  secret="shh"
//  printf '%s' "${base_string}" \
//  | openssl dgst -sha1 -hmac "${secret}&" -binary \
//  | openssl enc -base64
//
// Nonces and timestamps are passed through, but not checked for freshness.
package auth // import "blitznote.com/src/caddy.lti/oauth1.auth"
