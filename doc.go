// Package lti contains a HTTP handler, also for Caddy,
// which turns verified LTI 1.1 launches into cookie sessions.
//
// A platform (the LMS) launches a tool by having the browser POST a form
// to it, signed using OAuth 1.0 HMAC-SHA1 with a secret both share.
// The form carries at least these fields:
//
//  lis_person_name_full=Ada Lovelace
//  oauth_consumer_key=…
//  oauth_nonce=…
//  oauth_timestamp=…
//  oauth_signature_method=HMAC-SHA1
//  oauth_version=1.0
//  oauth_signature=(see below)
//
// The signature covers the method, the URL as seen by the client,
// and every other parameter of body and query.
// This is how a platform signs on the Linux shell,
// with 'base' being the signature base string as described in package auth:
//
//  printf '%s' "${base}" \
//  | openssl dgst -sha1 -hmac "${secret}&" -binary \
//  | openssl enc -base64
//
// On success the client gets a cookie, and every subsequent GET
// is answered with a greeting and the number of visits so far.
//
// Failed launches are answered with 401 (Unauthorized) whatever the check
// that failed, with one exception: a request without header "Host" gets
// 400 (Bad Request).
//
// Behind a proxy that terminates TLS make sure header "X-Forwarded-Proto"
// is set, else the URL the handler reconstructs won't match the signed one.
package lti // import "blitznote.com/src/caddy.lti"
