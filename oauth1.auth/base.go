// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auth

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const formURLEncoded = "application/x-www-form-urlencoded"

// CanonicalRequest is what gets signed of a request.
type CanonicalRequest struct {
	Method string
	URI    string // scheme://authority/path, the "base string URI"
	Params string // Normalized.Encoded
}

// BaseString assembles the signature base string.
func (c CanonicalRequest) BaseString() string {
	return BaseString(c.Method, c.URI, c.Params)
}

// BaseString joins its arguments as described in RFC 5849, section 3.4.1.1.
//
// 'params' is already encoded, and gets encoded a second time.
func BaseString(method, uri, params string) string {
	return strings.ToUpper(method) + "&" + Encode(uri) + "&" + Encode(params)
}

// BaseStringURI reconstructs the URL the platform has addressed,
// RFC 5849, section 3.4.1.2.
//
// 'scheme' is the value of header "X-Forwarded-Proto", if any, and defaults to "http".
// 'host' is the value of header "Host", and must be given.
// 'path' must not contain a query.
func BaseStringURI(scheme, host, path string) (string, error) {
	if host == "" {
		return "", ErrMissingHostHeader
	}

	scheme = strings.ToLower(firstListElement(scheme))
	if scheme == "" {
		scheme = "http"
	}
	host = strings.ToLower(host)
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		host = host[:len(host)-len(":80")]
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		host = host[:len(host)-len(":443")]
	}
	if path == "" {
		path = "/"
	}

	return scheme + "://" + host + path, nil
}

// NewCanonicalRequest collects everything that is signed from 'r'.
//
// 'body' is the already consumed body of 'r'. It is only considered
// if the request has been sent as "application/x-www-form-urlencoded".
//
// The path is taken from the request line as received,
// so stripping any prefix from r.URL before calling this has no effect.
func NewCanonicalRequest(r *http.Request, body []byte, trustForwardedHost bool) (CanonicalRequest, Normalized, error) {
	path, query, err := splitRequestURI(r)
	if err != nil {
		return CanonicalRequest{}, Normalized{}, err
	}

	var pairs []Pair
	if isFormURLEncoded(r.Header.Get("Content-Type")) {
		if pairs, err = ParsePairs(string(body)); err != nil {
			return CanonicalRequest{}, Normalized{}, err
		}
	}
	if query != "" {
		fromQuery, err := ParsePairs(query)
		if err != nil {
			return CanonicalRequest{}, Normalized{}, err
		}
		pairs = append(pairs, fromQuery...)
	}

	params, err := Normalize(pairs)
	if err != nil {
		return CanonicalRequest{}, Normalized{}, err
	}

	host := r.Host
	if trustForwardedHost {
		if fwd := firstListElement(r.Header.Get("X-Forwarded-Host")); fwd != "" {
			host = fwd
		}
	}
	uri, err := BaseStringURI(r.Header.Get("X-Forwarded-Proto"), host, path)
	if err != nil {
		return CanonicalRequest{}, Normalized{}, err
	}

	return CanonicalRequest{
		Method: r.Method,
		URI:    uri,
		Params: params.Encoded,
	}, params, nil
}

// splitRequestURI returns the path and query as the client has sent them.
func splitRequestURI(r *http.Request) (path, query string, err error) {
	requestURI := r.RequestURI
	if requestURI == "" { // outgoing requests, and tests
		return r.URL.EscapedPath(), r.URL.RawQuery, nil
	}
	if !strings.HasPrefix(requestURI, "/") { // absolute-form
		u, err := url.ParseRequestURI(requestURI)
		if err != nil {
			return "", "", errors.Wrap(ErrMalformedBody, err.Error())
		}
		return u.EscapedPath(), u.RawQuery, nil
	}
	if i := strings.IndexByte(requestURI, '?'); i >= 0 {
		return requestURI[:i], requestURI[i+1:], nil
	}
	return requestURI, "", nil
}

func isFormURLEncoded(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == formURLEncoded
}

// firstListElement returns the first element of a comma-separated header value,
// like "https" of "https, http" which results from proxies in a row.
func firstListElement(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
