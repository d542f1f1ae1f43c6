// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const knownParams = "lis_person_name_full=Ada%20Lovelace&oauth_consumer_key=key&oauth_nonce=abc&oauth_timestamp=100"

func TestBaseStringURI(t *testing.T) {
	valid := []struct {
		scheme, host, path string
		uri                string
	}{
		{"", "example.org", "/lti", "http://example.org/lti"},
		{"https", "example.org", "/lti", "https://example.org/lti"},
		{"HTTPS", "Example.ORG", "/LTI", "https://example.org/LTI"},
		{"https, http", "example.org", "/lti", "https://example.org/lti"},
		{"http", "example.org:80", "/lti", "http://example.org/lti"},
		{"https", "example.org:443", "/lti", "https://example.org/lti"},
		{"http", "example.org:443", "/lti", "http://example.org:443/lti"},
		{"https", "example.org:8443", "/app/lti", "https://example.org:8443/app/lti"},
		{"", "example.org", "", "http://example.org/"},
		{"", "[::1]:3000", "/a%20b", "http://[::1]:3000/a%20b"},
	}

	Convey("The base string URI", t, func() {
		Convey("is reconstructed from scheme, Host, and path", func() {
			for _, row := range valid {
				uri, err := BaseStringURI(row.scheme, row.host, row.path)
				So(err, ShouldBeNil)
				So(uri, ShouldEqual, row.uri)
			}
		})

		Convey("needs a Host", func() {
			_, err := BaseStringURI("https", "", "/lti")
			So(err, ShouldEqual, ErrMissingHostHeader)
			So(err.(AuthError).SuggestedResponseCode(), ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestBaseString(t *testing.T) {
	Convey("The signature base string", t, func() {
		Convey("matches the known vector", func() {
			So(BaseString("post", "https://example.org/lti", knownParams), ShouldEqual,
				"POST&https%3A%2F%2Fexample.org%2Flti&lis_person_name_full%3DAda%2520Lovelace%26oauth_consumer_key%3Dkey%26oauth_nonce%3Dabc%26oauth_timestamp%3D100")
		})

		Convey("is deterministic", func() {
			first := BaseString("POST", "https://example.org/lti", knownParams)
			for i := 0; i < 16; i++ {
				So(BaseString("POST", "https://example.org/lti", knownParams), ShouldEqual, first)
			}
		})
	})
}

func newLaunchRequest(target, body string) *http.Request {
	r := httptest.NewRequest("POST", target, strings.NewReader(body))
	r.Host = "example.org"
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestNewCanonicalRequest(t *testing.T) {
	body := "oauth_timestamp=100&oauth_nonce=abc&lis_person_name_full=Ada+Lovelace&oauth_consumer_key=key&oauth_signature=c2ln"

	Convey("A canonical request", t, func() {
		Convey("is built from method, Host, path, and body", func() {
			r := newLaunchRequest("/lti", body)
			req, params, err := NewCanonicalRequest(r, []byte(body), false)
			So(err, ShouldBeNil)
			So(req, ShouldResemble, CanonicalRequest{Method: "POST", URI: "http://example.org/lti", Params: knownParams})
			So(params.Signature, ShouldEqual, "c2ln")
			So(len(params.Pairs), ShouldEqual, 4)
		})

		Convey("reflects X-Forwarded-Proto", func() {
			plain := newLaunchRequest("/lti", body)
			proxied := newLaunchRequest("/lti", body)
			proxied.Header.Set("X-Forwarded-Proto", "https")

			reqPlain, _, err := NewCanonicalRequest(plain, []byte(body), false)
			So(err, ShouldBeNil)
			reqProxied, _, err := NewCanonicalRequest(proxied, []byte(body), false)
			So(err, ShouldBeNil)

			So(reqProxied.URI, ShouldEqual, "https://example.org/lti")
			So(reqProxied.BaseString(), ShouldNotEqual, reqPlain.BaseString())
		})

		Convey("honors X-Forwarded-Host only if told so", func() {
			r := newLaunchRequest("/lti", body)
			r.Header.Set("X-Forwarded-Host", "tool.example.net")

			req, _, err := NewCanonicalRequest(r, []byte(body), false)
			So(err, ShouldBeNil)
			So(req.URI, ShouldEqual, "http://example.org/lti")

			req, _, err = NewCanonicalRequest(r, []byte(body), true)
			So(err, ShouldBeNil)
			So(req.URI, ShouldEqual, "http://tool.example.net/lti")
		})

		Convey("signs the path as received, and merges the query into the parameters", func() {
			r := newLaunchRequest("/app/lti?course=7", body)
			r.URL.Path = "/lti" // as if a prefix had been stripped

			req, params, err := NewCanonicalRequest(r, []byte(body), false)
			So(err, ShouldBeNil)
			So(req.URI, ShouldEqual, "http://example.org/app/lti")
			So(req.Params, ShouldEqual, "course=7&"+knownParams)
			v, _ := params.Lookup("course")
			So(v, ShouldEqual, "7")
		})

		Convey("ignores bodies that are not a form", func() {
			r := newLaunchRequest("/lti", body)
			r.Header.Set("Content-Type", "text/plain")
			_, _, err := NewCanonicalRequest(r, []byte(body), false)
			So(err, ShouldEqual, ErrMissingSignature)

			r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
			_, _, err = NewCanonicalRequest(r, []byte(body), false)
			So(err, ShouldBeNil)
		})

		Convey("fails without a Host", func() {
			r := newLaunchRequest("/lti", body)
			r.Host = ""
			_, _, err := NewCanonicalRequest(r, []byte(body), false)
			So(err, ShouldEqual, ErrMissingHostHeader)
		})

		Convey("fails on a malformed body", func() {
			r := newLaunchRequest("/lti", "a=%GG")
			_, _, err := NewCanonicalRequest(r, []byte("a=%GG"), false)
			So(Cause(err), ShouldEqual, ErrMalformedBody)
		})
	})
}
