// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build caddyserver1.0
// +build caddyserver1.0

package lti

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caddyserver/caddy"
	"github.com/caddyserver/caddy/caddyhttp/httpserver"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/unicode/norm"
)

// configured returns what NewDefaultConfiguration yields, modified by 'f'.
func configured(f func(*Configuration)) *Configuration {
	c := NewDefaultConfiguration("shh")
	if f != nil {
		f(c)
	}
	return c
}

func TestSetupParse(t *testing.T) {
	tests := []struct {
		config       string
		expectedErr  error
		expectedConf HandlerConfiguration
	}{
		{
			`lti / { secret shh }`,
			nil,
			HandlerConfiguration{
				PathScopes: []string{"/"},
				Scope:      map[string]*Configuration{"/": configured(nil)},
			},
		},
		{
			`lti /`,
			errors.New("Testfile:1 - Error during parsing: The shared 'secret' is missing"),
			HandlerConfiguration{},
		},
		{
			`lti`,
			errors.New("Testfile:1 - Error during parsing: Wrong argument count or unexpected line ending after 'lti'"),
			HandlerConfiguration{},
		},
		{
			`lti /lti {
				secret shh
				consumer_key moodle
				silent_auth_errors
				trust_forwarded_host
			}`,
			nil,
			HandlerConfiguration{
				PathScopes: []string{"/lti"},
				Scope: map[string]*Configuration{
					"/lti": configured(func(c *Configuration) {
						c.Verification.ConsumerKey = "moodle"
						c.SilenceAuthErrors = true
						c.TrustForwardedHost = true
					}),
				},
			},
		},
		{
			`lti / {
				secret shh
				cookie_name launched
				cookie_max_age 600
				secure_cookies
				max_body_size 4096
			}`,
			nil,
			HandlerConfiguration{
				PathScopes: []string{"/"},
				Scope: map[string]*Configuration{
					"/": configured(func(c *Configuration) {
						c.CookieName = "launched"
						c.CookieMaxAge = 600
						c.SecureCookies = true
						c.MaxBodySize = 4096
					}),
				},
			},
		},
		{
			`lti / {
				secret shh
				max_body_size 0
			}`,
			errors.New("Testfile:3 - Error during parsing: Wrong argument count or unexpected line ending after '0'"),
			HandlerConfiguration{},
		},
		{
			`lti / {
				secret shh
				cookie_max_age -1
			}`,
			errors.New(`Testfile:3 - Error during parsing: strconv.ParseUint: parsing "-1": invalid syntax`),
			HandlerConfiguration{},
		},
		{
			`lti / {
				secret shh
				session_keys ` + key32 + ` ` + key16 + `
			}`,
			nil,
			HandlerConfiguration{
				PathScopes: []string{"/"},
				Scope: map[string]*Configuration{
					"/": configured(func(c *Configuration) {
						c.SessionKeys = [][]byte{
							[]byte("0123456789abcdef0123456789abcdef"),
							[]byte("0123456789abcdef"),
						}
					}),
				},
			},
		},
		{
			`lti / {
				secret shh
				session_keys c2hvcnQ=
			}`,
			errors.New("Testfile:3 - Error during parsing: c2hvcnQ=: want 32 or 64 bytes, got 5"),
			HandlerConfiguration{},
		},
		{
			`lti / {
				secret shh
				name_form NFC
			}`,
			nil,
			HandlerConfiguration{
				PathScopes: []string{"/"},
				Scope: map[string]*Configuration{
					"/": configured(func(c *Configuration) {
						c.DisplayNameForm = &struct{ Use norm.Form }{Use: norm.NFC}
					}),
				},
			},
		},
		{
			`lti / {
				secret shh
				name_form NFKC
			}`,
			errors.New("Testfile:3 - Error during parsing: Wrong argument count or unexpected line ending after 'NFKC'"),
			HandlerConfiguration{},
		},
		{
			`lti / {
				secret shh
				timestamp_tolerance 8
			}`,
			errors.New("Testfile:3 - Error during parsing: Wrong argument count or unexpected line ending after 'timestamp_tolerance'"),
			HandlerConfiguration{},
		},
		{
			`lti /one /two { secret shh }
			lti /three { secret other }`,
			nil,
			HandlerConfiguration{
				PathScopes: []string{"/one", "/two", "/three"},
				Scope: map[string]*Configuration{
					"/one":   configured(nil),
					"/two":   configured(nil),
					"/three": NewDefaultConfiguration("other"),
				},
			},
		},
	}

	Convey("Setup of the controller", t, func() {
		for idx := range tests {
			test := tests[idx]
			c := caddy.NewTestController("http", test.config)
			err := Setup(c)
			if test.expectedErr != nil {
				So(err, ShouldResemble, test.expectedErr)
				continue
			}
			So(err, ShouldBeNil)

			mids := httpserver.GetConfig(c).Middleware()
			So(len(mids), ShouldEqual, 1)

			i := mids[0](httpserver.EmptyNext)
			myHandler, ok := i.(*CaddyHandler)
			So(ok, ShouldBeTrue)
			So(myHandler.Config, ShouldResemble, test.expectedConf)
			So(len(myHandler.endpoints), ShouldEqual, len(test.expectedConf.PathScopes))
		}
	})
}

func TestCaddyHandler(t *testing.T) {
	Convey("The Caddy middleware", t, func() {
		c := caddy.NewTestController("http", `lti /app { secret shh }`)
		So(Setup(c), ShouldBeNil)
		h := httpserver.GetConfig(c).Middleware()[0](teapotNext{})

		Convey("accepts launches within its scope", func() {
			body := signedForm("http://example.org/app/lti", launchForm(), "shh")
			w := httptest.NewRecorder()
			code, err := h.ServeHTTP(w, newLaunch("/app/lti", body))
			So(err, ShouldBeNil)
			So(code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "LTI")
		})

		Convey("rejects forged launches", func() {
			body := signedForm("http://example.org/app/lti", launchForm(), "guessed")
			code, err := h.ServeHTTP(httptest.NewRecorder(), newLaunch("/app/lti", body))
			So(err, ShouldNotBeNil)
			So(code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("leaves other paths alone", func() {
			r := httptest.NewRequest("GET", "/elsewhere", strings.NewReader(""))
			code, _ := h.ServeHTTP(httptest.NewRecorder(), r)
			So(code, ShouldEqual, http.StatusTeapot)
		})
	})
}

// teapotNext is like teapotHandler, for Caddy.
type teapotNext struct{}

func (teapotNext) ServeHTTP(w http.ResponseWriter, _ *http.Request) (int, error) {
	return http.StatusTeapot, nil
}
