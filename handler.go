// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lti

import (
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	auth "blitznote.com/src/caddy.lti/oauth1.auth"
	"blitznote.com/src/caddy.lti/session"
)

// Sent along with responses to failed launches.
const challenge = `OAuth realm="lti"`

// endpoint is what Handler and the Caddy middleware share.
type endpoint struct {
	config   *Configuration
	sessions *session.Store
	log      zerolog.Logger
}

func newEndpoint(config *Configuration, log zerolog.Logger) (*endpoint, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(config.SessionKeys) == 0 {
		log.Warn().Msg("no session keys configured, using a random one")
	}
	return &endpoint{
		config:   config,
		sessions: config.sessionStore(),
		log:      log,
	}, nil
}

// logger prefers the one that came with the request, if any.
func (e *endpoint) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &e.log
}

// serveHTTP is the gateway to launch and greet, else it calls 'next'.
//
// POST
// is what a platform sends on a launch.
// GET
// is a subsequent visit.
func (e *endpoint) serveHTTP(w http.ResponseWriter, r *http.Request,
	next func(http.ResponseWriter, *http.Request) (int, error),
) (int, error) {
	switch r.Method {
	case http.MethodPost:
		return e.launch(w, r, next)
	case http.MethodGet, http.MethodHead:
		return e.greet(w, r)
	}
	return next(w, r)
}

// launch verifies the request, and on success establishes a session.
func (e *endpoint) launch(w http.ResponseWriter, r *http.Request,
	next func(http.ResponseWriter, *http.Request) (int, error),
) (int, error) {
	body, err := readBody(r.Body, e.config.MaxBodySize)
	if err != nil {
		return e.reject(w, r, err, next)
	}
	params, err := auth.AuthenticateHTTP(r, body, e.config.TrustForwardedHost, &e.config.Verification)
	if err != nil {
		return e.reject(w, r, err, next)
	}

	launch, err := session.ExtractLaunch(params.Pairs)
	if err != nil {
		return e.reject(w, r, err, next)
	}
	launch.DisplayName = CleanDisplayName(launch.DisplayName, e.config.displayNameForm())
	s, err := session.Establish(launch)
	if err != nil {
		return e.reject(w, r, err, next)
	}

	if err := e.sessions.Save(w, r, s); err != nil {
		return http.StatusInternalServerError, errors.Wrap(err, "saving session")
	}
	launchesTotal.WithLabelValues("ok").Inc()
	e.logger(r).Info().
		Str("user_id", launch.UserID).
		Str("context_id", launch.ContextID).
		Str("consumer_key", launch.ConsumerKey).
		Msg("launch")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	io.WriteString(w, "LTI")
	return http.StatusOK, nil
}

// reject answers a failed launch, revealing nothing but the status code.
func (e *endpoint) reject(w http.ResponseWriter, r *http.Request, err error,
	next func(http.ResponseWriter, *http.Request) (int, error),
) (int, error) {
	cause := auth.Cause(err)
	if cause == nil { // any other failure to get at the body
		cause = auth.ErrMalformedBody
	}
	launchesTotal.WithLabelValues(cause.Kind()).Inc()
	e.logger(r).Warn().
		Err(err).
		Str("kind", cause.Kind()).
		Str("remote_addr", r.RemoteAddr).
		Msg("launch rejected")

	if e.config.SilenceAuthErrors {
		return next(w, r)
	}
	w.Header().Set("WWW-Authenticate", challenge)
	return cause.SuggestedResponseCode(), cause
}

// greet counts visits of clients that have been launched.
// HEAD requests are answered without counting.
func (e *endpoint) greet(w http.ResponseWriter, r *http.Request) (int, error) {
	s, ok, err := e.sessions.Load(r)
	if err != nil {
		e.logger(r).Debug().Err(err).Msg("discarding session cookie")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !ok {
		io.WriteString(w, "Hello, World!")
		return http.StatusOK, nil
	}

	if r.Method != http.MethodHead {
		s = session.Increment(s)
		if err := e.sessions.Save(w, r, s); err != nil {
			return http.StatusInternalServerError, errors.Wrap(err, "saving session")
		}
		sessionVisitsTotal.Inc()
	}
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintf(w, "Hello, %s! Visits: %d", s.DisplayName, s.VisitCount)
	return http.StatusOK, nil
}

// readBody reads up to 'limit' bytes, and fails on anything beyond that.
func readBody(body io.Reader, limit int64) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	n := limit
	if n < math.MaxInt64 {
		n++ // to tell "exactly at the limit" from "beyond"
	}
	b, err := ioutil.ReadAll(io.LimitReader(body, n))
	if err != nil {
		return nil, errors.Wrap(auth.ErrMalformedBody, err.Error())
	}
	if int64(len(b)) > limit {
		return nil, errors.Wrapf(auth.ErrMalformedBody, "body exceeds %d bytes", limit)
	}
	return b, nil
}

// NewHandler creates a new instance of the launch handler,
// meant to be used in Go's own http server.
//
// 'next' is optional, and gets requests other than launches or visits.
func NewHandler(config *Configuration, next http.Handler, log zerolog.Logger) (*Handler, error) {
	e, err := newEndpoint(config, log)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = http.NotFoundHandler()
	}
	return &Handler{Next: next, endpoint: e}, nil
}

// Handler implements http.Handler.
type Handler struct {
	Next http.Handler

	*endpoint
}

// ServeHTTP handles launches and visits, else defers the request to the next handler.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var callNext bool

	httpCode, _ := h.serveHTTP(w, r,
		func(w http.ResponseWriter, r *http.Request) (int, error) {
			callNext = true
			return 0, nil
		},
	)

	if callNext {
		h.Next.ServeHTTP(w, r)
		return
	}
	if httpCode >= 400 {
		http.Error(w, http.StatusText(httpCode), httpCode)
	}
}
