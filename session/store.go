// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// Keys of values in the cookie.
const (
	keyName   = "name"
	keyVisits = "visits"
)

// Store transports sessions in signed (and optionally encrypted) cookies.
type Store struct {
	cookies *sessions.CookieStore
	name    string
}

// Options of cookies.
type Options struct {
	Name   string
	MaxAge int  // in seconds
	Secure bool // also makes the cookie available in cross-site frames
}

// NewStore returns a Store using 'keyPairs' as in securecookie.CodecsFromPairs:
// authentication key, followed by an optional encryption key, then possibly older pairs.
func NewStore(opts Options, keyPairs ...[]byte) *Store {
	cs := &sessions.CookieStore{
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   opts.MaxAge,
			Secure:   opts.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}
	if opts.Secure {
		// platforms embed tools in iframes
		cs.Options.SameSite = http.SameSiteNoneMode
	}
	cs.MaxAge(opts.MaxAge)

	return &Store{cookies: cs, name: opts.Name}
}

// Save writes 's' into the response as cookie.
//
// Must be called before the response body has been written.
func (st *Store) Save(w http.ResponseWriter, r *http.Request, s Session) error {
	sess, _ := st.cookies.Get(r, st.name) // on error it's a new session, which is fine
	sess.Values[keyName] = s.DisplayName
	sess.Values[keyVisits] = s.VisitCount
	return sess.Save(r, w)
}

// Load reads a session from the request's cookies.
//
// 'ok' is false if there is none. A cookie that cannot be decoded
// results in an error, and is to be treated like a missing one.
func (st *Store) Load(r *http.Request) (s Session, ok bool, err error) {
	sess, err := st.cookies.Get(r, st.name)
	if err != nil || sess.IsNew {
		return Session{}, false, err
	}

	name, okName := sess.Values[keyName].(string)
	visits, okVisits := sess.Values[keyVisits].(uint64)
	if !okName || !okVisits || name == "" {
		return Session{}, false, nil
	}
	return Session{DisplayName: name, VisitCount: visits}, true, nil
}

// GenerateKey returns a random key suitable for NewStore.
//
// Sessions don't survive a restart when keys are generated this way.
func GenerateKey() []byte {
	return securecookie.GenerateRandomKey(32)
}
