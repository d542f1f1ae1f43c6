// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build caddyserver1.0
// +build caddyserver1.0

package lti

import (
	"net/http"
	"strconv"

	"github.com/caddyserver/caddy"
	"github.com/caddyserver/caddy/caddyhttp/httpserver"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	auth "blitznote.com/src/caddy.lti/oauth1.auth"
)

func init() {
	caddy.RegisterPlugin("lti", caddy.Plugin{
		ServerType: "http",
		Action:     Setup,
	})
	// Launches need to be seen before anything proxies them away.
	httpserver.RegisterDevDirective("lti", "proxy")
}

// Setup configures a CaddyHandler instance.
//
// This is called by Caddy as consequence of invoking `caddy.RegisterPlugin` in init.
func Setup(c *caddy.Controller) error {
	config, err := parseCaddyConfig(c)
	if err != nil {
		return err
	}
	endpoints, err := config.endpoints(zerolog.Nop())
	if err != nil {
		return c.Err(err.Error())
	}

	site := httpserver.GetConfig(c)
	site.AddMiddleware(func(next httpserver.Handler) httpserver.Handler {
		return &CaddyHandler{
			Next:      next,
			Config:    *config,
			endpoints: endpoints,
		}
	})

	return nil
}

// HandlerConfiguration is the result of directives found in a 'Caddyfile'.
//
// The same instance can be used to serve multiple paths, therefore we go through this struct
// to figure out the applicable configuration.
type HandlerConfiguration struct {
	// Prefixes on which Caddy activates this plugin (read-only).
	//
	// Order matters because scopes can overlap.
	PathScopes []string

	// Maps scopes (paths) to their own and potentially differently configurations.
	Scope map[string]*Configuration
}

// endpoints creates one endpoint per distinct configuration.
func (h HandlerConfiguration) endpoints(log zerolog.Logger) (map[string]*endpoint, error) {
	byConfig := make(map[*Configuration]*endpoint, len(h.Scope))
	m := make(map[string]*endpoint, len(h.Scope))
	for scope, config := range h.Scope {
		e, ok := byConfig[config]
		if !ok {
			var err error
			e, err = newEndpoint(config, log.With().Str("scope", scope).Logger())
			if err != nil {
				return nil, err
			}
			byConfig[config] = e
		}
		m[scope] = e
	}
	return m, nil
}

// CaddyHandler represents a configured instance of this plugin.
type CaddyHandler struct {
	Next   httpserver.Handler
	Config HandlerConfiguration

	endpoints map[string]*endpoint
}

// ServeHTTP adapts the actual handler.
func (h *CaddyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) (int, error) {
	// iterate over the scopes in the order they have been defined
	for _, scope := range h.Config.PathScopes {
		if httpserver.Path(r.URL.Path).Matches(scope) {
			return h.endpoints[scope].serveHTTP(w, r, h.Next.ServeHTTP)
		}
	}
	return h.Next.ServeHTTP(w, r)
}

func parseCaddyConfig(c *caddy.Controller) (*HandlerConfiguration, error) {
	siteConfig := &HandlerConfiguration{
		PathScopes: make([]string, 0, 1),
		Scope:      make(map[string]*Configuration),
	}

	for c.Next() {
		config := NewDefaultConfiguration("")

		scopes := c.RemainingArgs() // most likely only one path; but could be more
		if len(scopes) == 0 {
			return siteConfig, c.ArgErr()
		}
		siteConfig.PathScopes = append(siteConfig.PathScopes, scopes...)

		for c.NextBlock() {
			key := c.Val()
			switch key {
			case "secret":
				if !c.NextArg() {
					return siteConfig, c.ArgErr()
				}
				config.Verification.Secret = auth.NewSecret(c.Val())
			case "consumer_key":
				if !c.NextArg() {
					return siteConfig, c.ArgErr()
				}
				config.Verification.ConsumerKey = c.Val()
			case "session_keys":
				keys := c.RemainingArgs()
				if len(keys) == 0 {
					return siteConfig, c.ArgErr()
				}
				if err := config.AddSessionKeys(keys); err != nil {
					return siteConfig, c.Err(err.Error())
				}
			case "cookie_name":
				if !c.NextArg() {
					return siteConfig, c.ArgErr()
				}
				config.CookieName = c.Val()
			case "cookie_max_age":
				if !c.NextArg() {
					return siteConfig, c.ArgErr()
				}
				s, err := strconv.ParseUint(c.Val(), 10, 31)
				if err != nil {
					return siteConfig, c.Err(err.Error())
				}
				config.CookieMaxAge = int(s)
			case "secure_cookies":
				config.SecureCookies = true
			case "trust_forwarded_host":
				config.TrustForwardedHost = true
			case "max_body_size":
				if !c.NextArg() {
					return siteConfig, c.ArgErr()
				}
				s, err := strconv.ParseInt(c.Val(), 10, 64)
				if err != nil {
					return siteConfig, c.Err(err.Error())
				}
				if s <= 0 {
					return siteConfig, c.ArgErr()
				}
				config.MaxBodySize = s
			case "name_form":
				if !c.NextArg() {
					return siteConfig, c.ArgErr()
				}
				switch c.Val() {
				case "NFC":
					config.DisplayNameForm = &struct{ Use norm.Form }{Use: norm.NFC}
				case "NFD":
					config.DisplayNameForm = &struct{ Use norm.Form }{Use: norm.NFD}
				case "none":
					// nop
				default:
					return siteConfig, c.ArgErr()
				}
			case "silent_auth_errors":
				config.SilenceAuthErrors = true
			default:
				return siteConfig, c.ArgErr()
			}
		}

		if config.Verification.Secret.IsZero() {
			return siteConfig, c.Errf("The shared 'secret' is missing")
		}

		for idx := range scopes {
			siteConfig.Scope[scopes[idx]] = config
		}
	}

	return siteConfig, nil
}
