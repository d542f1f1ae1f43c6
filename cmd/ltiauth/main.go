// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ltiauth is a tool provider that accepts LTI 1.1 launches,
// and greets launched users on subsequent visits.
//
//  LTI_SECRET=geheim ltiauth --bind :3000 --app-path /course
//
// Launches are POSTed to "<app-path>/lti", visits go to "<app-path>/".
// Flags can be set in the environment, or a file ".env" in the working directory.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"blitznote.com/src/caddy.lti"
)

// Session secrets shorter than this are refused.
const minSessionSecretLen = 32

func main() {
	app := newApp()
	app.RunAndExitOnError()
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "ltiauth",
		Usage:   "LTI 1.1 tool provider with cookie sessions",
		Version: versioninfo.Short(),
		Action:  runServer,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bind",
				Usage:   "address to listen on",
				Value:   ":3000",
				EnvVars: []string{"LTI_BIND"},
			},
			&cli.StringFlag{
				Name:    "app-path",
				Usage:   "path prefix the tool is mounted at",
				Value:   "/",
				EnvVars: []string{"APP_PATH"},
			},
			&cli.StringFlag{
				Name:     "secret",
				Usage:    "OAuth consumer secret shared with the platform",
				Required: true,
				EnvVars:  []string{"LTI_SECRET"},
			},
			&cli.StringFlag{
				Name:    "consumer-key",
				Usage:   "if set, launches must be from this consumer",
				EnvVars: []string{"LTI_CONSUMER_KEY"},
			},
			&cli.StringFlag{
				Name:    "session-secret",
				Usage:   "random string of at least 32 bytes to sign session cookies; random if empty",
				EnvVars: []string{"SESSION_SECRET"},
			},
			&cli.BoolFlag{
				Name:    "secure-cookies",
				Usage:   "mark cookies 'Secure' and allow them in cross-site frames",
				EnvVars: []string{"LTI_SECURE_COOKIES"},
			},
			&cli.BoolFlag{
				Name:    "trust-forwarded-host",
				Usage:   "use header X-Forwarded-Host in place of Host",
				EnvVars: []string{"LTI_TRUST_FORWARDED_HOST"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "one of: trace, debug, info, warn, error",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "metrics-bind",
				Usage:   "address to serve /metrics on; disabled if empty",
				EnvVars: []string{"METRICS_BIND"},
			},
		},
	}
}

func runServer(cctx *cli.Context) error {
	level, err := zerolog.ParseLevel(cctx.String("log-level"))
	if err != nil {
		return err
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	config, err := configFromContext(cctx)
	if err != nil {
		return err
	}
	h, err := lti.NewHandler(config, nil, log)
	if err != nil {
		return err
	}

	servers := []*http.Server{{
		Addr:              cctx.String("bind"),
		Handler:           newRouter(cctx.String("app-path"), h, log),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if addr := cctx.String("metrics-bind"); addr != "" {
		servers = append(servers, &http.Server{
			Addr:              addr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	if err := lti.LockFilesystem(); err != nil {
		return errors.Wrap(err, "locking the filesystem")
	}

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, log, servers...)
}

// configFromContext translates flags into a configuration.
func configFromContext(cctx *cli.Context) (*lti.Configuration, error) {
	config := lti.NewDefaultConfiguration(cctx.String("secret"))
	config.Verification.ConsumerKey = cctx.String("consumer-key")
	config.SecureCookies = cctx.Bool("secure-cookies")
	config.TrustForwardedHost = cctx.Bool("trust-forwarded-host")

	if s := cctx.String("session-secret"); s != "" {
		if len(s) < minSessionSecretLen {
			return nil, errors.Errorf("session secret must be at least %d bytes long", minSessionSecretLen)
		}
		config.SessionKeys = [][]byte{[]byte(s)}
	}
	return config, config.Validate()
}

// newRouter mounts 'h' at "<appPath>" and "<appPath>/" for visits, and "<appPath>/lti" for launches.
func newRouter(appPath string, h http.Handler, log zerolog.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(
		hlog.NewHandler(log),
		hlog.RemoteAddrHandler("ip"),
		hlog.UserAgentHandler("user_agent"),
		hlog.RequestIDHandler("req_id", "Request-Id"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Debug().
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("")
		}),
	)

	app := r
	if prefix := strings.TrimSuffix(appPath, "/"); prefix != "" {
		// "/app" is served like "/app/"
		r.Handle(prefix, h).Methods(http.MethodGet, http.MethodHead)
		app = r.PathPrefix(prefix).Subrouter()
	}
	app.Handle("/", h).Methods(http.MethodGet, http.MethodHead)
	app.Handle("/lti", h).Methods(http.MethodPost)

	return otelhttp.NewHandler(r, "ltiauth")
}

// serve runs all servers until one fails or 'ctx' is done.
func serve(ctx context.Context, log zerolog.Logger, servers ...*http.Server) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			log.Info().Str("addr", srv.Addr).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Str("addr", srv.Addr).Msg("shutdown")
			}
		}
		return nil
	})
	return g.Wait()
}
