package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/openmarks/gradebook/core/auth"
	"github.com/openmarks/gradebook/core/csrf"
	"github.com/openmarks/gradebook/core/session"
	"github.com/openmarks/gradebook/core/sessiontransport"
	"github.com/openmarks/gradebook/pkg/logger"
)

// API exposes the session engine over HTTP: the auth endpoint plus the
// WithIdentity wrapper business handlers mount under.
type API struct {
	auth     *auth.Service
	resolver *session.Resolver
	tx       session.Transactor
	codec    *sessiontransport.Codec
	log      *slog.Logger
}

// New creates the API surface. A nil log discards output.
func New(authSvc *auth.Service, resolver *session.Resolver, tx session.Transactor, codec *sessiontransport.Codec, log *slog.Logger) *API {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &API{
		auth:     authSvc,
		resolver: resolver,
		tx:       tx,
		codec:    codec,
		log:      log,
	}
}

// IdentityFunc is a business handler running inside the request transaction
// with a resolved identity. It returns the response status and JSON body.
type IdentityFunc func(ctx context.Context, r *http.Request, identity session.Identity) (int, any)

// WithIdentity wraps a business handler with the full per-request sequence:
// one store transaction, session resolution (with rotation), the CSRF check
// on mutating verbs, then the handler itself. Cookie directives accumulated
// during resolution are emitted whether the handler runs or not, so clients
// pick up rotations and clears even on a 403.
func (a *API) WithIdentity(fn IdentityFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			updates []session.CookieUpdate
			status  int
			body    any
		)

		err := a.tx.WithinTx(r.Context(), func(ctx context.Context) error {
			identity, ups, err := a.resolver.Resolve(ctx, a.codec.Read(r))
			updates = ups
			if errors.Is(err, session.ErrNotLoggedIn) {
				status, body = http.StatusForbidden, statusResponse{Status: "Not Logged In"}
				return nil
			}
			if err != nil {
				return err
			}

			if err := csrf.Check(r, identity.CSRFSecret); err != nil {
				status, body = http.StatusBadRequest, statusResponse{Status: "CSRF Missing"}
				return nil
			}

			status, body = fn(ctx, r, identity)
			return nil
		})
		if err != nil {
			a.internalError(w, r, err)
			return
		}

		a.codec.Write(w, updates)
		writeJSON(w, status, body)
	}
}

// Routes mounts the API on a fresh mux. The checks feed the readiness probe.
func (a *API) Routes(checks ...func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", a.Auth)
	mux.HandleFunc("/health/live", Liveness())
	mux.HandleFunc("/health/ready", a.Readiness(checks...))
	return mux
}

func (a *API) internalError(w http.ResponseWriter, r *http.Request, err error) {
	// Store connectivity failures are the only errors that reach here; the
	// transaction already rolled back.
	a.log.ErrorContext(r.Context(), "request transaction failed",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "Internal Error"})
}
