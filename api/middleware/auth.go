package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kaizerhaus/kaizerhaus-backend/api/responses"
	pkgauth "github.com/kaizerhaus/kaizerhaus-backend/pkg/auth"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/auth/session"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/config"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
)

// SessionLoader resolves the server-side session record behind an access id.
type SessionLoader interface {
	Load(ctx context.Context, accessID string) (*session.Record, error)
}

// Auth validates the bearer token, loads the backing session and seeds the
// request context with the caller's identity plus the upstream bearer token.
func Auth(cfg config.JWTConfig, sessions SessionLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			record, err := sessions.Load(r.Context(), claims.ID)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "validate session"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, record.UserID)
			ctx = context.WithValue(ctx, ctxHierarquia, string(record.Hierarquia))
			ctx = context.WithValue(ctx, ctxAccessID, claims.ID)
			ctx = context.WithValue(ctx, ctxUpstreamToken, record.UpstreamToken)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    record.UserID,
					"hierarquia": string(record.Hierarquia),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
