package controllers

import (
	"net/http"

	"github.com/kaizerhaus/kaizerhaus-backend/api/middleware"
	"github.com/kaizerhaus/kaizerhaus-backend/api/responses"
	"github.com/kaizerhaus/kaizerhaus-backend/api/validators"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/auth"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
)

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-KH-Token", result.Token)
		responses.WriteSuccess(w, map[string]any{
			"token":   result.Token,
			"usuario": result.Usuario,
		})
	}
}

// AuthRegister creates the account upstream and logs the new user in.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.Register(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginInput{
			Email: body.Email,
			Senha: body.Senha,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-KH-Token", result.Token)
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"token":   result.Token,
			"usuario": result.Usuario,
		})
	}
}

// AuthLogout revokes the session and empties the caller's cart.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		userID := middleware.UserIDFromContext(r.Context())
		if accessID == "" || userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}

		if err := svc.Logout(r.Context(), accessID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
