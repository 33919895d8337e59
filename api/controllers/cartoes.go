package controllers

import (
	"net/http"

	"github.com/kaizerhaus/kaizerhaus-backend/api/middleware"
	"github.com/kaizerhaus/kaizerhaus-backend/api/responses"
	"github.com/kaizerhaus/kaizerhaus-backend/api/validators"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/cards"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
)

// CartoesList returns the caller's saved cards, masked by the backend.
func CartoesList(svc cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cards service unavailable"))
			return
		}

		token := middleware.UpstreamTokenFromContext(r.Context())
		cartoes, err := svc.List(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"cartoes": cartoes})
	}
}

// CartoesCreate stores a new card with the backend.
func CartoesCreate(svc cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cards service unavailable"))
			return
		}

		var body cards.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.UpstreamTokenFromContext(r.Context())
		cartao, err := svc.Create(r.Context(), token, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"cartao": cartao})
	}
}
