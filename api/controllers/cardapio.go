package controllers

import (
	"net/http"

	"github.com/kaizerhaus/kaizerhaus-backend/api/responses"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/catalog"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
)

// CardapioProdutos lists the menu items.
func CardapioProdutos(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		produtos, err := svc.Produtos(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"produtos": produtos})
	}
}

// CardapioCategorias lists the menu categories.
func CardapioCategorias(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categorias, err := svc.Categorias(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"categorias": categorias})
	}
}
