package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kaizerhaus/kaizerhaus-backend/api/middleware"
	"github.com/kaizerhaus/kaizerhaus-backend/api/responses"
	"github.com/kaizerhaus/kaizerhaus-backend/api/validators"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/orders"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
)

// FuncionarioPedidos returns the staff order board. By default concluded
// orders are hidden; ?todos=true lists everything.
func FuncionarioPedidos(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		todos, err := validators.ParseQueryBool(r, "todos", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.UpstreamTokenFromContext(r.Context())
		board, err := svc.StaffBoard(r.Context(), token, !todos)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, board)
	}
}

// FuncionarioAdvanceStatus moves one order a single step forward.
func FuncionarioAdvanceStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		token := middleware.UpstreamTokenFromContext(r.Context())
		pedido, err := svc.AdvanceStatus(r.Context(), token, chi.URLParam(r, "pedidoId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"pedido": pedido})
	}
}
