package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kaizerhaus/kaizerhaus-backend/api/middleware"
	"github.com/kaizerhaus/kaizerhaus-backend/api/responses"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/orders"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/tracking"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
)

// PedidosList returns the caller's orders.
func PedidosList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		token := middleware.UpstreamTokenFromContext(r.Context())
		pedidos, err := svc.List(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"pedidos": pedidos})
	}
}

// PedidosDetail returns one order by id.
func PedidosDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		token := middleware.UpstreamTokenFromContext(r.Context())
		pedido, err := svc.Get(r.Context(), token, chi.URLParam(r, "pedidoId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"pedido": pedido})
	}
}

// PedidosTimeline returns one fresh status snapshot plus its milestone
// timeline. The client polls this endpoint on the tracking page.
func PedidosTimeline(watcher *tracking.Watcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if watcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking unavailable"))
			return
		}

		token := middleware.UpstreamTokenFromContext(r.Context())
		update, err := watcher.Snapshot(r.Context(), token, chi.URLParam(r, "pedidoId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"pedido":   update.Pedido,
			"timeline": update.Timeline,
		})
	}
}
