package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kaizerhaus/kaizerhaus-backend/api/middleware"
	"github.com/kaizerhaus/kaizerhaus-backend/api/responses"
	"github.com/kaizerhaus/kaizerhaus-backend/api/validators"
	cartsvc "github.com/kaizerhaus/kaizerhaus-backend/internal/cart"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
)

// AddItemRequest carries the product snapshot the menu page already holds.
// Prices are re-validated server side at checkout by the restaurant backend.
// Preco carries no required tag: zero is a legitimate price (promotional
// items), and the cart service rejects negative values.
type AddItemRequest struct {
	ProdutoID   string          `json:"produtoId" validate:"required"`
	Nome        string          `json:"nome" validate:"required"`
	Preco       decimal.Decimal `json:"preco"`
	Imagem      string          `json:"imagem,omitempty"`
	Categoria   string          `json:"categoria,omitempty"`
	Observacoes string          `json:"observacoes,omitempty"`
}

// SacolaFetch returns the cart with its review summary.
func SacolaFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"sacola": cart, "resumo": summary})
	}
}

// SacolaAddItem adds one unit of a product, deduplicating by product id.
func SacolaAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body AddItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), userID, cartsvc.Item{
			ProdutoID:   body.ProdutoID,
			Nome:        body.Nome,
			Preco:       body.Preco,
			Imagem:      body.Imagem,
			Categoria:   body.Categoria,
			Observacoes: body.Observacoes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"sacola": cart})
	}
}

// SacolaUpdateItem patches a line's quantity or observations.
func SacolaUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		produtoID := chi.URLParam(r, "produtoId")

		var body struct {
			Quantidade  *int    `json:"quantidade,omitempty"`
			Observacoes *string `json:"observacoes,omitempty"`
		}
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Quantidade == nil && body.Observacoes == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update"))
			return
		}

		var cart *cartsvc.Cart
		if body.Quantidade != nil {
			cart, err = svc.UpdateQuantity(r.Context(), userID, produtoID, *body.Quantidade)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if body.Observacoes != nil {
			cart, err = svc.UpdateObservacoes(r.Context(), userID, produtoID, *body.Observacoes)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, map[string]any{"sacola": cart})
	}
}

// SacolaRemoveItem drops a line. Removing an absent product is a no-op.
func SacolaRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), userID, chi.URLParam(r, "produtoId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"sacola": cart})
	}
}

// SacolaClear empties the cart.
func SacolaClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"sacola": cartsvc.Cart{Itens: []cartsvc.Item{}}})
	}
}

func requireUserID(r *http.Request) (string, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	return userID, nil
}
