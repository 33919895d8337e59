package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	cartsvc "github.com/kaizerhaus/kaizerhaus-backend/internal/cart"
)

type stubCartService struct {
	addedItem   *cartsvc.Item
	quantity    *int
	observacoes *string
}

func (s *stubCartService) Get(ctx context.Context, userID string) (*cartsvc.Cart, error) {
	return &cartsvc.Cart{}, nil
}

func (s *stubCartService) AddItem(ctx context.Context, userID string, item cartsvc.Item) (*cartsvc.Cart, error) {
	s.addedItem = &item
	return &cartsvc.Cart{Itens: []cartsvc.Item{item}}, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, produtoID string) (*cartsvc.Cart, error) {
	return &cartsvc.Cart{}, nil
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, userID, produtoID string, quantidade int) (*cartsvc.Cart, error) {
	s.quantity = &quantidade
	return &cartsvc.Cart{}, nil
}

func (s *stubCartService) UpdateObservacoes(ctx context.Context, userID, produtoID, observacoes string) (*cartsvc.Cart, error) {
	s.observacoes = &observacoes
	return &cartsvc.Cart{}, nil
}

func (s *stubCartService) Clear(ctx context.Context, userID string) error {
	return nil
}

func (s *stubCartService) Reload(ctx context.Context, userID string) (*cartsvc.Cart, error) {
	return &cartsvc.Cart{}, nil
}

func (s *stubCartService) Summary(ctx context.Context, userID string) (*cartsvc.Summary, error) {
	return &cartsvc.Summary{}, nil
}

func (s *stubCartService) ApplyRemote(userID string, items []cartsvc.Item) {}

func (s *stubCartService) Origin() string {
	return "test"
}

func patchItemRequest(body string) *http.Request {
	req := authedRequest(http.MethodPatch, "/sacola/itens/9", body)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("produtoId", "9")
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestSacolaAddItemMapsPayload(t *testing.T) {
	svc := &stubCartService{}
	handler := SacolaAddItem(svc, nil)

	req := authedRequest(http.MethodPost, "/sacola/itens", `{"produtoId":"9","nome":"Feijoada","preco":"25.90","observacoes":"sem couve"}`)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.addedItem == nil || svc.addedItem.ProdutoID != "9" || svc.addedItem.Observacoes != "sem couve" {
		t.Fatalf("item not mapped: %+v", svc.addedItem)
	}
	if svc.addedItem.Preco.String() != "25.9" {
		t.Fatalf("price not mapped: %s", svc.addedItem.Preco)
	}
}

func TestSacolaAddItemAcceptsZeroPrice(t *testing.T) {
	svc := &stubCartService{}
	handler := SacolaAddItem(svc, nil)

	req := authedRequest(http.MethodPost, "/sacola/itens", `{"produtoId":"9","nome":"Brinde","preco":"0"}`)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.addedItem == nil || !svc.addedItem.Preco.IsZero() {
		t.Fatalf("zero-price item not mapped: %+v", svc.addedItem)
	}
}

func TestSacolaUpdateItemQuantity(t *testing.T) {
	svc := &stubCartService{}
	handler := SacolaUpdateItem(svc, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, patchItemRequest(`{"quantidade":3}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.quantity == nil || *svc.quantity != 3 {
		t.Fatalf("quantity not applied: %v", svc.quantity)
	}
	if svc.observacoes != nil {
		t.Fatal("observacoes must not change on a quantity patch")
	}
}

func TestSacolaUpdateItemObservacoes(t *testing.T) {
	svc := &stubCartService{}
	handler := SacolaUpdateItem(svc, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, patchItemRequest(`{"observacoes":"bem passado"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.observacoes == nil || *svc.observacoes != "bem passado" {
		t.Fatalf("observacoes not applied: %v", svc.observacoes)
	}
}

func TestSacolaUpdateItemRejectsEmptyPatch(t *testing.T) {
	handler := SacolaUpdateItem(&stubCartService{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, patchItemRequest(`{}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty patch, got %d", rec.Code)
	}
}

func TestSacolaAddItemValidatesBody(t *testing.T) {
	handler := SacolaAddItem(&stubCartService{}, nil)

	req := authedRequest(http.MethodPost, "/sacola/itens", `{"nome":"Feijoada"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
