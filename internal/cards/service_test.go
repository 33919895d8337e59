package cards

import (
	"context"
	"testing"

	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
	"github.com/rs/zerolog"
)

type stubAPI struct {
	created *upstream.CreateCartaoRequest
	cartoes []upstream.Cartao
}

func (s *stubAPI) CreateCartao(ctx context.Context, token string, req upstream.CreateCartaoRequest) (*upstream.Cartao, error) {
	s.created = &req
	return &upstream.Cartao{ID: "10", Numero: "**** **** **** 1111", Nome: req.Nome, Validade: req.Validade}, nil
}

func (s *stubAPI) ListCartoes(ctx context.Context, token string) ([]upstream.Cartao, error) {
	return s.cartoes, nil
}

func newTestService(t *testing.T, api *stubAPI) Service {
	t.Helper()
	svc, err := NewService(api, logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateStripsSpacesFromNumber(t *testing.T) {
	api := &stubAPI{}
	svc := newTestService(t, api)

	cartao, err := svc.Create(context.Background(), "tok", CreateInput{
		Numero:   "4111 1111 1111 1111",
		Nome:     " Maria Silva ",
		Validade: "12/27",
		CVV:      "123",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if api.created.Numero != "4111111111111111" {
		t.Fatalf("number not normalized: %q", api.created.Numero)
	}
	if api.created.Nome != "Maria Silva" {
		t.Fatalf("name not trimmed: %q", api.created.Nome)
	}
	if cartao.ID.String() != "10" {
		t.Fatalf("unexpected card id %q", cartao.ID)
	}
}

func TestCreateRejectsMalformedNumbers(t *testing.T) {
	svc := newTestService(t, &stubAPI{})

	for _, numero := range []string{"", "1234", "4111-1111-1111-1111", "41111111111111111111"} {
		_, err := svc.Create(context.Background(), "tok", CreateInput{Numero: numero, Nome: "Maria", Validade: "12/27", CVV: "123"})
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("numero %q: expected validation error, got %v", numero, err)
		}
	}
}

func TestListPassesThrough(t *testing.T) {
	api := &stubAPI{cartoes: []upstream.Cartao{{ID: "1"}, {ID: "2"}}}
	svc := newTestService(t, api)

	cartoes, err := svc.List(context.Background(), "tok")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cartoes) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cartoes))
	}
}
