package orders

import (
	"context"
	"testing"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/enums"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
	"github.com/rs/zerolog"
)

type stubAPI struct {
	pedidos []upstream.Pedido
	pedido  *upstream.Pedido
	updated *upstream.Pedido
	patched *enums.PedidoStatus
}

func (s *stubAPI) ListPedidos(ctx context.Context, token string) ([]upstream.Pedido, error) {
	return s.pedidos, nil
}

func (s *stubAPI) ListPedidosFuncionario(ctx context.Context, token string) ([]upstream.Pedido, error) {
	return s.pedidos, nil
}

func (s *stubAPI) GetPedido(ctx context.Context, token, pedidoID string) (*upstream.Pedido, error) {
	return s.pedido, nil
}

func (s *stubAPI) UpdatePedidoStatus(ctx context.Context, token, pedidoID string, status enums.PedidoStatus) (*upstream.Pedido, error) {
	s.patched = &status
	if s.updated != nil {
		return s.updated, nil
	}
	return &upstream.Pedido{ID: "1", Status: status.String()}, nil
}

func newTestService(t *testing.T, api *stubAPI) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
	svc, err := NewService(api, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestStaffBoardFiltersAndCounts(t *testing.T) {
	api := &stubAPI{pedidos: []upstream.Pedido{
		{ID: "1", Status: "pendente"},
		{ID: "2", Status: "em_preparacao"},
		{ID: "3", Status: "concluido"},
		{ID: "4", Status: "concluido"},
	}}
	svc := newTestService(t, api)

	board, err := svc.StaffBoard(context.Background(), "tok", true)
	if err != nil {
		t.Fatalf("staff board: %v", err)
	}
	if len(board.Pedidos) != 2 {
		t.Fatalf("active filter must drop concluded orders, got %d", len(board.Pedidos))
	}
	if board.Counts[enums.PedidoStatusConcluido] != 2 || board.Counts[enums.PedidoStatusPendente] != 1 {
		t.Fatalf("counts must cover the full list: %v", board.Counts)
	}

	board, err = svc.StaffBoard(context.Background(), "tok", false)
	if err != nil || len(board.Pedidos) != 4 {
		t.Fatalf("without filter all orders must be listed, got %d (%v)", len(board.Pedidos), err)
	}
}

func TestAdvanceStatusMovesOneStepForward(t *testing.T) {
	cases := []struct {
		current  string
		expected enums.PedidoStatus
	}{
		{"pendente", enums.PedidoStatusEmPreparacao},
		{"em_preparacao", enums.PedidoStatusSaiuParaEntrega},
		{"saiu_para_entrega", enums.PedidoStatusConcluido},
	}
	for _, tc := range cases {
		api := &stubAPI{pedido: &upstream.Pedido{ID: "1", Status: tc.current}}
		svc := newTestService(t, api)

		if _, err := svc.AdvanceStatus(context.Background(), "tok", "1"); err != nil {
			t.Fatalf("advance from %s: %v", tc.current, err)
		}
		if api.patched == nil || *api.patched != tc.expected {
			t.Fatalf("advance from %s patched %v, expected %s", tc.current, api.patched, tc.expected)
		}
	}
}

func TestAdvanceStatusRejectsTerminal(t *testing.T) {
	api := &stubAPI{pedido: &upstream.Pedido{ID: "1", Status: "concluido"}}
	svc := newTestService(t, api)

	_, err := svc.AdvanceStatus(context.Background(), "tok", "1")
	if domainErr := pkgerrors.As(err); domainErr == nil || domainErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("advancing a concluded order must be a state conflict, got %v", err)
	}
	if api.patched != nil {
		t.Fatalf("no patch may be issued for terminal orders")
	}
}
