package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/enums"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
)

type orderAPI interface {
	ListPedidos(ctx context.Context, token string) ([]upstream.Pedido, error)
	ListPedidosFuncionario(ctx context.Context, token string) ([]upstream.Pedido, error)
	GetPedido(ctx context.Context, token, pedidoID string) (*upstream.Pedido, error)
	UpdatePedidoStatus(ctx context.Context, token, pedidoID string, status enums.PedidoStatus) (*upstream.Pedido, error)
}

// StaffBoard is the back-office order list with per-status counts.
type StaffBoard struct {
	Pedidos []upstream.Pedido          `json:"pedidos"`
	Counts  map[enums.PedidoStatus]int `json:"counts"`
}

// Service exposes order reads and the staff-only status advance.
type Service interface {
	List(ctx context.Context, token string) ([]upstream.Pedido, error)
	Get(ctx context.Context, token, pedidoID string) (*upstream.Pedido, error)
	StaffBoard(ctx context.Context, token string, onlyActive bool) (*StaffBoard, error)
	AdvanceStatus(ctx context.Context, token, pedidoID string) (*upstream.Pedido, error)
}

type service struct {
	upstream orderAPI
	logger   *logger.Logger
}

// NewService wires the orders service.
func NewService(up orderAPI, logg *logger.Logger) (Service, error) {
	if up == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{upstream: up, logger: logg}, nil
}

// List returns the orders visible to the caller.
func (s *service) List(ctx context.Context, token string) ([]upstream.Pedido, error) {
	return s.upstream.ListPedidos(ctx, token)
}

// Get returns one order by id.
func (s *service) Get(ctx context.Context, token, pedidoID string) (*upstream.Pedido, error) {
	return s.upstream.GetPedido(ctx, token, pedidoID)
}

// StaffBoard lists orders for the back office. With onlyActive, concluded
// orders are filtered out; counts always cover the full list.
func (s *service) StaffBoard(ctx context.Context, token string, onlyActive bool) (*StaffBoard, error) {
	pedidos, err := s.upstream.ListPedidosFuncionario(ctx, token)
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.PedidoStatus]int, 4)
	filtered := make([]upstream.Pedido, 0, len(pedidos))
	for _, pedido := range pedidos {
		status := enums.NormalizePedidoStatus(pedido.Status)
		counts[status]++
		if onlyActive && status.IsTerminal() {
			continue
		}
		filtered = append(filtered, pedido)
	}
	return &StaffBoard{Pedidos: filtered, Counts: counts}, nil
}

// AdvanceStatus moves the order one step forward. Transitions never skip and
// never reverse; advancing a concluded order is a state conflict.
func (s *service) AdvanceStatus(ctx context.Context, token, pedidoID string) (*upstream.Pedido, error) {
	if strings.TrimSpace(pedidoID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pedido id is required")
	}

	pedido, err := s.upstream.GetPedido(ctx, token, pedidoID)
	if err != nil {
		return nil, err
	}
	current := enums.NormalizePedidoStatus(pedido.Status)
	next, ok := current.Next()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order already %s", current))
	}

	updated, err := s.upstream.UpdatePedidoStatus(ctx, token, pedidoID, next)
	if err != nil {
		return nil, err
	}
	ctx = s.logger.WithPedidoID(ctx, pedidoID)
	s.logger.Info(s.logger.WithField(ctx, "status", next.String()), "order status advanced")
	return updated, nil
}
