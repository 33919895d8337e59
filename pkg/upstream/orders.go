package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/enums"
)

// CreatePedido submits the single order-creation call of a checkout pass.
func (c *Client) CreatePedido(ctx context.Context, token string, req CreatePedidoRequest) (*CreatePedidoResult, error) {
	if len(req.Itens) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	var result CreatePedidoResult
	if err := c.post(ctx, "create_pedido", "/pedidos/", token, req, &result); err != nil {
		return nil, err
	}
	if result.PedidoID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "order creation response carried no id")
	}
	return &result, nil
}

// GetPedido fetches one order by id.
func (c *Client) GetPedido(ctx context.Context, token, pedidoID string) (*Pedido, error) {
	if strings.TrimSpace(pedidoID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pedido id is required")
	}
	var pedido Pedido
	path := fmt.Sprintf("/pedidos/%s", url.PathEscape(pedidoID))
	if err := c.get(ctx, "get_pedido", path, token, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}

// ListPedidos returns the orders visible to the bearer of the token.
func (c *Client) ListPedidos(ctx context.Context, token string) ([]Pedido, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "list_pedidos", "/pedidos/", token, &raw); err != nil {
		return nil, err
	}
	pedidos, err := decodeList[Pedido](raw, "pedidos")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decoding pedidos")
	}
	return pedidos, nil
}

// ListPedidosFuncionario returns the staff view of orders. Older backend
// builds never shipped the endpoint, so a 404 falls back to the plain list.
func (c *Client) ListPedidosFuncionario(ctx context.Context, token string) ([]Pedido, error) {
	var raw json.RawMessage
	err := c.get(ctx, "list_pedidos_funcionario", "/pedidos/funcionario", token, &raw)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return c.ListPedidos(ctx, token)
		}
		return nil, err
	}
	pedidos, err := decodeList[Pedido](raw, "pedidos")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decoding pedidos")
	}
	return pedidos, nil
}

// UpdatePedidoStatus advances one order to the provided status.
func (c *Client) UpdatePedidoStatus(ctx context.Context, token, pedidoID string, status enums.PedidoStatus) (*Pedido, error) {
	if strings.TrimSpace(pedidoID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pedido id is required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}
	body := map[string]string{"status": status.String()}
	var pedido Pedido
	path := fmt.Sprintf("/pedidos/%s/status", url.PathEscape(pedidoID))
	if err := c.patch(ctx, "update_pedido_status", path, token, body, &pedido); err != nil {
		return nil, err
	}
	return &pedido, nil
}
