package upstream

import (
	"context"
	"strings"

	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
)

// CreatePixCharge creates a PIX charge for an already-created order.
func (c *Client) CreatePixCharge(ctx context.Context, token string, req PixChargeRequest) (*PixCharge, error) {
	if strings.TrimSpace(req.PedidoID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pedido id is required")
	}
	var charge PixCharge
	if err := c.post(ctx, "create_pix_charge", "/pagamentos/pix/", token, req, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}
