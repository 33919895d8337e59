package upstream

import (
	"context"
	"encoding/json"
	"strings"

	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
)

// Card endpoints require an authenticated caller; the absence of a token is a
// precondition failure raised before any network call.

// CreateCartao saves a new payment card.
func (c *Client) CreateCartao(ctx context.Context, token string, req CreateCartaoRequest) (*Cartao, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "saving a card requires an active session")
	}
	var cartao Cartao
	if err := c.post(ctx, "create_cartao", "/cartoes/", token, req, &cartao); err != nil {
		return nil, err
	}
	return &cartao, nil
}

// ListCartoes returns the caller's saved cards.
func (c *Client) ListCartoes(ctx context.Context, token string) ([]Cartao, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "listing cards requires an active session")
	}
	var raw json.RawMessage
	if err := c.get(ctx, "list_cartoes", "/cartoes/", token, &raw); err != nil {
		return nil, err
	}
	cartoes, err := decodeList[Cartao](raw, "cartoes")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decoding cartoes")
	}
	return cartoes, nil
}
