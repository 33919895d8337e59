package upstream

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
)

// ListProdutos returns the menu items.
func (c *Client) ListProdutos(ctx context.Context) ([]Produto, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "list_produtos", "/produtos/", "", &raw); err != nil {
		return nil, err
	}
	produtos, err := decodeList[Produto](raw, "produtos")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decoding produtos")
	}
	return produtos, nil
}

// ListCategorias returns the menu categories.
func (c *Client) ListCategorias(ctx context.Context) ([]Categoria, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "list_categorias", "/categorias/", "", &raw); err != nil {
		return nil, err
	}
	categorias, err := decodeList[Categoria](raw, "categorias")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decoding categorias")
	}
	return categorias, nil
}
