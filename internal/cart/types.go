package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one cart line. Unique by ProdutoID within a cart.
type Item struct {
	ProdutoID   string          `json:"produtoId"`
	Nome        string          `json:"nome"`
	Preco       decimal.Decimal `json:"preco"`
	Quantidade  int             `json:"quantidade"`
	Imagem      string          `json:"imagem,omitempty"`
	Categoria   string          `json:"categoria,omitempty"`
	Observacoes string          `json:"observacoes,omitempty"`
}

// Cart is the per-user item list in insertion order.
type Cart struct {
	Itens []Item `json:"itens"`
}

// TotalItems sums quantities across lines.
func (c Cart) TotalItems() int {
	total := 0
	for _, item := range c.Itens {
		total += item.Quantidade
	}
	return total
}

// TotalPrice sums preco*quantidade across lines.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Itens {
		total = total.Add(item.Preco.Mul(decimal.NewFromInt(int64(item.Quantidade))))
	}
	return total
}

// Summary is the cart-review page aggregate. TaxaEntrega here is the fixed
// display fee of the review step; the checkout step replaces it with the
// chosen delivery option's fee.
type Summary struct {
	TotalItens  int             `json:"totalItens"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxaEntrega decimal.Decimal `json:"taxaEntrega"`
	Total       decimal.Decimal `json:"total"`
}
