package checkout

import (
	"time"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
	"github.com/shopspring/decimal"
)

const (
	EntregaPadrao = "padrao"
	EntregaTurbo  = "turbo"
)

const (
	PagamentoPix      = "pix"
	PagamentoCartao   = "cartao"
	PagamentoDinheiro = "dinheiro"
)

var entregaTaxas = map[string]decimal.Decimal{
	EntregaPadrao: decimal.RequireFromString("10.99"),
	EntregaTurbo:  decimal.RequireFromString("17.99"),
}

// Entrega is the delivery selection kept for the duration of one checkout.
type Entrega struct {
	Tipo     string            `json:"tipo"`
	Endereco upstream.Endereco `json:"endereco"`
	Taxa     decimal.Decimal   `json:"taxa"`
}

// EntregaInput carries the chosen speed plus a free-text address.
type EntregaInput struct {
	Tipo        string `json:"tipo" validate:"required,oneof=padrao turbo"`
	Endereco    string `json:"endereco" validate:"required"`
	Complemento string `json:"complemento,omitempty"`
}

// Pagamento is the payment choice. CartaoID is only set for the card method.
type Pagamento struct {
	Metodo   string  `json:"metodo"`
	CartaoID *string `json:"cartaoId,omitempty"`
}

// PagamentoInput selects the payment method.
type PagamentoInput struct {
	Metodo   string  `json:"metodo" validate:"required,oneof=pix cartao dinheiro"`
	CartaoID *string `json:"cartaoId,omitempty"`
}

// SubmitInput triggers the order-creation call.
type SubmitInput struct {
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// SubmitResult reports the created order and, for PIX, the charge.
type SubmitResult struct {
	PedidoID string              `json:"pedidoId"`
	Total    decimal.Decimal     `json:"total"`
	Metodo   string              `json:"metodo"`
	Pix      *upstream.PixCharge `json:"pix,omitempty"`
}

// ConclusaoInput resolves which order the completion screen refers to.
type ConclusaoInput struct {
	PedidoID string `json:"pedidoId,omitempty"`
	Query    string `json:"-"`
}

// ConclusaoResult reports the resolved order and whether this call was the
// one that emptied the cart.
type ConclusaoResult struct {
	PedidoID    string `json:"pedidoId"`
	CartCleared bool   `json:"cartCleared"`
}

// storedPix is the PIX payload persisted between the submit and display steps.
type storedPix struct {
	Charge   upstream.PixCharge `json:"charge"`
	SavedAt  time.Time          `json:"savedAt"`
	PedidoID string             `json:"pedidoId"`
}

// TaxaFor returns the delivery fee for a known tipo.
func TaxaFor(tipo string) (decimal.Decimal, bool) {
	taxa, ok := entregaTaxas[tipo]
	return taxa, ok
}
