package upstream

import (
	"time"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Usuario is the profile snapshot returned by the restaurant backend.
type Usuario struct {
	ID         types.FlexID `json:"id"`
	Nome       string       `json:"nome"`
	Email      string       `json:"email"`
	Telefone   string       `json:"telefone,omitempty"`
	Hierarquia string       `json:"hierarquia"`
}

// Credentials is the login payload.
type Credentials struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// RegisterRequest creates a new customer account.
type RegisterRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Senha    string `json:"senha"`
	Telefone string `json:"telefone,omitempty"`
}

// LoginResult is the normalized login response.
type LoginResult struct {
	Token   string
	Usuario Usuario
}

// Produto is a menu item.
type Produto struct {
	ID        types.FlexID    `json:"id"`
	Nome      string          `json:"nome"`
	Descricao string          `json:"descricao,omitempty"`
	Preco     decimal.Decimal `json:"preco"`
	Imagem    string          `json:"imagem,omitempty"`
	Categoria string          `json:"categoria,omitempty"`
	Ativo     *bool           `json:"ativo,omitempty"`
}

// Categoria groups menu items.
type Categoria struct {
	ID   types.FlexID `json:"id"`
	Nome string       `json:"nome"`
}

// PedidoItem is one order line as the backend reports it.
type PedidoItem struct {
	ProdutoID   types.FlexID    `json:"produtoId"`
	Nome        string          `json:"nome,omitempty"`
	Quantidade  int             `json:"quantidade"`
	Preco       decimal.Decimal `json:"preco"`
	Observacoes *string         `json:"observacoes"`
}

// Pedido is an order owned by the restaurant backend.
type Pedido struct {
	ID              types.FlexID    `json:"id"`
	Status          string          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	MetodoPagamento string          `json:"metodoPagamento,omitempty"`
	Cliente         string          `json:"cliente,omitempty"`
	CriadoEm        time.Time       `json:"criadoEm"`
	Itens           []PedidoItem    `json:"itens,omitempty"`
}

// CreatePedidoItem is one order line in the creation payload. Product ids are
// always sent as opaque strings; the backend contract owns the typing.
type CreatePedidoItem struct {
	ProdutoID   string  `json:"produtoId"`
	Quantidade  int     `json:"quantidade"`
	Observacoes *string `json:"observacoes"`
}

// CreatePedidoEntrega carries the delivery choice on order creation.
type CreatePedidoEntrega struct {
	Tipo     string   `json:"tipo"`
	Endereco Endereco `json:"endereco"`
	Taxa     string   `json:"taxa"`
}

// CreatePedidoPagamento carries the payment choice. Unselected method fields
// stay null.
type CreatePedidoPagamento struct {
	Metodo   string  `json:"metodo"`
	CartaoID *string `json:"cartaoId"`
}

// CreatePedidoRequest is the single order-creation payload.
type CreatePedidoRequest struct {
	Itens     []CreatePedidoItem    `json:"itens"`
	Entrega   CreatePedidoEntrega   `json:"entrega"`
	Pagamento CreatePedidoPagamento `json:"pagamento"`
	Total     string                `json:"total"`
}

// CreatePedidoResult is the order-creation response.
type CreatePedidoResult struct {
	PedidoID types.FlexID    `json:"pedidoId"`
	Total    decimal.Decimal `json:"total"`
}

// Endereco is a structured delivery address.
type Endereco struct {
	Logradouro  string `json:"logradouro"`
	Numero      string `json:"numero"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	UF          string `json:"uf"`
	CEP         string `json:"cep"`
	Complemento string `json:"complemento,omitempty"`
}

// PixChargeRequest creates a PIX charge for an existing order.
type PixChargeRequest struct {
	PedidoID string `json:"pedidoId"`
	Valor    string `json:"valor"`
}

// PixCharge is the charge payload displayed to the customer.
type PixCharge struct {
	PedidoID   types.FlexID `json:"pedidoId"`
	QRCode     string       `json:"qrcode"`
	CopiaECola string       `json:"copiaECola"`
	ExpiraEm   time.Time    `json:"expiraEm"`
}

// Cartao is a saved payment card. The backend only ever returns masked data.
type Cartao struct {
	ID       types.FlexID `json:"id"`
	Numero   string       `json:"numero"`
	Nome     string       `json:"nome"`
	Validade string       `json:"validade"`
	Bandeira string       `json:"bandeira,omitempty"`
}

// CreateCartaoRequest saves a new card.
type CreateCartaoRequest struct {
	Numero   string `json:"numero"`
	Nome     string `json:"nome"`
	Validade string `json:"validade"`
	CVV      string `json:"cvv"`
}
