package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kaizerhaus/kaizerhaus-backend/internal/cart"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/config"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
	redislib "github.com/redis/go-redis/v9"
)

type checkoutStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type checkoutKeyer interface {
	EntregaKey(userID string) string
	PagamentoKey(userID string) string
	PixKey(userID string) string
	PedidoRefKey(userID string) string
	PedidoFallbackKey(userID string) string
	ConclusaoGuardKey(pedidoID string) string
	IdempotencyKey(scope, id string) string
}

type orderCreator interface {
	CreatePedido(ctx context.Context, token string, req upstream.CreatePedidoRequest) (*upstream.CreatePedidoResult, error)
	CreatePixCharge(ctx context.Context, token string, req upstream.PixChargeRequest) (*upstream.PixCharge, error)
}

type cartReader interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// Service threads the cart, a delivery choice, and a payment method into
// exactly one order-creation call per checkout pass.
type Service interface {
	SetEntrega(ctx context.Context, userID string, input EntregaInput) (*Entrega, error)
	GetEntrega(ctx context.Context, userID string) (*Entrega, error)
	SetPagamento(ctx context.Context, userID string, input PagamentoInput) (*Pagamento, error)
	GetPagamento(ctx context.Context, userID string) (*Pagamento, error)
	Submit(ctx context.Context, userID, upstreamToken string, input SubmitInput) (*SubmitResult, error)
	GetPix(ctx context.Context, userID string) (*upstream.PixCharge, error)
	Complete(ctx context.Context, userID string, input ConclusaoInput) (*ConclusaoResult, error)
}

type service struct {
	store    checkoutStore
	keyer    checkoutKeyer
	upstream orderCreator
	cart     cartReader
	cfg      config.CheckoutConfig
	logger   *logger.Logger
}

// NewService wires the checkout orchestrator.
func NewService(store checkoutStore, keyer checkoutKeyer, up orderCreator, cartSvc cartReader, cfg config.CheckoutConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("checkout store required")
	}
	if keyer == nil {
		return nil, fmt.Errorf("checkout keyer required")
	}
	if up == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:    store,
		keyer:    keyer,
		upstream: up,
		cart:     cartSvc,
		cfg:      cfg,
		logger:   logg,
	}, nil
}

// SetEntrega decomposes the free-text address and persists the delivery
// selection for the duration of this checkout pass.
func (s *service) SetEntrega(ctx context.Context, userID string, input EntregaInput) (*Entrega, error) {
	taxa, ok := TaxaFor(input.Tipo)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown delivery tipo %q", input.Tipo))
	}
	if strings.TrimSpace(input.Endereco) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "endereco is required")
	}

	entrega := Entrega{
		Tipo:     input.Tipo,
		Endereco: DecomposeEndereco(input.Endereco, input.Complemento),
		Taxa:     taxa,
	}
	if err := s.setJSON(ctx, s.keyer.EntregaKey(userID), entrega, s.cfg.EntregaTTL); err != nil {
		return nil, err
	}
	return &entrega, nil
}

// GetEntrega returns the stored delivery selection, if any.
func (s *service) GetEntrega(ctx context.Context, userID string) (*Entrega, error) {
	var entrega Entrega
	found, err := s.getJSON(ctx, s.keyer.EntregaKey(userID), &entrega)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no delivery selection for this checkout")
	}
	return &entrega, nil
}

// SetPagamento persists the payment choice.
func (s *service) SetPagamento(ctx context.Context, userID string, input PagamentoInput) (*Pagamento, error) {
	switch input.Metodo {
	case PagamentoPix, PagamentoDinheiro:
		input.CartaoID = nil
	case PagamentoCartao:
		if input.CartaoID == nil || strings.TrimSpace(*input.CartaoID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cartao method needs a saved card id")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", input.Metodo))
	}

	pagamento := Pagamento{Metodo: input.Metodo, CartaoID: input.CartaoID}
	if err := s.setJSON(ctx, s.keyer.PagamentoKey(userID), pagamento, s.cfg.EntregaTTL); err != nil {
		return nil, err
	}
	return &pagamento, nil
}

// GetPagamento returns the stored payment choice, if any.
func (s *service) GetPagamento(ctx context.Context, userID string) (*Pagamento, error) {
	var pagamento Pagamento
	found, err := s.getJSON(ctx, s.keyer.PagamentoKey(userID), &pagamento)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment selection for this checkout")
	}
	return &pagamento, nil
}

// Submit builds the order payload from the live cart plus the stored
// delivery and payment selections and issues the order-creation call. For
// PIX it then creates the charge. The cart is not touched here: it is only
// cleared on completion.
func (s *service) Submit(ctx context.Context, userID, upstreamToken string, input SubmitInput) (*SubmitResult, error) {
	userCart, err := s.cart.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(userCart.Itens) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	entrega, err := s.GetEntrega(ctx, userID)
	if err != nil {
		if domainErr := pkgerrors.As(err); domainErr != nil && domainErr.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery selection missing, restart checkout")
		}
		return nil, err
	}
	pagamento, err := s.GetPagamento(ctx, userID)
	if err != nil {
		if domainErr := pkgerrors.As(err); domainErr != nil && domainErr.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment selection missing, restart checkout")
		}
		return nil, err
	}

	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		set, err := s.store.SetNX(ctx, s.keyer.IdempotencyKey("checkout_submit", userID+":"+key), time.Now().UTC().Format(time.RFC3339), s.cfg.SubmitIdemTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "checking submit idempotency")
		}
		if !set {
			return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "this checkout was already submitted")
		}
	}

	total := userCart.TotalPrice().Add(entrega.Taxa)
	req := upstream.CreatePedidoRequest{
		Itens: buildItens(userCart.Itens),
		Entrega: upstream.CreatePedidoEntrega{
			Tipo:     entrega.Tipo,
			Endereco: entrega.Endereco,
			Taxa:     entrega.Taxa.String(),
		},
		Pagamento: upstream.CreatePedidoPagamento{
			Metodo:   pagamento.Metodo,
			CartaoID: pagamento.CartaoID,
		},
		Total: total.String(),
	}

	created, err := s.upstream.CreatePedido(ctx, upstreamToken, req)
	if err != nil {
		return nil, err
	}
	pedidoID := created.PedidoID.String()
	ctx = s.logger.WithPedidoID(s.logger.WithUserID(ctx, userID), pedidoID)
	s.logger.Info(ctx, "order created")

	// Two independent references so the completion screen can still resolve
	// the order after losing one of them.
	s.persistRef(ctx, s.keyer.PedidoRefKey(userID), pedidoID)
	s.persistRef(ctx, s.keyer.PedidoFallbackKey(userID), pedidoID)

	result := &SubmitResult{
		PedidoID: pedidoID,
		Total:    created.Total,
		Metodo:   pagamento.Metodo,
	}
	if result.Total.IsZero() {
		result.Total = total
	}

	if pagamento.Metodo == PagamentoPix {
		charge, err := s.upstream.CreatePixCharge(ctx, upstreamToken, upstream.PixChargeRequest{
			PedidoID: pedidoID,
			Valor:    result.Total.String(),
		})
		if err != nil {
			// The order already exists upstream with no compensating action;
			// the operator has to reconcile it by hand.
			s.logger.Error(ctx, "pix charge failed after order creation, order is orphaned", err)
			return nil, err
		}
		stored := storedPix{Charge: *charge, SavedAt: time.Now().UTC(), PedidoID: pedidoID}
		if err := s.setJSON(ctx, s.keyer.PixKey(userID), stored, s.cfg.PixTTL); err != nil {
			s.logger.Error(ctx, "persisting pix charge", err)
		}
		result.Pix = charge
	}

	return result, nil
}

// GetPix returns the persisted PIX charge for the display step.
func (s *service) GetPix(ctx context.Context, userID string) (*upstream.PixCharge, error) {
	var stored storedPix
	found, err := s.getJSON(ctx, s.keyer.PixKey(userID), &stored)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pix charge for this checkout")
	}
	return &stored.Charge, nil
}

// Complete resolves the order id and clears the cart exactly once per order,
// guarded against duplicate invocations.
func (s *service) Complete(ctx context.Context, userID string, input ConclusaoInput) (*ConclusaoResult, error) {
	pedidoID, err := s.resolvePedidoID(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	first, err := s.store.SetNX(ctx, s.keyer.ConclusaoGuardKey(pedidoID), userID, s.cfg.PedidoRefTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "guarding checkout completion")
	}
	if first {
		if err := s.cart.Clear(ctx, userID); err != nil {
			s.logger.Error(s.logger.WithUserID(ctx, userID), "clearing cart on completion", err)
		}
		// The pass is over; drop the transient checkout keys.
		if err := s.store.Del(ctx,
			s.keyer.EntregaKey(userID),
			s.keyer.PagamentoKey(userID),
			s.keyer.PixKey(userID),
		); err != nil {
			s.logger.Warn(s.logger.WithUserID(ctx, userID), "dropping checkout keys")
		}
	}
	return &ConclusaoResult{PedidoID: pedidoID, CartCleared: first}, nil
}

// Resolution priority: explicit id, query string, session reference, then
// the fallback reference.
func (s *service) resolvePedidoID(ctx context.Context, userID string, input ConclusaoInput) (string, error) {
	if id := strings.TrimSpace(input.PedidoID); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(input.Query); id != "" {
		return id, nil
	}
	for _, key := range []string{s.keyer.PedidoRefKey(userID), s.keyer.PedidoFallbackKey(userID)} {
		id, err := s.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, redislib.Nil) {
				continue
			}
			return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "resolving order reference")
		}
		if strings.TrimSpace(id) != "" {
			return id, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeNotFound, "no order reference to conclude")
}

func (s *service) persistRef(ctx context.Context, key, pedidoID string) {
	if err := s.store.Set(ctx, key, pedidoID, s.cfg.PedidoRefTTL); err != nil {
		s.logger.Error(ctx, "persisting order reference", err)
	}
}

func (s *service) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding checkout state")
	}
	if err := s.store.Set(ctx, key, payload, ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persisting checkout state")
	}
	return nil
}

func (s *service) getJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "reading checkout state")
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding checkout state")
	}
	return true, nil
}

func buildItens(items []cart.Item) []upstream.CreatePedidoItem {
	itens := make([]upstream.CreatePedidoItem, 0, len(items))
	for _, item := range items {
		var observacoes *string
		if strings.TrimSpace(item.Observacoes) != "" {
			obs := item.Observacoes
			observacoes = &obs
		}
		itens = append(itens, upstream.CreatePedidoItem{
			ProdutoID:   item.ProdutoID,
			Quantidade:  item.Quantidade,
			Observacoes: observacoes,
		})
	}
	return itens
}
