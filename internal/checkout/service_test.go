package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kaizerhaus/kaizerhaus-backend/internal/cart"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/config"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type stubStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{data: make(map[string]string)}
}

func (s *stubStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = asString(value)
	return nil
}

func (s *stubStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (s *stubStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = asString(value)
	return true, nil
}

func (s *stubStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func asString(value any) string {
	switch v := value.(type) {
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func (s *stubStore) EntregaKey(userID string) string        { return "kh:entrega:" + userID }
func (s *stubStore) PagamentoKey(userID string) string      { return "kh:pagamento:" + userID }
func (s *stubStore) PixKey(userID string) string            { return "kh:pix:" + userID }
func (s *stubStore) PedidoRefKey(userID string) string      { return "kh:pedido:" + userID }
func (s *stubStore) PedidoFallbackKey(userID string) string { return "kh:pedido:fallback:" + userID }
func (s *stubStore) ConclusaoGuardKey(pedidoID string) string {
	return "kh:conclusao:" + pedidoID
}
func (s *stubStore) IdempotencyKey(scope, id string) string {
	return "kh:idempotency:" + scope + ":" + id
}

type stubUpstream struct {
	createResult *upstream.CreatePedidoResult
	createErr    error
	createReq    *upstream.CreatePedidoRequest
	pixCharge    *upstream.PixCharge
	pixErr       error
	pixReq       *upstream.PixChargeRequest
}

func (s *stubUpstream) CreatePedido(ctx context.Context, token string, req upstream.CreatePedidoRequest) (*upstream.CreatePedidoResult, error) {
	s.createReq = &req
	return s.createResult, s.createErr
}

func (s *stubUpstream) CreatePixCharge(ctx context.Context, token string, req upstream.PixChargeRequest) (*upstream.PixCharge, error) {
	s.pixReq = &req
	return s.pixCharge, s.pixErr
}

type stubCart struct {
	items   []cart.Item
	getErr  error
	cleared []string
}

func (s *stubCart) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &cart.Cart{Itens: s.items}, nil
}

func (s *stubCart) Clear(ctx context.Context, userID string) error {
	s.cleared = append(s.cleared, userID)
	return nil
}

func checkoutCfg() config.CheckoutConfig {
	return config.CheckoutConfig{
		EntregaTTL:    2 * time.Hour,
		PixTTL:        2 * time.Hour,
		PedidoRefTTL:  24 * time.Hour,
		SubmitIdemTTL: 24 * time.Hour,
	}
}

func newTestService(t *testing.T, store *stubStore, up *stubUpstream, cartSvc *stubCart) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
	svc, err := NewService(store, store, up, cartSvc, checkoutCfg(), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func testItems() []cart.Item {
	return []cart.Item{
		{ProdutoID: "1", Nome: "Bratwurst", Preco: decimal.RequireFromString("10"), Quantidade: 2, Observacoes: "sem mostarda"},
		{ProdutoID: "2", Nome: "Sauerkraut", Preco: decimal.RequireFromString("5"), Quantidade: 1},
	}
}

func prepareFunnel(t *testing.T, svc Service, metodo string) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.SetEntrega(ctx, "user", EntregaInput{Tipo: EntregaPadrao, Endereco: "Rua das Flores 123, Centro, Porto Alegre - RS, 90000-000"}); err != nil {
		t.Fatalf("set entrega: %v", err)
	}
	input := PagamentoInput{Metodo: metodo}
	if metodo == PagamentoCartao {
		id := "card-1"
		input.CartaoID = &id
	}
	if _, err := svc.SetPagamento(ctx, "user", input); err != nil {
		t.Fatalf("set pagamento: %v", err)
	}
}

func TestSetEntregaFees(t *testing.T) {
	svc := newTestService(t, newStubStore(), &stubUpstream{}, &stubCart{})
	ctx := context.Background()

	padrao, err := svc.SetEntrega(ctx, "user", EntregaInput{Tipo: EntregaPadrao, Endereco: "Rua A 1"})
	if err != nil {
		t.Fatalf("set entrega padrao: %v", err)
	}
	if !padrao.Taxa.Equal(decimal.RequireFromString("10.99")) {
		t.Fatalf("expected padrao fee 10.99, got %s", padrao.Taxa)
	}

	turbo, err := svc.SetEntrega(ctx, "user", EntregaInput{Tipo: EntregaTurbo, Endereco: "Rua A 1"})
	if err != nil {
		t.Fatalf("set entrega turbo: %v", err)
	}
	if !turbo.Taxa.Equal(decimal.RequireFromString("17.99")) {
		t.Fatalf("expected turbo fee 17.99, got %s", turbo.Taxa)
	}

	if _, err := svc.SetEntrega(ctx, "user", EntregaInput{Tipo: "foguete", Endereco: "Rua A 1"}); err == nil {
		t.Fatalf("expected error for unknown tipo")
	}
}

func TestSetPagamentoValidation(t *testing.T) {
	svc := newTestService(t, newStubStore(), &stubUpstream{}, &stubCart{})
	ctx := context.Background()

	if _, err := svc.SetPagamento(ctx, "user", PagamentoInput{Metodo: PagamentoCartao}); err == nil {
		t.Fatalf("cartao without card id must fail")
	}

	id := "card-1"
	pagamento, err := svc.SetPagamento(ctx, "user", PagamentoInput{Metodo: PagamentoPix, CartaoID: &id})
	if err != nil {
		t.Fatalf("set pagamento: %v", err)
	}
	if pagamento.CartaoID != nil {
		t.Fatalf("non-card methods must null the card id")
	}
}

func TestSubmitBuildsPayloadAndPersistsRefs(t *testing.T) {
	store := newStubStore()
	up := &stubUpstream{createResult: &upstream.CreatePedidoResult{PedidoID: "77", Total: decimal.RequireFromString("35.99")}}
	cartSvc := &stubCart{items: testItems()}
	svc := newTestService(t, store, up, cartSvc)
	prepareFunnel(t, svc, PagamentoDinheiro)

	result, err := svc.Submit(context.Background(), "user", "tok", SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.PedidoID != "77" || !result.Total.Equal(decimal.RequireFromString("35.99")) {
		t.Fatalf("unexpected result: %+v", result)
	}

	req := up.createReq
	if req == nil || len(req.Itens) != 2 {
		t.Fatalf("expected 2 order lines, got %+v", req)
	}
	if req.Itens[0].ProdutoID != "1" || req.Itens[0].Quantidade != 2 {
		t.Fatalf("unexpected first line: %+v", req.Itens[0])
	}
	if req.Itens[0].Observacoes == nil || *req.Itens[0].Observacoes != "sem mostarda" {
		t.Fatalf("observacoes must be carried, got %v", req.Itens[0].Observacoes)
	}
	if req.Itens[1].Observacoes != nil {
		t.Fatalf("empty observacoes must be null")
	}
	if req.Total != "35.99" {
		t.Fatalf("expected total 35.99, got %s", req.Total)
	}

	if store.data[store.PedidoRefKey("user")] != "77" || store.data[store.PedidoFallbackKey("user")] != "77" {
		t.Fatalf("both order references must be persisted")
	}
	if len(cartSvc.cleared) != 0 {
		t.Fatalf("submit must not clear the cart")
	}
}

func TestSubmitRequiresCartAndSelections(t *testing.T) {
	store := newStubStore()
	svc := newTestService(t, store, &stubUpstream{}, &stubCart{})

	_, err := svc.Submit(context.Background(), "user", "tok", SubmitInput{})
	if domainErr := pkgerrors.As(err); domainErr == nil || domainErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("empty cart must be a state conflict, got %v", err)
	}

	cartSvc := &stubCart{items: testItems()}
	svc = newTestService(t, store, &stubUpstream{}, cartSvc)
	_, err = svc.Submit(context.Background(), "user", "tok", SubmitInput{})
	if domainErr := pkgerrors.As(err); domainErr == nil || domainErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("missing entrega must be a state conflict, got %v", err)
	}
}

func TestSubmitFailureLeavesCartAndRefsUntouched(t *testing.T) {
	store := newStubStore()
	up := &stubUpstream{createErr: errors.New("backend down")}
	cartSvc := &stubCart{items: testItems()}
	svc := newTestService(t, store, up, cartSvc)
	prepareFunnel(t, svc, PagamentoDinheiro)

	if _, err := svc.Submit(context.Background(), "user", "tok", SubmitInput{}); err == nil {
		t.Fatalf("expected submit failure")
	}
	if len(cartSvc.cleared) != 0 {
		t.Fatalf("cart must not be cleared on failure")
	}
	if _, ok := store.data[store.PedidoRefKey("user")]; ok {
		t.Fatalf("no order reference may be persisted on failure")
	}
}

func TestSubmitPixCreatesCharge(t *testing.T) {
	store := newStubStore()
	up := &stubUpstream{
		createResult: &upstream.CreatePedidoResult{PedidoID: "77", Total: decimal.RequireFromString("35.99")},
		pixCharge:    &upstream.PixCharge{PedidoID: "77", QRCode: "qr", CopiaECola: "copia"},
	}
	cartSvc := &stubCart{items: testItems()}
	svc := newTestService(t, store, up, cartSvc)
	prepareFunnel(t, svc, PagamentoPix)

	result, err := svc.Submit(context.Background(), "user", "tok", SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Pix == nil || result.Pix.QRCode != "qr" {
		t.Fatalf("expected pix charge in result")
	}
	if up.pixReq.PedidoID != "77" || up.pixReq.Valor != "35.99" {
		t.Fatalf("unexpected pix request: %+v", up.pixReq)
	}

	charge, err := svc.GetPix(context.Background(), "user")
	if err != nil {
		t.Fatalf("get pix: %v", err)
	}
	if charge.CopiaECola != "copia" {
		t.Fatalf("persisted charge mismatch: %+v", charge)
	}
}

func TestSubmitPixFailureLeavesOrphanedOrder(t *testing.T) {
	store := newStubStore()
	up := &stubUpstream{
		createResult: &upstream.CreatePedidoResult{PedidoID: "77"},
		pixErr:       errors.New("pix provider down"),
	}
	cartSvc := &stubCart{items: testItems()}
	svc := newTestService(t, store, up, cartSvc)
	prepareFunnel(t, svc, PagamentoPix)

	if _, err := svc.Submit(context.Background(), "user", "tok", SubmitInput{}); err == nil {
		t.Fatalf("expected pix failure")
	}
	// The order was created upstream; its references stay so the user can
	// still reach it.
	if store.data[store.PedidoRefKey("user")] != "77" {
		t.Fatalf("order reference must survive the pix failure")
	}
	if len(cartSvc.cleared) != 0 {
		t.Fatalf("cart must not be cleared")
	}
}

func TestSubmitIdempotency(t *testing.T) {
	store := newStubStore()
	up := &stubUpstream{createResult: &upstream.CreatePedidoResult{PedidoID: "77"}}
	cartSvc := &stubCart{items: testItems()}
	svc := newTestService(t, store, up, cartSvc)
	prepareFunnel(t, svc, PagamentoDinheiro)

	if _, err := svc.Submit(context.Background(), "user", "tok", SubmitInput{IdempotencyKey: "abc"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.Submit(context.Background(), "user", "tok", SubmitInput{IdempotencyKey: "abc"})
	if domainErr := pkgerrors.As(err); domainErr == nil || domainErr.Code() != pkgerrors.CodeIdempotency {
		t.Fatalf("duplicate submit must fail with idempotency code, got %v", err)
	}
}

func TestCompleteClearsCartExactlyOnce(t *testing.T) {
	store := newStubStore()
	cartSvc := &stubCart{items: testItems()}
	svc := newTestService(t, store, &stubUpstream{}, cartSvc)

	first, err := svc.Complete(context.Background(), "user", ConclusaoInput{PedidoID: "77"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !first.CartCleared || len(cartSvc.cleared) != 1 {
		t.Fatalf("first completion must clear the cart")
	}

	second, err := svc.Complete(context.Background(), "user", ConclusaoInput{PedidoID: "77"})
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if second.CartCleared || len(cartSvc.cleared) != 1 {
		t.Fatalf("repeated completion must not clear the cart again")
	}
}

func TestCompleteResolutionPriority(t *testing.T) {
	store := newStubStore()
	cartSvc := &stubCart{}
	svc := newTestService(t, store, &stubUpstream{}, cartSvc)
	ctx := context.Background()

	store.data[store.PedidoRefKey("user")] = "ref-id"
	store.data[store.PedidoFallbackKey("user")] = "fallback-id"

	result, err := svc.Complete(ctx, "user", ConclusaoInput{PedidoID: "explicit-id", Query: "query-id"})
	if err != nil || result.PedidoID != "explicit-id" {
		t.Fatalf("explicit id must win, got %+v (%v)", result, err)
	}

	result, err = svc.Complete(ctx, "user", ConclusaoInput{Query: "query-id"})
	if err != nil || result.PedidoID != "query-id" {
		t.Fatalf("query id must be second, got %+v (%v)", result, err)
	}

	result, err = svc.Complete(ctx, "user", ConclusaoInput{})
	if err != nil || result.PedidoID != "ref-id" {
		t.Fatalf("session reference must be third, got %+v (%v)", result, err)
	}

	delete(store.data, store.PedidoRefKey("user"))
	result, err = svc.Complete(ctx, "user", ConclusaoInput{})
	if err != nil || result.PedidoID != "fallback-id" {
		t.Fatalf("fallback reference must be last, got %+v (%v)", result, err)
	}

	delete(store.data, store.PedidoFallbackKey("user"))
	_, err = svc.Complete(ctx, "user", ConclusaoInput{})
	if domainErr := pkgerrors.As(err); domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("no reference must yield not found, got %v", err)
	}
}

func TestDecomposeEndereco(t *testing.T) {
	endereco := DecomposeEndereco("Rua das Flores 123, Centro, Porto Alegre - RS, 90000-000", "ap 42")
	if endereco.Logradouro != "Rua das Flores" || endereco.Numero != "123" {
		t.Fatalf("unexpected logradouro/numero: %q / %q", endereco.Logradouro, endereco.Numero)
	}
	if endereco.Bairro != "Centro" || endereco.Cidade != "Porto Alegre" || endereco.UF != "RS" {
		t.Fatalf("unexpected bairro/cidade/uf: %q / %q / %q", endereco.Bairro, endereco.Cidade, endereco.UF)
	}
	if endereco.CEP != "90000-000" || endereco.Complemento != "ap 42" {
		t.Fatalf("unexpected cep/complemento: %q / %q", endereco.CEP, endereco.Complemento)
	}

	sparse := DecomposeEndereco("Avenida Brasil", "")
	if sparse.Logradouro != "Avenida Brasil" || sparse.Numero != "" {
		t.Fatalf("sparse input must keep text in logradouro: %+v", sparse)
	}

	commaNumero := DecomposeEndereco("Rua A, 55, Moinhos", "")
	if commaNumero.Numero != "55" || commaNumero.Bairro != "Moinhos" {
		t.Fatalf("comma-separated numero must be detected: %+v", commaNumero)
	}
}
