package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// The review page shows a fixed delivery fee; the actual fee is chosen later
// in the checkout funnel and the two are not reconciled here.
var taxaEntregaSacola = decimal.RequireFromString("10.99")

type cartStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Publish(ctx context.Context, channel string, payload any) error
}

type cartKeyer interface {
	CartKey(userID string) string
	CartEventsChannel(userID string) string
}

// event is the cross-instance notification emitted after each persisted
// write. Origin lets an instance skip its own events.
type event struct {
	Origin string `json:"origin"`
	Itens  []Item `json:"itens"`
}

// Service is the single source of truth for per-user carts.
type Service interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	AddItem(ctx context.Context, userID string, item Item) (*Cart, error)
	RemoveItem(ctx context.Context, userID, produtoID string) (*Cart, error)
	UpdateQuantity(ctx context.Context, userID, produtoID string, quantidade int) (*Cart, error)
	UpdateObservacoes(ctx context.Context, userID, produtoID, observacoes string) (*Cart, error)
	Clear(ctx context.Context, userID string) error
	Reload(ctx context.Context, userID string) (*Cart, error)
	Summary(ctx context.Context, userID string) (*Summary, error)

	// ApplyRemote and Origin back the cross-instance event listener.
	ApplyRemote(userID string, items []Item)
	Origin() string
}

type service struct {
	store  cartStore
	keyer  cartKeyer
	logger *logger.Logger

	origin string

	mu    sync.RWMutex
	carts map[string][]Item
}

// NewService builds the cart service. The in-memory copy is authoritative for
// the life of the process; Redis is the durable write-through layer.
func NewService(store cartStore, keyer cartKeyer, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if keyer == nil {
		return nil, fmt.Errorf("cart keyer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:  store,
		keyer:  keyer,
		logger: logg,
		origin: uuid.NewString(),
		carts:  make(map[string][]Item),
	}, nil
}

// Origin identifies this instance on the cart events channel.
func (s *service) Origin() string {
	return s.origin
}

// Get returns the user's cart, hydrating from storage on first touch.
// Missing or malformed stored data yields an empty cart.
func (s *service) Get(ctx context.Context, userID string) (*Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	s.mu.RLock()
	items, ok := s.carts[userID]
	s.mu.RUnlock()
	if ok {
		return &Cart{Itens: cloneItems(items)}, nil
	}

	items = s.loadFromStore(ctx, userID)
	s.mu.Lock()
	if existing, ok := s.carts[userID]; ok {
		items = existing
	} else {
		s.carts[userID] = items
	}
	s.mu.Unlock()
	return &Cart{Itens: cloneItems(items)}, nil
}

// AddItem appends the item with quantity 1, or bumps the quantity of an
// existing line by 1 leaving its price/name/image untouched.
func (s *service) AddItem(ctx context.Context, userID string, item Item) (*Cart, error) {
	if strings.TrimSpace(item.ProdutoID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "produto id is required")
	}
	if item.Preco.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "preco must be non-negative")
	}
	return s.mutate(ctx, userID, func(items []Item) []Item {
		for i := range items {
			if items[i].ProdutoID == item.ProdutoID {
				items[i].Quantidade++
				return items
			}
		}
		item.Quantidade = 1
		return append(items, item)
	})
}

// RemoveItem deletes the line; no-op if absent.
func (s *service) RemoveItem(ctx context.Context, userID, produtoID string) (*Cart, error) {
	return s.mutate(ctx, userID, func(items []Item) []Item {
		return removeLine(items, produtoID)
	})
}

// UpdateQuantity sets the line's quantity; values at or below zero remove it.
func (s *service) UpdateQuantity(ctx context.Context, userID, produtoID string, quantidade int) (*Cart, error) {
	if quantidade <= 0 {
		return s.RemoveItem(ctx, userID, produtoID)
	}
	return s.mutate(ctx, userID, func(items []Item) []Item {
		for i := range items {
			if items[i].ProdutoID == produtoID {
				items[i].Quantidade = quantidade
				break
			}
		}
		return items
	})
}

// UpdateObservacoes sets the free-text note on the line; no-op if absent.
func (s *service) UpdateObservacoes(ctx context.Context, userID, produtoID, observacoes string) (*Cart, error) {
	return s.mutate(ctx, userID, func(items []Item) []Item {
		for i := range items {
			if items[i].ProdutoID == produtoID {
				items[i].Observacoes = observacoes
				break
			}
		}
		return items
	})
}

// Clear empties the cart and removes the persisted key.
func (s *service) Clear(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	s.mu.Lock()
	s.carts[userID] = nil
	s.mu.Unlock()

	if err := s.store.Del(ctx, s.keyer.CartKey(userID)); err != nil {
		s.logStorageFailure(ctx, userID, "deleting cart key", err)
	}
	s.publish(ctx, userID, nil)
	return nil
}

// Reload re-reads persisted state into memory, overwriting the in-memory
// copy. Used to recover from external changes.
func (s *service) Reload(ctx context.Context, userID string) (*Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items := s.loadFromStore(ctx, userID)
	s.mu.Lock()
	s.carts[userID] = items
	s.mu.Unlock()
	return &Cart{Itens: cloneItems(items)}, nil
}

// Summary derives the review-page totals.
func (s *service) Summary(ctx context.Context, userID string) (*Summary, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	subtotal := cart.TotalPrice()
	return &Summary{
		TotalItens:  cart.TotalItems(),
		Subtotal:    subtotal,
		TaxaEntrega: taxaEntregaSacola,
		Total:       subtotal.Add(taxaEntregaSacola),
	}, nil
}

// ApplyRemote replaces the in-memory cart with a snapshot observed on the
// events channel. Last writer wins; no merge.
func (s *service) ApplyRemote(userID string, items []Item) {
	if strings.TrimSpace(userID) == "" {
		return
	}
	s.mu.Lock()
	s.carts[userID] = cloneItems(items)
	s.mu.Unlock()
}

func (s *service) mutate(ctx context.Context, userID string, apply func([]Item) []Item) (*Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	s.mu.Lock()
	items, ok := s.carts[userID]
	if !ok {
		s.mu.Unlock()
		items = s.loadFromStore(ctx, userID)
		s.mu.Lock()
		if existing, hydrated := s.carts[userID]; hydrated {
			items = existing
		}
	}
	items = apply(cloneItems(items))
	s.carts[userID] = items
	s.mu.Unlock()

	s.persist(ctx, userID, items)
	s.publish(ctx, userID, items)
	return &Cart{Itens: cloneItems(items)}, nil
}

func (s *service) loadFromStore(ctx context.Context, userID string) []Item {
	raw, err := s.store.Get(ctx, s.keyer.CartKey(userID))
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			s.logStorageFailure(ctx, userID, "reading cart key", err)
		}
		return nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logStorageFailure(ctx, userID, "decoding stored cart", err)
		return nil
	}
	return items
}

// persist writes through to storage. Failures are logged and swallowed: the
// in-memory cart stays authoritative for this process, it just will not
// survive a restart.
func (s *service) persist(ctx context.Context, userID string, items []Item) {
	key := s.keyer.CartKey(userID)
	if len(items) == 0 {
		if err := s.store.Del(ctx, key); err != nil {
			s.logStorageFailure(ctx, userID, "deleting cart key", err)
		}
		return
	}
	payload, err := json.Marshal(items)
	if err != nil {
		s.logStorageFailure(ctx, userID, "encoding cart", err)
		return
	}
	if err := s.store.Set(ctx, key, payload, 0); err != nil {
		s.logStorageFailure(ctx, userID, "writing cart key", err)
	}
}

func (s *service) publish(ctx context.Context, userID string, items []Item) {
	payload, err := json.Marshal(event{Origin: s.origin, Itens: items})
	if err != nil {
		return
	}
	if err := s.store.Publish(ctx, s.keyer.CartEventsChannel(userID), payload); err != nil {
		s.logStorageFailure(ctx, userID, "publishing cart event", err)
	}
}

func (s *service) logStorageFailure(ctx context.Context, userID, action string, err error) {
	ctx = s.logger.WithUserID(ctx, userID)
	s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "cart storage degraded: "+action)
}

func removeLine(items []Item, produtoID string) []Item {
	result := items[:0]
	for _, item := range items {
		if item.ProdutoID != produtoID {
			result = append(result, item)
		}
	}
	return result
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	cloned := make([]Item, len(items))
	copy(cloned, items)
	return cloned
}
