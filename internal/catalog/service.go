package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/config"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
	redislib "github.com/redis/go-redis/v9"
)

type catalogAPI interface {
	ListProdutos(ctx context.Context) ([]upstream.Produto, error)
	ListCategorias(ctx context.Context) ([]upstream.Categoria, error)
}

type cacheStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

type cacheKeyer interface {
	CatalogCacheKey(resource string) string
}

// Service serves the menu with a short-lived cache in front of the
// restaurant backend. Cache failures degrade to direct reads.
type Service interface {
	Produtos(ctx context.Context) ([]upstream.Produto, error)
	Categorias(ctx context.Context) ([]upstream.Categoria, error)
}

type service struct {
	upstream catalogAPI
	cache    cacheStore
	keyer    cacheKeyer
	ttl      time.Duration
	logger   *logger.Logger
}

// NewService wires the catalog proxy.
func NewService(up catalogAPI, cache cacheStore, keyer cacheKeyer, cfg config.CatalogConfig, logg *logger.Logger) (Service, error) {
	if up == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if keyer == nil {
		return nil, fmt.Errorf("cache keyer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		upstream: up,
		cache:    cache,
		keyer:    keyer,
		ttl:      cfg.CacheTTL,
		logger:   logg,
	}, nil
}

// Produtos returns the menu items.
func (s *service) Produtos(ctx context.Context) ([]upstream.Produto, error) {
	return cached(ctx, s, "produtos", s.upstream.ListProdutos)
}

// Categorias returns the menu categories.
func (s *service) Categorias(ctx context.Context) ([]upstream.Categoria, error) {
	return cached(ctx, s, "categorias", s.upstream.ListCategorias)
}

func cached[T any](ctx context.Context, s *service, resource string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key := s.keyer.CatalogCacheKey(resource)

	raw, err := s.cache.Get(ctx, key)
	if err == nil {
		var items []T
		if jsonErr := json.Unmarshal([]byte(raw), &items); jsonErr == nil {
			return items, nil
		}
		// Poisoned entry; fall through to a fresh read.
	} else if !errors.Is(err, redislib.Nil) {
		s.logger.Warn(s.logger.WithField(ctx, "resource", resource), "catalog cache read degraded")
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(items)
	if err == nil {
		if setErr := s.cache.Set(ctx, key, payload, s.ttl); setErr != nil {
			s.logger.Warn(s.logger.WithField(ctx, "resource", resource), "catalog cache write degraded")
		}
	}
	return items, nil
}
