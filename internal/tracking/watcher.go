package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/enums"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/metrics"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
)

type orderFetcher interface {
	GetPedido(ctx context.Context, token, pedidoID string) (*upstream.Pedido, error)
}

// Update is one observed order state plus its derived timeline.
type Update struct {
	Pedido   *upstream.Pedido
	Timeline []Milestone
}

// Watcher keeps a displayed order current by re-fetching it on a fixed
// interval.
type Watcher struct {
	fetcher  orderFetcher
	interval time.Duration
	metrics  *metrics.TrackingMetrics
	logger   *logger.Logger
}

// NewWatcher builds an order status watcher.
func NewWatcher(fetcher orderFetcher, interval time.Duration, mtr *metrics.TrackingMetrics, logg *logger.Logger) (*Watcher, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("order fetcher required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Watcher{
		fetcher:  fetcher,
		interval: interval,
		metrics:  mtr,
		logger:   logg,
	}, nil
}

// Snapshot fetches the order once and derives its timeline. Used for the
// first paint, where errors surface to the caller.
func (w *Watcher) Snapshot(ctx context.Context, token, pedidoID string) (*Update, error) {
	start := time.Now()
	pedido, err := w.fetcher.GetPedido(ctx, token, pedidoID)
	w.metrics.ObserveDuration("order_status", time.Since(start))
	if err != nil {
		w.metrics.IncFailure("order_status")
		return nil, err
	}
	w.metrics.IncSuccess("order_status")
	return &Update{
		Pedido:   pedido,
		Timeline: Timeline(enums.NormalizePedidoStatus(pedido.Status), pedido.CriadoEm),
	}, nil
}

// Watch fetches the order once, surfacing that first error, then re-fetches
// on the configured interval until the context is cancelled. Background
// fetch errors are swallowed; the previous update stands. The context is
// re-checked after every fetch so a cancelled watch never applies a stale
// result.
func (w *Watcher) Watch(ctx context.Context, token, pedidoID string, apply func(Update)) error {
	update, err := w.Snapshot(ctx, token, pedidoID)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	apply(*update)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			update, err := w.Snapshot(ctx, token, pedidoID)
			if err != nil {
				w.logger.Warn(w.logger.WithPedidoID(ctx, pedidoID), "background status poll failed")
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			apply(*update)
		}
	}
}
