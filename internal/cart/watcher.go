package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	redislib "github.com/redis/go-redis/v9"
)

type subscriber interface {
	PSubscribe(ctx context.Context, pattern string) *redislib.PubSub
	CartEventsPattern() string
}

// Watcher mirrors cart writes made by other instances into the local
// in-memory copy. Last writer wins; an instance's own events are skipped.
type Watcher struct {
	sub    subscriber
	svc    Service
	logger *logger.Logger
}

// NewWatcher builds the cross-instance cart listener.
func NewWatcher(sub subscriber, svc Service, logg *logger.Logger) (*Watcher, error) {
	if sub == nil {
		return nil, fmt.Errorf("subscriber required")
	}
	if svc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Watcher{sub: sub, svc: svc, logger: logg}, nil
}

// Run consumes cart events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	pubsub := w.sub.PSubscribe(ctx, w.sub.CartEventsPattern())
	if pubsub == nil {
		return fmt.Errorf("opening cart events subscription")
	}
	defer pubsub.Close()

	w.logger.Info(ctx, "cart watcher started")
	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "cart watcher stopped")
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("cart events subscription closed")
			}
			w.handle(ctx, msg.Channel, []byte(msg.Payload))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, channel string, payload []byte) {
	userID := userIDFromChannel(channel)
	if userID == "" {
		return
	}
	var evt event
	if err := json.Unmarshal(payload, &evt); err != nil {
		w.logger.Warn(w.logger.WithField(ctx, "channel", channel), "dropping malformed cart event")
		return
	}
	if evt.Origin == w.svc.Origin() {
		return
	}
	w.svc.ApplyRemote(userID, evt.Itens)
}

// Channel names end with the user id segment.
func userIDFromChannel(channel string) string {
	idx := strings.LastIndex(channel, ":")
	if idx < 0 || idx == len(channel)-1 {
		return ""
	}
	return channel[idx+1:]
}
