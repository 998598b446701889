package syncx

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/quizdesk/quizdesk/internal/gateway"
)

// Notifier watches connectivity and emits one trigger per offline→online
// transition. It stands in for the browser's online/offline events.
type Notifier struct {
	Probe    func(ctx context.Context) bool
	Interval time.Duration
	Log      *zap.Logger
}

// NewNotifier probes the gateway's health endpoint.
func NewNotifier(g gateway.Gateway, interval time.Duration, log *zap.Logger) *Notifier {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		Probe: func(ctx context.Context) bool {
			res, err := g.Send(ctx, "/health", gateway.Request{Method: http.MethodGet})
			return err == nil && res.OK
		},
		Interval: interval,
		Log:      log,
	}
}

// Watch starts probing and returns the trigger channel. The channel is
// buffered with size 1: triggers arriving during a drain coalesce into one
// pending trigger, which is all a full drain needs.
func (n *Notifier) Watch(ctx context.Context) <-chan struct{} {
	if n.Log == nil {
		n.Log = zap.NewNop()
	}
	triggers := make(chan struct{}, 1)
	go func() {
		defer close(triggers)
		ticker := time.NewTicker(n.Interval)
		defer ticker.Stop()

		online := n.Probe(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			now := n.Probe(ctx)
			if now && !online {
				n.Log.Info("network transition to online")
				select {
				case triggers <- struct{}{}:
				default:
				}
			}
			online = now
		}
	}()
	return triggers
}
