// Package syncx drains the submission queue against the remote gateway.
// Delivery is best effort: local durability is the hard requirement, the
// drain just moves records to a terminal status.
package syncx

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/quizdesk/quizdesk/internal/gateway"
	"github.com/quizdesk/quizdesk/internal/quiz"
)

// SubmitPath is the fixed endpoint every pending record is sent to.
const SubmitPath = "/quiz/submit"

// Queue is the slice of the submission queue the coordinator needs.
type Queue interface {
	Pending(ctx context.Context) ([]quiz.Submission, error)
	UpdateStatus(ctx context.Context, key, status string) (*quiz.Submission, error)
	RequeueFailed(ctx context.Context) (int, error)
}

type Coordinator struct {
	Queue Queue
	Gate  gateway.Gateway
	Log   *zap.Logger
	// RetryFailed requeues failed records to pending at the start of a
	// drain. Off by default: a failed record otherwise stays failed until
	// someone intervenes.
	RetryFailed bool
}

func NewCoordinator(q Queue, g gateway.Gateway, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{Queue: q, Gate: g, Log: log}
}

// Drain runs one pass to completion: every pending record is sent
// sequentially and lands in a terminal status. Returns how many synced.
// With zero pending records it is a no-op returning 0.
func (c *Coordinator) Drain(ctx context.Context) (int, error) {
	if c.RetryFailed {
		if n, err := c.Queue.RequeueFailed(ctx); err != nil {
			c.Log.Warn("requeue failed records", zap.Error(err))
		} else if n > 0 {
			c.Log.Info("requeued failed records", zap.Int("count", n))
		}
	}

	pending, err := c.Queue.Pending(ctx)
	if err != nil {
		return 0, err
	}
	synced := 0
	for _, sub := range pending {
		status := quiz.StatusFailed
		res, err := c.Gate.Send(ctx, SubmitPath, gateway.Request{
			Method: http.MethodPost,
			Body:   sub,
		})
		switch {
		case err != nil:
			c.Log.Warn("submission send failed",
				zap.String("localId", sub.LocalID), zap.Error(err))
		case !res.OK:
			c.Log.Warn("submission rejected",
				zap.String("localId", sub.LocalID), zap.Int("status", res.Status))
		default:
			status = quiz.StatusSynced
			synced++
		}
		if _, err := c.Queue.UpdateStatus(ctx, sub.LocalID, status); err != nil {
			c.Log.Error("submission status update failed",
				zap.String("localId", sub.LocalID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		c.Log.Info("drain complete",
			zap.Int("pending", len(pending)), zap.Int("synced", synced))
	}
	return synced, nil
}

// Run drains once at startup and then once per trigger, serializing drains
// so two can never interleave on the same record. Returns when ctx is done
// or triggers closes.
func (c *Coordinator) Run(ctx context.Context, triggers <-chan struct{}) {
	if _, err := c.Drain(ctx); err != nil {
		c.Log.Warn("startup drain failed", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-triggers:
			if !ok {
				return
			}
			if _, err := c.Drain(ctx); err != nil {
				c.Log.Warn("drain failed", zap.Error(err))
			}
		}
	}
}
