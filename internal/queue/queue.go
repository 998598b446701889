// Package queue is the append-only log of quiz attempts waiting for
// synchronization. Records are never deleted in the steady-state flow;
// status transitions are the only mutation path.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quizdesk/quizdesk/internal/kv"
	"github.com/quizdesk/quizdesk/internal/quiz"
)

const collection = "submissions"

type Queue struct {
	store kv.Store
	now   func() time.Time
}

func New(store kv.Store) *Queue {
	return &Queue{store: store, now: time.Now}
}

// NewWithClock is for deterministic createdAt stamps in tests.
func NewWithClock(store kv.Store, now func() time.Time) *Queue {
	return &Queue{store: store, now: now}
}

// SaveSubmission wraps the attempt payload with status=pending and a
// createdAt stamp, inserts it, and returns the assigned key. It never
// overwrites an existing record: the store assigns a fresh key on every call.
func (q *Queue) SaveSubmission(ctx context.Context, sub quiz.Submission) (string, error) {
	sub.LocalID = ""
	sub.Status = quiz.StatusPending
	sub.CreatedAt = q.now().UnixMilli()
	rec, err := toRecord(sub)
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}
	return q.store.Put(ctx, collection, rec)
}

// Pending returns all records with status=pending via the status index.
// Ordering is unspecified.
func (q *Queue) Pending(ctx context.Context) ([]quiz.Submission, error) {
	return q.byStatus(ctx, quiz.StatusPending)
}

// UpdateStatus is a read-modify-write on one record. A missing key yields
// (nil, nil): nothing to update, not a crash.
func (q *Queue) UpdateStatus(ctx context.Context, key, status string) (*quiz.Submission, error) {
	rec, err := q.store.Get(ctx, collection, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	rec["status"] = status
	if _, err := q.store.Put(ctx, collection, rec); err != nil {
		return nil, err
	}
	sub, err := fromRecord(rec)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// RequeueFailed flips every failed record back to pending and returns how
// many it touched. Only used when failed-retry is enabled.
func (q *Queue) RequeueFailed(ctx context.Context) (int, error) {
	failed, err := q.byStatus(ctx, quiz.StatusFailed)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, sub := range failed {
		if _, err := q.UpdateStatus(ctx, sub.LocalID, quiz.StatusPending); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// All returns every submission regardless of status, for review and export.
func (q *Queue) All(ctx context.Context) ([]quiz.Submission, error) {
	recs, err := q.store.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return decodeAll(recs)
}

func (q *Queue) byStatus(ctx context.Context, status string) ([]quiz.Submission, error) {
	recs, err := q.store.GetAllByIndex(ctx, collection, "status", status)
	if err != nil {
		return nil, err
	}
	return decodeAll(recs)
}

func decodeAll(recs []kv.Record) ([]quiz.Submission, error) {
	out := make([]quiz.Submission, 0, len(recs))
	for _, rec := range recs {
		sub, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func toRecord(sub quiz.Submission) (kv.Record, error) {
	buf, err := json.Marshal(sub)
	if err != nil {
		return nil, err
	}
	var rec kv.Record
	if err := json.Unmarshal(buf, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func fromRecord(rec kv.Record) (quiz.Submission, error) {
	buf, err := json.Marshal(rec)
	if err != nil {
		return quiz.Submission{}, err
	}
	var sub quiz.Submission
	if err := json.Unmarshal(buf, &sub); err != nil {
		return quiz.Submission{}, err
	}
	return sub, nil
}
