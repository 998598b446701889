package quiz

import (
	"context"
	"encoding/json"

	"github.com/quizdesk/quizdesk/internal/kv"
)

const collection = "quizzes"

// PutQuiz writes a quiz definition into the local store.
func PutQuiz(ctx context.Context, store kv.Store, q Quiz) (string, error) {
	buf, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	var rec kv.Record
	if err := json.Unmarshal(buf, &rec); err != nil {
		return "", err
	}
	return store.Put(ctx, collection, rec)
}

// GetQuiz loads one quiz by id.
func GetQuiz(ctx context.Context, store kv.Store, id string) (Quiz, error) {
	rec, err := store.Get(ctx, collection, id)
	if err != nil {
		return Quiz{}, err
	}
	return decodeQuiz(rec)
}

// PublishedQuizzes lists quizzes via the published index.
func PublishedQuizzes(ctx context.Context, store kv.Store) ([]Quiz, error) {
	recs, err := store.GetAllByIndex(ctx, collection, "published", true)
	if err != nil {
		return nil, err
	}
	out := make([]Quiz, 0, len(recs))
	for _, rec := range recs {
		q, err := decodeQuiz(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func decodeQuiz(rec kv.Record) (Quiz, error) {
	buf, err := json.Marshal(rec)
	if err != nil {
		return Quiz{}, err
	}
	var q Quiz
	if err := json.Unmarshal(buf, &q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}
