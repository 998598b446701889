// Package kv is a small document store: named collections of JSON records
// with a primary key and optional secondary indexes. It is the sole owner of
// all persisted state; everything above it works on transient copies.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("record not found")

// StorageError wraps a store failure with enough context to log it. Callers
// are expected to catch and degrade (empty list, zero value) rather than
// crash.
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("kv %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Collection: collection, Err: err}
}

// Record is one stored document.
type Record = map[string]any

// Collection declares a named collection up front: where its key lives and
// which fields carry a secondary index.
type Collection struct {
	Name     string
	KeyField string
	// AutoIncrement assigns monotonically increasing keys on Put and writes
	// them back into KeyField.
	AutoIncrement bool
	Indexes       []string
}

// Schema is the fixed set of collections for this application.
var Schema = []Collection{
	{Name: "quizzes", KeyField: "id", Indexes: []string{"published"}},
	{Name: "submissions", KeyField: "localId", AutoIncrement: true, Indexes: []string{"status"}},
	{Name: "meta", KeyField: "key"},
}

// Store is the persistence contract. Each call is atomic; multi-step
// read-modify-write sequences are not, and last write wins.
type Store interface {
	// Put inserts or replaces a record and returns its key. For
	// auto-increment collections a fresh key is assigned when the record
	// carries none.
	Put(ctx context.Context, collection string, rec Record) (string, error)
	Get(ctx context.Context, collection, key string) (Record, error)
	GetAll(ctx context.Context, collection string) ([]Record, error)
	GetAllByIndex(ctx context.Context, collection, indexName string, value any) ([]Record, error)
	Delete(ctx context.Context, collection, key string) error
}

func collectionSpec(schema []Collection, name string) (Collection, bool) {
	for _, c := range schema {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

func hasIndex(c Collection, name string) bool {
	for _, idx := range c.Indexes {
		if idx == name {
			return true
		}
	}
	return false
}

// indexValue flattens an indexed field to its comparable string form.
func indexValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// recordKey extracts the primary key from a record, if present.
func recordKey(c Collection, rec Record) (string, bool) {
	v, ok := rec[c.KeyField]
	if !ok || v == nil {
		return "", false
	}
	s := indexValue(v)
	return s, s != ""
}
