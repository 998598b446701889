package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
)

type memStore struct {
	mu     sync.RWMutex
	schema []Collection
	docs   map[string]map[string]Record // collection -> key -> record
	seq    map[string]int64
}

// NewMemStore returns an in-memory Store over the given collections. It is
// the reference implementation and the test double.
func NewMemStore(schema []Collection) Store {
	docs := make(map[string]map[string]Record, len(schema))
	for _, c := range schema {
		docs[c.Name] = map[string]Record{}
	}
	return &memStore{schema: schema, docs: docs, seq: map[string]int64{}}
}

func (m *memStore) Put(ctx context.Context, collection string, rec Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := collectionSpec(m.schema, collection)
	if !ok {
		return "", storageErr("put", collection, fmt.Errorf("unknown collection"))
	}
	key, has := recordKey(c, rec)
	if !has {
		if !c.AutoIncrement {
			return "", storageErr("put", collection, fmt.Errorf("record missing key field %q", c.KeyField))
		}
		m.seq[collection]++
		key = strconv.FormatInt(m.seq[collection], 10)
	}
	stored := cloneRecord(rec)
	stored[c.KeyField] = key
	m.docs[collection][key] = stored
	return key, nil
}

func (m *memStore) Get(ctx context.Context, collection, key string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coll, ok := m.docs[collection]
	if !ok {
		return nil, storageErr("get", collection, fmt.Errorf("unknown collection"))
	}
	rec, ok := coll[key]
	if !ok {
		return nil, storageErr("get", collection, ErrNotFound)
	}
	return cloneRecord(rec), nil
}

func (m *memStore) GetAll(ctx context.Context, collection string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coll, ok := m.docs[collection]
	if !ok {
		return nil, storageErr("getAll", collection, fmt.Errorf("unknown collection"))
	}
	out := make([]Record, 0, len(coll))
	for _, rec := range coll {
		out = append(out, cloneRecord(rec))
	}
	return out, nil
}

func (m *memStore) GetAllByIndex(ctx context.Context, collection, indexName string, value any) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := collectionSpec(m.schema, collection)
	if !ok {
		return nil, storageErr("getAllByIndex", collection, fmt.Errorf("unknown collection"))
	}
	if !hasIndex(c, indexName) {
		return nil, storageErr("getAllByIndex", collection, fmt.Errorf("no index %q", indexName))
	}
	want := indexValue(value)
	var out []Record
	for _, rec := range m.docs[collection] {
		if indexValue(rec[indexName]) == want {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (m *memStore) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.docs[collection]
	if !ok {
		return storageErr("delete", collection, fmt.Errorf("unknown collection"))
	}
	delete(coll, key)
	return nil
}

// cloneRecord deep-copies through JSON so callers can't mutate stored state.
func cloneRecord(rec Record) Record {
	buf, err := json.Marshal(rec)
	if err != nil {
		// records are built from JSON-safe values; fall back to a shallow copy
		out := make(Record, len(rec))
		for k, v := range rec {
			out[k] = v
		}
		return out
	}
	var out Record
	_ = json.Unmarshal(buf, &out)
	return out
}
