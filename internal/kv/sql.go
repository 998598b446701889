package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// SQLStore persists records as JSON text rows. Placeholders are written as
// $N, which both the pgx and modernc sqlite drivers accept, so one statement
// set serves both backends.
type SQLStore struct {
	db     *sql.DB
	schema []Collection
}

func NewSQLStore(db *sql.DB, schema []Collection) *SQLStore {
	return &SQLStore{db: db, schema: schema}
}

func (s *SQLStore) Put(ctx context.Context, collection string, rec Record) (string, error) {
	c, ok := collectionSpec(s.schema, collection)
	if !ok {
		return "", storageErr("put", collection, fmt.Errorf("unknown collection"))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", storageErr("put", collection, err)
	}
	defer tx.Rollback()

	key, has := recordKey(c, rec)
	if !has {
		if !c.AutoIncrement {
			return "", storageErr("put", collection, fmt.Errorf("record missing key field %q", c.KeyField))
		}
		key, err = nextKey(ctx, tx, collection)
		if err != nil {
			return "", storageErr("put", collection, err)
		}
	}
	stored := cloneRecord(rec)
	stored[c.KeyField] = key
	doc, err := json.Marshal(stored)
	if err != nil {
		return "", storageErr("put", collection, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records (collection, key, doc, created_at) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (collection, key) DO UPDATE SET doc=EXCLUDED.doc`,
		collection, key, string(doc), time.Now().Unix()); err != nil {
		return "", storageErr("put", collection, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM record_index WHERE collection=$1 AND key=$2`, collection, key); err != nil {
		return "", storageErr("put", collection, err)
	}
	for _, idx := range c.Indexes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO record_index (collection, idx_name, idx_value, key) VALUES ($1,$2,$3,$4)`,
			collection, idx, indexValue(stored[idx]), key); err != nil {
			return "", storageErr("put", collection, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", storageErr("put", collection, err)
	}
	return key, nil
}

func nextKey(ctx context.Context, tx *sql.Tx, collection string) (string, error) {
	var next int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO sequences (collection, next_key) VALUES ($1, 1)
		 ON CONFLICT (collection) DO UPDATE SET next_key = sequences.next_key + 1
		 RETURNING next_key`, collection).Scan(&next)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(next, 10), nil
}

func (s *SQLStore) Get(ctx context.Context, collection, key string) (Record, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM records WHERE collection=$1 AND key=$2`, collection, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storageErr("get", collection, ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("get", collection, err)
	}
	return decodeDoc(collection, "get", doc)
}

func (s *SQLStore) GetAll(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM records WHERE collection=$1`, collection)
	if err != nil {
		return nil, storageErr("getAll", collection, err)
	}
	defer rows.Close()
	return collectDocs(collection, "getAll", rows)
}

func (s *SQLStore) GetAllByIndex(ctx context.Context, collection, indexName string, value any) ([]Record, error) {
	c, ok := collectionSpec(s.schema, collection)
	if !ok || !hasIndex(c, indexName) {
		return nil, storageErr("getAllByIndex", collection, fmt.Errorf("no index %q", indexName))
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.doc FROM records r
		 JOIN record_index i ON i.collection = r.collection AND i.key = r.key
		 WHERE r.collection=$1 AND i.idx_name=$2 AND i.idx_value=$3`,
		collection, indexName, indexValue(value))
	if err != nil {
		return nil, storageErr("getAllByIndex", collection, err)
	}
	defer rows.Close()
	return collectDocs(collection, "getAllByIndex", rows)
}

func (s *SQLStore) Delete(ctx context.Context, collection, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("delete", collection, err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM record_index WHERE collection=$1 AND key=$2`, collection, key); err != nil {
		return storageErr("delete", collection, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE collection=$1 AND key=$2`, collection, key); err != nil {
		return storageErr("delete", collection, err)
	}
	return storageErr("delete", collection, tx.Commit())
}

func collectDocs(collection, op string, rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, storageErr(op, collection, err)
		}
		rec, err := decodeDoc(collection, op, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, collection, err)
	}
	return out, nil
}

func decodeDoc(collection, op, doc string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, storageErr(op, collection, err)
	}
	return rec, nil
}
