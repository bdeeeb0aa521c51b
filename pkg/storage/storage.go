package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	_ "modernc.org/sqlite"

	"github.com/eccowas/admitgen/internal/utils"
)

// DB is a flat key-value namespace where every key holds a JSON array.
type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS kv (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
    `); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getRaw(ctx context.Context, q queryer, key string) (string, bool, error) {
	var v string
	err := q.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, true, nil
}

func putRaw(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO kv(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// ReadAll returns the list stored at key. A missing key yields an empty list
// and a non-list value is wrapped in a one-element list. Values that do not
// parse are logged and read as an empty list.
func (d *DB) ReadAll(ctx context.Context, key string) ([]json.RawMessage, error) {
	opsTotal.WithLabelValues("read").Inc()
	raw, ok, err := getRaw(ctx, d.sql, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []json.RawMessage{}, nil
	}
	list := asList(key, raw)
	items := gjson.Parse(list).Array()
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		out = append(out, json.RawMessage(it.Raw))
	}
	return out, nil
}

// Append pushes value onto the list at key.
func (d *DB) Append(ctx context.Context, key string, value interface{}) error {
	opsTotal.WithLabelValues("append").Inc()
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	raw, ok, err := getRaw(ctx, tx, key)
	if err != nil {
		return err
	}
	list := "[]"
	if ok {
		list = asList(key, raw)
	}
	updated, err := sjson.SetRaw(list, "-1", string(b))
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", key, err)
	}
	if err := putRaw(ctx, tx, key, updated); err != nil {
		return err
	}
	return tx.Commit()
}

// Overwrite replaces the value at key with list.
func (d *DB) Overwrite(ctx context.Context, key string, list interface{}) error {
	opsTotal.WithLabelValues("overwrite").Inc()
	b, err := encodeList(key, list)
	if err != nil {
		return err
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := putRaw(ctx, tx, key, string(b)); err != nil {
		return err
	}
	return tx.Commit()
}

// Update runs a read-modify-write cycle on key inside one transaction. fn
// receives the current list and returns the replacement.
func (d *DB) Update(ctx context.Context, key string, fn func([]json.RawMessage) (interface{}, error)) error {
	opsTotal.WithLabelValues("update").Inc()
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	raw, ok, err := getRaw(ctx, tx, key)
	if err != nil {
		return err
	}
	list := "[]"
	if ok {
		list = asList(key, raw)
	}
	items := gjson.Parse(list).Array()
	current := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		current = append(current, json.RawMessage(it.Raw))
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	b, err := encodeList(key, next)
	if err != nil {
		return err
	}
	if err := putRaw(ctx, tx, key, string(b)); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveKey deletes one namespace.
func (d *DB) RemoveKey(ctx context.Context, key string) error {
	opsTotal.WithLabelValues("remove").Inc()
	if _, err := d.sql.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// ClearAll deletes every key.
func (d *DB) ClearAll(ctx context.Context) error {
	opsTotal.WithLabelValues("clear").Inc()
	if _, err := d.sql.ExecContext(ctx, "DELETE FROM kv"); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// Keys returns every stored key in order.
func (d *DB) Keys(ctx context.Context) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// asList coerces a stored value into a JSON array string.
func asList(key, raw string) string {
	if !gjson.Valid(raw) {
		utils.Log.WithField("key", key).Warn("Stored value is not valid JSON, reading it as an empty list")
		return "[]"
	}
	res := gjson.Parse(raw)
	if isEmptyValue(res) {
		return "[]"
	}
	if res.IsArray() {
		return strings.TrimSpace(raw)
	}
	utils.Log.WithField("key", key).Warn("Stored value is not a list, wrapping it")
	return "[" + res.Raw + "]"
}

// isEmptyValue matches the values an absent key is indistinguishable from:
// null, false, 0 and "".
func isEmptyValue(res gjson.Result) bool {
	switch res.Type {
	case gjson.Null, gjson.False:
		return true
	case gjson.Number:
		return res.Num == 0
	case gjson.String:
		return res.Str == ""
	}
	return false
}

// encodeList marshals list without HTML escaping, so records read back from
// the store are written again byte for byte.
func encodeList(key string, list interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(list); err != nil {
		return nil, fmt.Errorf("failed to encode list for %s: %w", key, err)
	}
	b := bytes.TrimRight(buf.Bytes(), "\n")
	if string(b) == "null" {
		return []byte("[]"), nil
	}
	if !gjson.ParseBytes(b).IsArray() {
		return nil, fmt.Errorf("value for %s is not a list", key)
	}
	return b, nil
}
