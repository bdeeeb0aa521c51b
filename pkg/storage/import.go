package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Import appends the records in data to key. data may be a JSON array or a
// single record. With replace set the key is overwritten instead.
func (d *DB) Import(ctx context.Context, key string, data []byte, replace bool) (int, error) {
	records, err := parseImport(key, data)
	if err != nil {
		return 0, err
	}
	err = d.importAll(ctx, []string{key}, map[string][]json.RawMessage{key: records}, replace)
	return len(records), err
}

// ImportDump loads a browser localStorage dump: an object mapping keys to
// either JSON text (as localStorage holds it) or already-decoded JSON. Every
// key is parsed before anything is written, and all keys are written in one
// transaction, so a bad dump leaves the store untouched.
func (d *DB) ImportDump(ctx context.Context, data []byte, replace bool) (map[string]int, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("dump is not valid JSON")
	}
	dump := gjson.ParseBytes(data)
	if !dump.IsObject() {
		return nil, fmt.Errorf("dump must be a JSON object of key to value")
	}

	var keys []string
	parsed := map[string][]json.RawMessage{}
	var err error
	dump.ForEach(func(k, v gjson.Result) bool {
		payload := v.Raw
		if v.Type == gjson.String {
			payload = v.Str
		}
		var records []json.RawMessage
		records, err = parseImport(k.String(), []byte(payload))
		if err != nil {
			err = fmt.Errorf("failed to import %s: %w", k.String(), err)
			return false
		}
		if _, seen := parsed[k.String()]; !seen {
			keys = append(keys, k.String())
		}
		parsed[k.String()] = append(parsed[k.String()], records...)
		return true
	})
	if err != nil {
		return nil, err
	}

	if err := d.importAll(ctx, keys, parsed, replace); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(parsed))
	for k, records := range parsed {
		counts[k] = len(records)
	}
	return counts, nil
}

func parseImport(key string, data []byte) ([]json.RawMessage, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("import for %s is not valid JSON", key)
	}
	items := gjson.Parse(asList(key, string(data))).Array()
	records := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		records = append(records, json.RawMessage(it.Raw))
	}
	return records, nil
}

// importAll writes the parsed records of every key in one transaction.
func (d *DB) importAll(ctx context.Context, keys []string, records map[string][]json.RawMessage, replace bool) error {
	opsTotal.WithLabelValues("import").Inc()
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		list := []json.RawMessage{}
		if !replace {
			raw, ok, err := getRaw(ctx, tx, key)
			if err != nil {
				return err
			}
			if ok {
				for _, it := range gjson.Parse(asList(key, raw)).Array() {
					list = append(list, json.RawMessage(it.Raw))
				}
			}
		}
		list = append(list, records[key]...)
		b, err := encodeList(key, list)
		if err != nil {
			return err
		}
		if err := putRaw(ctx, tx, key, string(b)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Dump returns every key with its list, in the shape ImportDump reads back.
func (d *DB) Dump(ctx context.Context) ([]byte, error) {
	keys, err := d.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := "{}"
	for _, k := range keys {
		items, err := d.ReadAll(ctx, k)
		if err != nil {
			return nil, err
		}
		list, err := encodeList(k, items)
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRaw(out, gjsonEscape(k), string(list)); err != nil {
			return nil, fmt.Errorf("failed to dump %s: %w", k, err)
		}
	}
	return []byte(out), nil
}

// gjsonEscape escapes the path characters gjson and sjson treat specially so a
// key is used verbatim.
func gjsonEscape(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
