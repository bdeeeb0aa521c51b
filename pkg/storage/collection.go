package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/eccowas/admitgen/internal/utils"
	"github.com/eccowas/admitgen/pkg/admission"
)

// Collection is a typed view over one key. Records are identified by a uuid
// held in the record itself, never by their position. Writes touch only the
// record they address; elements that do not decode are kept as stored.
type Collection[T any] struct {
	db  *DB
	key string
	id  func(*T) *string
}

// decoded is one record plus where it sits in the stored list.
type decoded[T any] struct {
	item  T
	pos   int
	hadID bool
}

// List decodes every record at the key. Elements that do not decode are logged
// and skipped. Records without an id get one and the new ids are written back.
func (c Collection[T]) List(ctx context.Context) ([]T, error) {
	raws, err := c.db.ReadAll(ctx, c.key)
	if err != nil {
		return nil, err
	}
	recs := c.decode(raws, true)

	items := make([]T, 0, len(recs))
	var missing []decoded[T]
	for _, r := range recs {
		if !r.hadID {
			*c.id(&r.item) = uuid.NewString()
			missing = append(missing, r)
		}
		items = append(items, r.item)
	}
	if len(missing) == 0 {
		return items, nil
	}

	err = c.db.Update(ctx, c.key, func(current []json.RawMessage) (interface{}, error) {
		if len(current) != len(raws) {
			// Changed underneath us; leave it for the next read.
			return current, nil
		}
		for _, r := range missing {
			patched, err := sjson.SetBytes(current[r.pos], "id", *c.id(&r.item))
			if err != nil {
				return nil, fmt.Errorf("failed to set id on %s record %d: %w", c.key, r.pos, err)
			}
			current[r.pos] = patched
		}
		return current, nil
	})
	if err != nil {
		return nil, err
	}
	utils.Log.WithField("key", c.key).Infof("Assigned ids to %d stored records", len(missing))
	return items, nil
}

// Add appends item, assigning an id when it has none.
func (c Collection[T]) Add(ctx context.Context, item *T) error {
	if id := c.id(item); *id == "" {
		*id = uuid.NewString()
	}
	return c.db.Append(ctx, c.key, item)
}

// Replace swaps the stored record that has item's id.
func (c Collection[T]) Replace(ctx context.Context, item T) error {
	want := *c.id(&item)
	return c.db.Update(ctx, c.key, func(current []json.RawMessage) (interface{}, error) {
		pos, ok := c.find(current, want)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", admission.ErrNotFound, c.key, want)
		}
		b, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s record: %w", c.key, err)
		}
		current[pos] = b
		return current, nil
	})
}

// Delete removes the record with the given id.
func (c Collection[T]) Delete(ctx context.Context, id string) error {
	return c.db.Update(ctx, c.key, func(current []json.RawMessage) (interface{}, error) {
		pos, ok := c.find(current, id)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", admission.ErrNotFound, c.key, id)
		}
		return append(current[:pos], current[pos+1:]...), nil
	})
}

func (c Collection[T]) find(raws []json.RawMessage, id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for _, r := range c.decode(raws, false) {
		if r.hadID && *c.id(&r.item) == id {
			return r.pos, true
		}
	}
	return 0, false
}

func (c Collection[T]) decode(raws []json.RawMessage, warn bool) []decoded[T] {
	out := make([]decoded[T], 0, len(raws))
	for i, raw := range raws {
		var item T
		if gjson.ParseBytes(raw).Type == gjson.Null {
			continue
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			if warn {
				utils.Log.WithFields(logrus.Fields{
					"key":      c.key,
					"position": i,
				}).Warnf("Skipping malformed record: %v", err)
			}
			continue
		}
		out = append(out, decoded[T]{item: item, pos: i, hadID: *c.id(&item) != ""})
	}
	return out
}
