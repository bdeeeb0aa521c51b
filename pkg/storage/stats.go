package storage

import (
	"context"

	"github.com/tidwall/gjson"
)

type KeyStats struct {
	Key     string
	Records int
	Bytes   int
}

// GetStats reports how many records each key holds.
func (d *DB) GetStats(ctx context.Context) ([]KeyStats, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT key, value FROM kv ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []KeyStats
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		stats = append(stats, KeyStats{
			Key:     key,
			Records: len(gjson.Parse(asList(key, value)).Array()),
			Bytes:   len(value),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
