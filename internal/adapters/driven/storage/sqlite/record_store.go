package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore with one JSON column per record.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// Put stores or replaces the record under collection/id.
func (s *recordStore) Put(ctx context.Context, collection, id string, record map[string]any) error {
	if collection == "" || id == "" {
		return fmt.Errorf("%w: collection and id are required", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, collection, id, string(data))
	return unavailable("saving record", err)
}

// Get retrieves a record.
func (s *recordStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var data string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT data FROM records WHERE collection = ? AND id = ?", collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: record %s/%s", domain.ErrNotFound, collection, id)
	}
	if err != nil {
		return nil, unavailable("reading record", err)
	}
	return decodeRecord(data)
}

// List returns every record in a collection, keyed by ID.
func (s *recordStore) List(ctx context.Context, collection string) (map[string]map[string]any, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, data FROM records WHERE collection = ?", collection)
	if err != nil {
		return nil, unavailable("listing records", err)
	}
	defer rows.Close()

	out := make(map[string]map[string]any)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, unavailable("scanning record", err)
		}
		record, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		out[id] = record
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating records", err)
	}
	return out, nil
}

func decodeRecord(data string) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("unmarshalling record: %w", err)
	}
	return record, nil
}
