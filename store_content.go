package quillpress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// --- Pages ---

// SavePage creates or overwrites the JSON document stored under pageID.
func (s *Store) SavePage(ctx context.Context, user *User, pageID string, data json.RawMessage) error {
	if user == nil {
		return ErrNotAuthorized
	}
	if !json.Valid(data) {
		return ErrInvalidPage
	}
	_, err := s.db.ExecContext(ctx, s.bind(`INSERT INTO pages (page_id, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT (page_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`),
		pageID, string(data), formatTime(s.clock()))
	if err != nil {
		return fmt.Errorf("save page: %w", err)
	}
	return nil
}

// GetPage returns the page stored under pageID.
func (s *Store) GetPage(ctx context.Context, pageID string) (Page, error) {
	var data, updated string
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT data, updated_at FROM pages WHERE page_id = ? LIMIT 1`), pageID).
		Scan(&data, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, ErrNotFound
	}
	if err != nil {
		return Page{}, fmt.Errorf("get page: %w", err)
	}
	t, err := parseTime(updated)
	if err != nil {
		return Page{}, err
	}
	return Page{ID: pageID, Data: json.RawMessage(data), UpdatedAt: t}, nil
}

// LoadPage decodes the page stored under pageID into v. It reports false
// when the page does not exist.
func (s *Store) LoadPage(ctx context.Context, pageID string, v any) (bool, error) {
	p, err := s.GetPage(ctx, pageID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(p.Data, v); err != nil {
		return false, fmt.Errorf("decode page %q: %w", pageID, err)
	}
	return true, nil
}

// --- Counters ---

// IncrementCounter bumps the counter and returns its new value. A counter
// that does not exist yet starts at 1.
func (s *Store) IncrementCounter(ctx context.Context, counterID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, s.bind(`INSERT INTO counters (counter_id, count) VALUES (?, 1)
ON CONFLICT (counter_id) DO UPDATE SET count = counters.count + 1
RETURNING count`), counterID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment counter: %w", err)
	}
	return count, nil
}

// --- Assets ---

// StoreAsset creates or overwrites an asset. Size is taken from the payload
// and UpdatedAt defaults to now.
func (s *Store) StoreAsset(ctx context.Context, a Asset) error {
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = s.clock()
	}
	if a.Data == nil {
		a.Data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, s.bind(`INSERT INTO assets (asset_id, mime_type, updated_at, size, data) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (asset_id) DO UPDATE SET mime_type = excluded.mime_type, updated_at = excluded.updated_at, size = excluded.size, data = excluded.data`),
		a.ID, a.MimeType, formatTime(a.UpdatedAt), int64(len(a.Data)), a.Data)
	if err != nil {
		return fmt.Errorf("store asset: %w", err)
	}
	return nil
}

// GetAsset returns an asset with its payload.
func (s *Store) GetAsset(ctx context.Context, assetID string) (Asset, error) {
	var a Asset
	var updated string
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT asset_id, mime_type, updated_at, size, data FROM assets WHERE asset_id = ? LIMIT 1`), assetID).
		Scan(&a.ID, &a.MimeType, &updated, &a.Size, &a.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Asset{}, ErrNotFound
	}
	if err != nil {
		return Asset{}, fmt.Errorf("get asset: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// ListAssets returns asset metadata without payloads, newest first.
func (s *Store) ListAssets(ctx context.Context, user *User) ([]Asset, error) {
	if user == nil {
		return nil, ErrNotAuthorized
	}
	rows, err := s.db.QueryContext(ctx, `SELECT asset_id, mime_type, updated_at, size FROM assets ORDER BY updated_at DESC, asset_id`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	assets := []Asset{}
	for rows.Next() {
		var a Asset
		var updated string
		if err := rows.Scan(&a.ID, &a.MimeType, &updated, &a.Size); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		if a.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

// DeleteAsset removes an asset and reports whether it existed.
func (s *Store) DeleteAsset(ctx context.Context, user *User, assetID string) (bool, error) {
	if user == nil {
		return false, ErrNotAuthorized
	}
	res, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM assets WHERE asset_id = ?`), assetID)
	if err != nil {
		return false, fmt.Errorf("delete asset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete asset: %w", err)
	}
	return n > 0, nil
}
