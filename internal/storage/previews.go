/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	applog "ethmillion/internal/log"
)

// DefaultPreviewMaxBytes caps the preview store before LRU eviction kicks in.
const DefaultPreviewMaxBytes int64 = 256 * 1024 * 1024

// PreviewStore caches fetched block image bytes keyed by their reference.
// It satisfies imagecache.Store and is safe for concurrent use.
type PreviewStore struct {
	db       *sql.DB
	path     string
	maxBytes int64
	log      *slog.Logger
}

// PreviewOption configures a PreviewStore.
type PreviewOption func(*PreviewStore)

// WithMaxBytes sets the eviction cap. Values <= 0 disable eviction.
func WithMaxBytes(n int64) PreviewOption { return func(s *PreviewStore) { s.maxBytes = n } }

// OpenPreviewStore opens or creates the preview store at path.
func OpenPreviewStore(path string, opts ...PreviewOption) (*PreviewStore, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	s := &PreviewStore{
		db:       db,
		path:     path,
		maxBytes: DefaultPreviewMaxBytes,
		log:      applog.WithComponent("storage").With(slog.String("store", "previews")),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Path returns the database file path.
func (s *PreviewStore) Path() string { return s.path }

// Close releases the underlying database.
func (s *PreviewStore) Close() error { return s.db.Close() }

// GetPreview returns the cached bytes for ref and marks the entry as recently used.
func (s *PreviewStore) GetPreview(ref string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM previews WHERE ref=?`, ref).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query preview: %w", err)
	}
	// touch
	_, _ = s.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE ref=?`, time.Now().UnixNano(), ref)
	return blob, true, nil
}

// PutPreview upserts the bytes for ref and enforces the size cap via LRU eviction.
func (s *PreviewStore) PutPreview(ref string, data []byte) error {
	if ref == "" {
		return errors.New("preview ref is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	now := time.Now().UnixNano()
	_, err := s.db.ExecContext(ctx, `INSERT INTO previews(ref,data,size,updated_at,last_access)
		VALUES(?,?,?,?,?)
		ON CONFLICT(ref) DO UPDATE SET data=excluded.data, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		ref, data, len(data), time.Now().UTC().Format(time.RFC3339), now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if s.maxBytes > 0 {
		n, err := s.evictToFit(ctx, s.maxBytes)
		if err != nil {
			return err
		}
		if n > 0 {
			s.log.Debug("previews evicted", slog.Int("count", n))
		}
	}
	return nil
}

// TotalBytes returns the total size of all cached previews.
func (s *PreviewStore) TotalBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum previews size: %w", err)
	}
	return total, nil
}

// evictToFit deletes least-recently-used rows until the total size is <= capBytes.
func (s *PreviewStore) evictToFit(ctx context.Context, capBytes int64) (int, error) {
	total, err := s.TotalBytes(ctx)
	if err != nil {
		return 0, err
	}
	if total <= capBytes {
		return 0, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT ref, size FROM previews ORDER BY COALESCE(last_access,0) ASC, rowid ASC`)
	if err != nil {
		return 0, fmt.Errorf("select victims: %w", err)
	}
	var victims []any
	cur := total
	for rows.Next() && cur > capBytes {
		var ref string
		var sz int64
		if err := rows.Scan(&ref, &sz); err != nil {
			_ = rows.Close()
			return 0, err
		}
		victims = append(victims, ref)
		cur -= sz
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, err
	}
	// Important: close the rows cursor before attempting to write
	if err := rows.Close(); err != nil {
		return 0, err
	}
	for _, v := range victims {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM previews WHERE ref=?`, v); err != nil {
			return 0, fmt.Errorf("evict delete: %w", err)
		}
	}
	return len(victims), nil
}
