/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ethmillion/internal/domain"
	"ethmillion/internal/geom"
	applog "ethmillion/internal/log"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed blocks.schema.json
var blocksSchema []byte

var (
	// ErrSchema is returned when a blocks file does not match the embedded schema.
	ErrSchema = errors.New("blocks file does not match schema")
	// ErrOverlappingBlocks is returned when two committed blocks share area.
	ErrOverlappingBlocks = errors.New("committed blocks overlap")
	// ErrDuplicateID is returned when two blocks carry the same id.
	ErrDuplicateID = errors.New("duplicate block id")
)

// DefaultBlocks returns the genesis block shown before any blocks file exists.
func DefaultBlocks() []domain.CommittedBlock {
	return []domain.CommittedBlock{{
		ID:        "1",
		X:         400,
		Y:         600,
		Width:     200,
		Height:    200,
		OwnerID:   "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		Color:     "#3b82f6",
		Text:      "GENESIS BLOCK",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
}

// LoadBlocks reads the blocks file at path and validates it against the
// embedded schema and the canvas bounds.
func LoadBlocks(path string, bounds domain.Bounds) ([]domain.CommittedBlock, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "load_blocks").With(slog.String("path", path))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blocks: %w", err)
	}
	blocks, err := ParseBlocks(data, bounds)
	if err != nil {
		l.Warn("blocks rejected", slog.Any("err", err))
		return nil, err
	}
	l.Debug("blocks loaded", slog.Int("count", len(blocks)))
	return blocks, nil
}

// ParseBlocks decodes and validates a JSON array of committed blocks.
func ParseBlocks(data []byte, bounds domain.Bounds) ([]domain.CommittedBlock, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(blocksSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate blocks: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
	}
	var blocks []domain.CommittedBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	seen := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		if err := b.Validate(bounds); err != nil {
			return nil, err
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	if i, j, ok := geom.FirstOverlap(blocks); ok {
		return nil, fmt.Errorf("%w: %q and %q", ErrOverlappingBlocks, blocks[i].ID, blocks[j].ID)
	}
	return blocks, nil
}

// SaveBlocks writes blocks as indented JSON. The file is replaced atomically
// via a temp file in the same directory.
func SaveBlocks(path string, blocks []domain.CommittedBlock) error {
	if blocks == nil {
		blocks = []domain.CommittedBlock{}
	}
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode blocks: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create blocks dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := writeFileSync(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write blocks: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace blocks: %w", err)
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
