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
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"ethmillion/internal/domain"
	applog "ethmillion/internal/log"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor save bursts (truncate, write, rename).
const watchDebounce = 150 * time.Millisecond

// WatchBlocks reloads the blocks file whenever it is written or replaced and
// passes each successfully validated set to fn. Invalid files are logged and
// skipped so the caller keeps its last good set. It blocks until ctx is done.
func WatchBlocks(ctx context.Context, path string, bounds domain.Bounds, fn func([]domain.CommittedBlock)) error {
	l := applog.WithOperation(applog.WithComponent("storage"), "watch_blocks").With(slog.String("path", path))
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory; atomic saves replace the file inode.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	name := filepath.Clean(path)

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn("watcher error", slog.Any("err", err))
		case <-timer.C:
			blocks, err := LoadBlocks(path, bounds)
			if err != nil {
				continue
			}
			l.Info("blocks reloaded", slog.Int("count", len(blocks)))
			fn(blocks)
		}
	}
}
