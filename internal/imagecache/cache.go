/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package imagecache loads block images in the background and keeps them for
// the lifetime of a canvas. Callers get a handle immediately; the handle turns
// drawable once its bytes are fetched and decoded, and the cache then fires a
// single load notification for that reference.
package imagecache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	applog "ethmillion/internal/log"
)

type Status int

const (
	Pending Status = iota
	Loaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Handle is the cache entry for one image reference.
type Handle struct {
	c      *Cache
	ref    string
	status Status
	img    image.Image
	err    error
}

func (h *Handle) Ref() string { return h.ref }

func (h *Handle) Status() Status {
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	return h.status
}

// Image returns the decoded image once the handle is Loaded.
func (h *Handle) Image() (image.Image, bool) {
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	if h.status != Loaded {
		return nil, false
	}
	return h.img, true
}

func (h *Handle) Err() error {
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	return h.err
}

type Option func(*Cache)

func WithLogger(l *slog.Logger) Option { return func(c *Cache) { c.log = l } }

// WithTimeout bounds a single fetch.
func WithTimeout(d time.Duration) Option { return func(c *Cache) { c.timeout = d } }

// Cache maps image references to handles. Entries are never evicted and
// failed loads are not retried.
type Cache struct {
	mu      sync.RWMutex
	handles map[string]*Handle
	onLoad  func(ref string)

	fetch   Fetcher
	timeout time.Duration
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(f Fetcher, opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		handles: make(map[string]*Handle),
		fetch:   f,
		timeout: 15 * time.Second,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = applog.WithComponent("imagecache")
	}
	return c
}

// OnLoad sets the function called after an image becomes drawable. It runs on
// the loader goroutine; UI callers must hop to their own thread.
func (c *Cache) OnLoad(fn func(ref string)) {
	c.mu.Lock()
	c.onLoad = fn
	c.mu.Unlock()
}

// Get returns the handle for ref, starting a background load on first use.
func (c *Cache) Get(ref string) *Handle {
	c.mu.RLock()
	h, ok := c.handles[ref]
	c.mu.RUnlock()
	if ok {
		return h
	}
	c.mu.Lock()
	if h, ok = c.handles[ref]; ok {
		c.mu.Unlock()
		return h
	}
	h = &Handle{c: c, ref: ref}
	c.handles[ref] = h
	c.wg.Add(1)
	c.mu.Unlock()

	go c.load(h)
	return h
}

// Image is Get(ref).Image(); it satisfies the renderer's image source.
func (c *Cache) Image(ref string) (image.Image, bool) {
	return c.Get(ref).Image()
}

// Len reports the number of known references.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

// Wait blocks until every load started so far has finished.
func (c *Cache) Wait() { c.wg.Wait() }

// Close aborts outstanding fetches and waits for loader goroutines to exit.
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Cache) load(h *Handle) {
	defer c.wg.Done()
	l := applog.WithOperation(c.log, "load")

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	img, err := c.fetchDecode(ctx, h.ref)

	c.mu.Lock()
	if err != nil {
		h.status, h.err = Failed, err
		c.mu.Unlock()
		l.Warn("image load failed", slog.String("ref", shortRef(h.ref)), slog.Any("err", err))
		return
	}
	h.status, h.img = Loaded, img
	fn := c.onLoad
	c.mu.Unlock()

	b := img.Bounds()
	l.Debug("image loaded", slog.String("ref", shortRef(h.ref)), slog.Int("w", b.Dx()), slog.Int("h", b.Dy()))
	if fn != nil {
		fn(h.ref)
	}
}

func (c *Cache) fetchDecode(ctx context.Context, ref string) (image.Image, error) {
	if c.fetch == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}
	data, err := c.fetch.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	c.log.Debug("decoded", slog.String("format", format))
	return img, nil
}

// shortRef keeps data: URLs out of the logs.
func shortRef(ref string) string {
	if len(ref) > 64 {
		return ref[:61] + "..."
	}
	return ref
}
