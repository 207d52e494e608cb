/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package imagecache

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	applog "ethmillion/internal/log"
)

// Fetcher resolves an image reference to its encoded bytes.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, ref string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, ref string) ([]byte, error) { return f(ctx, ref) }

var ErrUnsupportedRef = errors.New("unsupported image reference")

// maxImageBytes caps remote and local reads.
const maxImageBytes = 16 << 20

// DataURL decodes inline data:[<mime>][;base64],<payload> references, which
// is how uploaded images are stored on blocks.
func DataURL(_ context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "data:") {
		return nil, ErrUnsupportedRef
	}
	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data url")
	}
	meta, payload := ref[len("data:"):comma], ref[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data url payload: %w", err)
		}
		return b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data url payload: %w", err)
	}
	return []byte(s), nil
}

// HTTP fetches http(s) references with the given client.
type HTTP struct {
	Client *http.Client
}

func (h HTTP) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	cl := h.Client
	if cl == nil {
		cl = http.DefaultClient
	}
	resp, err := cl.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}
	return readCapped(resp.Body)
}

// File reads file:// URLs and plain paths.
func File(_ context.Context, ref string) ([]byte, error) {
	path := strings.TrimPrefix(ref, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCapped(f)
}

func readCapped(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return b, nil
}

// Router dispatches on the reference scheme: data:, http(s) and file
// paths. Empty fields fall back to the built-in fetchers.
type Router struct {
	Data   Fetcher
	Remote Fetcher
	Local  Fetcher
}

func (r Router) Fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return pick(r.Data, FetcherFunc(DataURL)).Fetch(ctx, ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return pick(r.Remote, HTTP{}).Fetch(ctx, ref)
	case strings.Contains(ref, "://") && !strings.HasPrefix(ref, "file://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, shortRef(ref))
	default:
		return pick(r.Local, FetcherFunc(File)).Fetch(ctx, ref)
	}
}

func pick(f, def Fetcher) Fetcher {
	if f != nil {
		return f
	}
	return def
}

// Store is a persistent byte cache keyed by reference.
type Store interface {
	GetPreview(ref string) ([]byte, bool, error)
	PutPreview(ref string, data []byte) error
}

// Stored consults Store before Next and fills it after a successful fetch.
// data: URLs carry their own bytes and skip the store. Store failures are
// logged and never fail the fetch.
type Stored struct {
	Store Store
	Next  Fetcher
	Log   *slog.Logger // nil uses the imagecache component logger
}

func (s Stored) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if s.Store == nil || strings.HasPrefix(ref, "data:") {
		return s.Next.Fetch(ctx, ref)
	}
	b, ok, err := s.Store.GetPreview(ref)
	if err != nil {
		s.logger().Warn("read preview failed", slog.String("ref", shortRef(ref)), slog.Any("err", err))
	} else if ok {
		return b, nil
	}
	b, err = s.Next.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.Store.PutPreview(ref, b); err != nil {
		s.logger().Warn("store preview failed", slog.String("ref", shortRef(ref)), slog.Any("err", err))
	}
	return b, nil
}

func (s Stored) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return applog.WithComponent("imagecache")
}
