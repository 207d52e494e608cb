/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package purchase

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"ethmillion/internal/domain"
)

const (
	// MaxTextRunes bounds the overlay message drawn on a block.
	MaxTextRunes = 20
	// DefaultColor is used when the design leaves the color empty.
	DefaultColor = "#3b82f6"
)

var (
	ErrTextTooLong  = errors.New("overlay text too long")
	ErrInvalidLink  = errors.New("link must be an absolute http(s) URL")
	ErrInvalidImage = errors.New("unsupported image reference")
)

// Design is what the buyer paints on their block.
type Design struct {
	Color    string
	Text     string
	ImageURL string
	LinkURL  string
}

// Validate checks the design fields. An empty design is valid.
func (d Design) Validate() error {
	if c := strings.TrimSpace(d.Color); c != "" {
		if _, err := domain.ParseColor(c); err != nil {
			return err
		}
	}
	if n := utf8.RuneCountInString(d.Text); n > MaxTextRunes {
		return fmt.Errorf("%w: %d > %d", ErrTextTooLong, n, MaxTextRunes)
	}
	if l := strings.TrimSpace(d.LinkURL); l != "" {
		u, err := url.Parse(l)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidLink, l)
		}
	}
	if img := strings.TrimSpace(d.ImageURL); img != "" {
		switch {
		case strings.HasPrefix(img, "data:image/"),
			strings.HasPrefix(img, "http://"),
			strings.HasPrefix(img, "https://"),
			strings.HasPrefix(img, "file://"),
			!strings.Contains(img, "://") && !strings.HasPrefix(img, "data:"):
		default:
			return fmt.Errorf("%w: %.40q", ErrInvalidImage, img)
		}
	}
	return nil
}

// color returns the validated color or DefaultColor.
func (d Design) color() string {
	if c := strings.TrimSpace(d.Color); c != "" {
		return c
	}
	return DefaultColor
}
