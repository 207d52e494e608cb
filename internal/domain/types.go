/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// This file defines the data model shared by the canvas engine and its collaborators.
// All coordinates are world units unless a field says otherwise.

// Point is an (x, y) pair. Whether it is in world or screen space depends on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle defined by its min corner and size.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) Area() float64   { return r.W * r.H }
func (r Rect) Empty() bool     { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies in the half-open rectangle [X, X+W) x [Y, Y+H).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Bounds is the fixed world size of the wall.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b Bounds) Rect() Rect    { return Rect{W: b.Width, H: b.Height} }
func (b Bounds) Area() float64 { return b.Width * b.Height }

// CommittedBlock is a purchased region of the wall. The engine only reads blocks.
type CommittedBlock struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	OwnerID   string    `json:"owner"`
	Color     string    `json:"color"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	LinkURL   string    `json:"linkUrl,omitempty"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (b CommittedBlock) Rect() Rect { return Rect{X: b.X, Y: b.Y, W: b.Width, H: b.Height} }

var (
	ErrEmptyBlock  = errors.New("block has no area")
	ErrOutOfBounds = errors.New("block exceeds canvas bounds")
)

// Validate checks the geometric invariants of a block against the canvas bounds.
func (b CommittedBlock) Validate(bounds Bounds) error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("block %q: %w", b.ID, ErrEmptyBlock)
	}
	if b.X < 0 || b.Y < 0 || b.X+b.Width > bounds.Width || b.Y+b.Height > bounds.Height {
		return fmt.Errorf("block %q at (%g,%g %gx%g): %w", b.ID, b.X, b.Y, b.Width, b.Height, ErrOutOfBounds)
	}
	if strings.TrimSpace(b.Color) != "" {
		if _, err := ParseColor(b.Color); err != nil {
			return fmt.Errorf("block %q: %w", b.ID, err)
		}
	}
	return nil
}

// Camera is the view transform: screen = world*Scale + Offset.
type Camera struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Selection is the in-progress or frozen rectangle chosen by the user.
// Start is the anchor corner, Current follows the pointer; they are not normalized.
type Selection struct {
	StartX      float64 `json:"startX"`
	StartY      float64 `json:"startY"`
	CurrentX    float64 `json:"currentX"`
	CurrentY    float64 `json:"currentY"`
	Active      bool    `json:"active"`
	Overlapping bool    `json:"overlapping"`
}

// Normalize returns the selection as a rectangle with non-negative size.
func (s Selection) Normalize() Rect {
	return Rect{
		X: min(s.StartX, s.CurrentX),
		Y: min(s.StartY, s.CurrentY),
		W: abs(s.CurrentX - s.StartX),
		H: abs(s.CurrentY - s.StartY),
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
