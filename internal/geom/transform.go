/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the pure math of the wall: the camera transform, grid
// quantization and overlap tests. Nothing here keeps state.
package geom

import "ethmillion/internal/domain"

// WorldToScreen maps a world point through the camera.
func WorldToScreen(p domain.Point, c domain.Camera) domain.Point {
	return domain.Point{X: p.X*c.Scale + c.OffsetX, Y: p.Y*c.Scale + c.OffsetY}
}

// ScreenToWorld is the inverse of WorldToScreen. c.Scale must be > 0.
func ScreenToWorld(p domain.Point, c domain.Camera) domain.Point {
	return domain.Point{X: (p.X - c.OffsetX) / c.Scale, Y: (p.Y - c.OffsetY) / c.Scale}
}

// RectToScreen maps a world rectangle to screen space.
func RectToScreen(r domain.Rect, c domain.Camera) domain.Rect {
	return domain.Rect{
		X: r.X*c.Scale + c.OffsetX,
		Y: r.Y*c.Scale + c.OffsetY,
		W: r.W * c.Scale,
		H: r.H * c.Scale,
	}
}

// VisibleWorld returns the world rectangle covered by a viewport of vw x vh pixels.
func VisibleWorld(c domain.Camera, vw, vh float64) domain.Rect {
	tl := ScreenToWorld(domain.Point{}, c)
	return domain.Rect{X: tl.X, Y: tl.Y, W: vw / c.Scale, H: vh / c.Scale}
}

// ZoomAt scales the camera by factor while keeping the world point under
// anchor fixed on screen. The resulting scale is clamped to [minScale, maxScale].
func ZoomAt(c domain.Camera, anchor domain.Point, factor, minScale, maxScale float64) domain.Camera {
	world := ScreenToWorld(anchor, c)
	scale := Clamp(c.Scale*factor, minScale, maxScale)
	return domain.Camera{
		Scale:   scale,
		OffsetX: anchor.X - world.X*scale,
		OffsetY: anchor.Y - world.Y*scale,
	}
}

// Fit centers a bounds-sized canvas in the viewport, scaled to margin of the
// tightest axis.
func Fit(b domain.Bounds, vw, vh, margin, minScale, maxScale float64) domain.Camera {
	scale := Clamp(min(vw/b.Width, vh/b.Height)*margin, minScale, maxScale)
	return domain.Camera{
		Scale:   scale,
		OffsetX: (vw - b.Width*scale) / 2,
		OffsetY: (vh - b.Height*scale) / 2,
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
