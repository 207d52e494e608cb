/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"

	"ethmillion/internal/domain"
)

// Quantizer snaps world coordinates onto the purchase grid and keeps them
// inside the canvas.
type Quantizer struct {
	Grid    float64
	MinSize float64
	Bounds  domain.Bounds
}

// Snap rounds v down to the enclosing grid line.
func (q Quantizer) Snap(v float64) float64 {
	return math.Floor(v/q.Grid) * q.Grid
}

// Clamp keeps p inside [0, Width] x [0, Height].
func (q Quantizer) Clamp(p domain.Point) domain.Point {
	return domain.Point{
		X: Clamp(p.X, 0, q.Bounds.Width),
		Y: Clamp(p.Y, 0, q.Bounds.Height),
	}
}

// Anchor returns the grid-aligned, clamped start corner for a press at world point p.
func (q Quantizer) Anchor(p domain.Point) domain.Point {
	return q.Clamp(domain.Point{X: q.Snap(p.X), Y: q.Snap(p.Y)})
}

// InitialCorner is the moving corner right after a press: one minimum size
// away from the anchor on both axes, clamped.
func (q Quantizer) InitialCorner(anchor domain.Point) domain.Point {
	return q.Clamp(domain.Point{X: anchor.X + q.MinSize, Y: anchor.Y + q.MinSize})
}

// Corner computes the moving corner for a pointer at world point p while the
// anchor stays fixed. Each axis is snapped, pushed out to at least MinSize
// from the anchor and then clamped. Clamping runs last, so a selection at the
// canvas edge can end up smaller than MinSize.
func (q Quantizer) Corner(anchor, p domain.Point) domain.Point {
	return q.Clamp(domain.Point{
		X: q.push(anchor.X, q.Snap(p.X)),
		Y: q.push(anchor.Y, q.Snap(p.Y)),
	})
}

func (q Quantizer) push(fixed, target float64) float64 {
	if math.Abs(target-fixed) >= q.MinSize {
		return target
	}
	if target >= fixed {
		return fixed + q.MinSize
	}
	return fixed - q.MinSize
}
