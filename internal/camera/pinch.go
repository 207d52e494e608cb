/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package camera

import (
	"math"

	"ethmillion/internal/domain"
)

// Touch feeds the current set of contacts after a touch start or move.
// One contact pans; two contacts pinch-zoom around their midpoint with
// factor newDistance/oldDistance. Any change in the number of contacts
// only re-seeds the references so the camera never jumps.
func (c *Controller) Touch(points []domain.Point) bool {
	n := len(points)
	if n != c.touches {
		c.reseed(points)
		return false
	}
	switch n {
	case 1:
		return c.DragPan(points[0])
	case 2:
		d, mid := span(points[0], points[1])
		if c.pinch <= 0 || d <= 0 {
			c.pinch = d
			return false
		}
		factor := d / c.pinch
		c.pinch = d
		return c.ZoomAt(mid, factor)
	}
	return false
}

// TouchEnd is called with the contacts that remain after a lift.
func (c *Controller) TouchEnd(remaining []domain.Point) {
	c.reseed(remaining)
}

func (c *Controller) reseed(points []domain.Point) {
	c.touches = len(points)
	c.pinch = 0
	c.panning = false
	switch len(points) {
	case 1:
		c.StartPan(points[0])
	case 2:
		c.pinch, _ = span(points[0], points[1])
	}
}

func span(a, b domain.Point) (float64, domain.Point) {
	return math.Hypot(b.X-a.X, b.Y-a.Y), domain.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
