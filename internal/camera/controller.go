/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package camera owns the view transform of a canvas and the pan, wheel and
// pinch gestures that change it.
package camera

import (
	"math"

	"ethmillion/internal/domain"
	"ethmillion/internal/geom"
)

// Limits bounds and tunes the camera.
type Limits struct {
	MinZoom     float64
	MaxZoom     float64
	Sensitivity float64 // wheel delta to log-zoom factor
	FitMargin   float64 // fraction of the viewport used by Fit
	PanMargin   float64 // screen pixels of canvas kept visible while panning
}

func DefaultLimits() Limits {
	return Limits{MinZoom: 0.05, MaxZoom: 50, Sensitivity: 0.001, FitMargin: 0.9, PanMargin: 40}
}

// Controller is the camera of one canvas. Not safe for concurrent use.
type Controller struct {
	cam    domain.Camera
	bounds domain.Bounds
	lim    Limits
	vw, vh float64
	fitted bool

	panning bool
	last    domain.Point

	touches int
	pinch   float64
}

func New(bounds domain.Bounds, lim Limits) *Controller {
	return &Controller{bounds: bounds, lim: lim, cam: domain.Camera{Scale: 1}}
}

func (c *Controller) Camera() domain.Camera { return c.cam }

func (c *Controller) Limits() Limits { return c.lim }

// Viewport returns the last known viewport size in pixels.
func (c *Controller) Viewport() (float64, float64) { return c.vw, c.vh }

// SetCamera replaces the camera, clamping scale and offsets.
func (c *Controller) SetCamera(cam domain.Camera) {
	cam.Scale = geom.Clamp(cam.Scale, c.lim.MinZoom, c.lim.MaxZoom)
	c.cam = c.clampOffsets(cam)
}

// Resize records a new viewport size. The first non-empty size fits the
// canvas into view; later resizes leave scale and offset alone.
func (c *Controller) Resize(w, h float64) bool {
	if w == c.vw && h == c.vh {
		return false
	}
	c.vw, c.vh = w, h
	if w <= 0 || h <= 0 {
		return true
	}
	if !c.fitted {
		c.Fit()
		return true
	}
	c.cam = c.clampOffsets(c.cam)
	return true
}

// Fit scales the whole canvas into the viewport and centers it.
func (c *Controller) Fit() {
	if c.vw <= 0 || c.vh <= 0 {
		return
	}
	c.cam = geom.Fit(c.bounds, c.vw, c.vh, c.lim.FitMargin, c.lim.MinZoom, c.lim.MaxZoom)
	c.fitted = true
}

// StartPan records the screen position a pointer pan starts from.
func (c *Controller) StartPan(p domain.Point) {
	c.panning = true
	c.last = p
}

// DragPan moves the camera by the screen delta since the previous position.
func (c *Controller) DragPan(p domain.Point) bool {
	if !c.panning {
		return false
	}
	dx, dy := p.X-c.last.X, p.Y-c.last.Y
	c.last = p
	return c.PanBy(dx, dy)
}

func (c *Controller) EndPan() { c.panning = false }

// PanBy translates the camera by a screen delta. Scale is unchanged.
func (c *Controller) PanBy(dx, dy float64) bool {
	if dx == 0 && dy == 0 {
		return false
	}
	before := c.cam
	c.cam.OffsetX += dx
	c.cam.OffsetY += dy
	c.cam = c.clampOffsets(c.cam)
	return c.cam != before
}

// ZoomAt multiplies the scale by factor, keeping the world point under
// anchor fixed. Offsets are not clamped here so the anchor always holds.
func (c *Controller) ZoomAt(anchor domain.Point, factor float64) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}
	before := c.cam
	c.cam = geom.ZoomAt(c.cam, anchor, factor, c.lim.MinZoom, c.lim.MaxZoom)
	return c.cam != before
}

// Wheel zooms around p. Negative deltaY (wheel up) zooms in. The factor is
// exponential in deltaY so equal and opposite deltas cancel.
func (c *Controller) Wheel(deltaY float64, p domain.Point) bool {
	return c.ZoomAt(p, WheelFactor(deltaY, c.lim.Sensitivity))
}

func WheelFactor(deltaY, sensitivity float64) float64 {
	return math.Exp(-deltaY * sensitivity)
}

func (c *Controller) clampOffsets(cam domain.Camera) domain.Camera {
	if c.vw <= 0 || c.vh <= 0 {
		return cam
	}
	cam.OffsetX = clampAxis(cam.OffsetX, c.bounds.Width*cam.Scale, c.vw, c.lim.PanMargin)
	cam.OffsetY = clampAxis(cam.OffsetY, c.bounds.Height*cam.Scale, c.vh, c.lim.PanMargin)
	return cam
}

// clampAxis keeps at least margin pixels of a span of length extent inside [0, view].
func clampAxis(off, extent, view, margin float64) float64 {
	m := min(margin, extent, view)
	return geom.Clamp(off, m-extent, view-m)
}
