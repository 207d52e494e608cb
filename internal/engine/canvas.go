/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package engine is the interactive wall canvas. It owns one camera, one
// selection machine and one image cache, routes pointer, wheel and touch
// input to them and renders the result on request.
package engine

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"ethmillion/internal/camera"
	"ethmillion/internal/domain"
	"ethmillion/internal/geom"
	"ethmillion/internal/imagecache"
	applog "ethmillion/internal/log"
	"ethmillion/internal/render"
	"ethmillion/internal/selection"
)

// Config is fixed at construction.
type Config struct {
	Bounds      domain.Bounds
	GridSize    float64
	MinSize     float64
	Camera      camera.Limits
	Render      render.Options
	PanModifier Modifier
}

func DefaultConfig() Config {
	b := domain.Bounds{Width: 1080, Height: 1920}
	ro := render.DefaultOptions()
	ro.Bounds = b
	return Config{
		Bounds:      b,
		GridSize:    10,
		MinSize:     10,
		Camera:      camera.DefaultLimits(),
		Render:      ro,
		PanModifier: ModAlt,
	}
}

type Option func(*Canvas)

func WithLogger(l *slog.Logger) Option { return func(c *Canvas) { c.log = l } }

// WithImages attaches an image cache; its load notifications become redraws.
func WithImages(ic *imagecache.Cache) Option { return func(c *Canvas) { c.images = ic } }

// Canvas is not safe for concurrent use, except that redraw requests from
// image loads may arrive on other goroutines (see OnRedraw).
type Canvas struct {
	cfg    Config
	cam    *camera.Controller
	sel    *selection.Machine
	rend   *render.Renderer
	images *imagecache.Cache
	blocks []domain.CommittedBlock
	mode   Mode
	log    *slog.Logger

	cbMu        sync.Mutex
	onSelection func(*domain.Selection)
	onRedraw    func()
}

func New(cfg Config, opts ...Option) *Canvas {
	c := &Canvas{
		cfg: cfg,
		cam: camera.New(cfg.Bounds, cfg.Camera),
		sel: selection.New(geom.Quantizer{Grid: cfg.GridSize, MinSize: cfg.MinSize, Bounds: cfg.Bounds}),
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = applog.WithComponent("canvas")
	}
	var src render.Images
	if c.images != nil {
		src = c.images
		c.images.OnLoad(func(string) { c.redraw() })
	}
	c.rend = render.New(cfg.Render, src)
	return c
}

// OnSelectionChange registers the selection listener. It receives a copy of
// the selection after every transition, or nil when it is cleared.
func (c *Canvas) OnSelectionChange(fn func(*domain.Selection)) {
	c.cbMu.Lock()
	c.onSelection = fn
	c.cbMu.Unlock()
}

// OnRedraw registers the redraw listener. It is called on the input goroutine
// for input-driven changes and on a loader goroutine when an image arrives.
func (c *Canvas) OnRedraw(fn func()) {
	c.cbMu.Lock()
	c.onRedraw = fn
	c.cbMu.Unlock()
}

func (c *Canvas) redraw() {
	c.cbMu.Lock()
	fn := c.onRedraw
	c.cbMu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Canvas) emitSelection() {
	c.cbMu.Lock()
	fn := c.onSelection
	c.cbMu.Unlock()
	if fn == nil {
		return
	}
	if s, ok := c.sel.Selection(); ok {
		fn(&s)
		return
	}
	fn(nil)
}

func (c *Canvas) Mode() Mode { return c.mode }

func (c *Canvas) Camera() domain.Camera { return c.cam.Camera() }

func (c *Canvas) SetCamera(cam domain.Camera) {
	c.cam.SetCamera(cam)
	c.redraw()
}

// Fit re-centers the whole canvas in the viewport.
func (c *Canvas) Fit() {
	c.cam.Fit()
	c.redraw()
}

func (c *Canvas) Blocks() []domain.CommittedBlock { return c.blocks }

// BlockAt returns the committed block under a viewport point.
func (c *Canvas) BlockAt(screen domain.Point) (domain.CommittedBlock, bool) {
	i, ok := geom.BlockAt(geom.ScreenToWorld(screen, c.cam.Camera()), c.blocks)
	if !ok {
		return domain.CommittedBlock{}, false
	}
	return c.blocks[i], true
}

// Selection returns a copy of the current selection, or nil.
func (c *Canvas) Selection() *domain.Selection {
	if s, ok := c.sel.Selection(); ok {
		return &s
	}
	return nil
}

// SetBlocks replaces the committed blocks. The slice is only read.
func (c *Canvas) SetBlocks(blocks []domain.CommittedBlock) {
	c.blocks = blocks
	if c.sel.SetBlocks(blocks) {
		c.emitSelection()
	}
	c.redraw()
}

// ClearSelection drops the selection and cancels an in-progress drag.
func (c *Canvas) ClearSelection() {
	if c.mode == ModeSelecting {
		c.mode = ModeIdle
	}
	if c.sel.Clear() {
		c.emitSelection()
		c.redraw()
	}
}

// CommitSelection hands over a frozen selection and returns to idle.
func (c *Canvas) CommitSelection() (domain.Selection, bool) {
	s, ok := c.sel.Commit()
	if ok {
		c.emitSelection()
		c.redraw()
	}
	return s, ok
}

// Resize records the viewport size in pixels.
func (c *Canvas) Resize(w, h float64) {
	if c.cam.Resize(w, h) {
		c.redraw()
	}
}

// Pointer routes a mouse or pen event.
func (c *Canvas) Pointer(ev PointerEvent) {
	switch ev.Kind {
	case PointerDown:
		c.pointerDown(ev)
	case PointerMove:
		switch c.mode {
		case ModePanning:
			if c.cam.DragPan(ev.Pos) {
				c.redraw()
			}
		case ModeSelecting:
			if c.sel.Update(geom.ScreenToWorld(ev.Pos, c.cam.Camera())) {
				c.emitSelection()
				c.redraw()
			}
		}
	case PointerUp, PointerLeave:
		c.endGesture()
	}
}

func (c *Canvas) isPan(ev PointerEvent) bool {
	switch ev.Button {
	case ButtonSecondary, ButtonTertiary:
		return true
	case ButtonPrimary:
		return c.cfg.PanModifier != 0 && ev.Mods&c.cfg.PanModifier != 0
	}
	return false
}

func (c *Canvas) pointerDown(ev PointerEvent) {
	if c.mode != ModeIdle {
		return
	}
	if c.isPan(ev) {
		c.mode = ModePanning
		c.cam.StartPan(ev.Pos)
		return
	}
	if ev.Button != ButtonPrimary {
		return
	}
	world := geom.ScreenToWorld(ev.Pos, c.cam.Camera())
	if !c.sel.Begin(world) {
		c.log.Debug("press inside committed block ignored", slog.Float64("x", world.X), slog.Float64("y", world.Y))
		return
	}
	c.mode = ModeSelecting
	c.emitSelection()
	c.redraw()
}

func (c *Canvas) endGesture() {
	switch c.mode {
	case ModePanning:
		c.cam.EndPan()
	case ModeSelecting:
		if c.sel.End() {
			if s, ok := c.sel.Selection(); ok {
				r := s.Normalize()
				c.log.Debug("selection frozen",
					slog.Float64("x", r.X), slog.Float64("y", r.Y),
					slog.Float64("w", r.W), slog.Float64("h", r.H),
					slog.Bool("overlapping", s.Overlapping))
			}
			c.emitSelection()
			c.redraw()
		}
	}
	c.mode = ModeIdle
}

// Wheel zooms around the pointer.
func (c *Canvas) Wheel(ev WheelEvent) {
	if c.cam.Wheel(ev.DeltaY, ev.Pos) {
		c.redraw()
	}
}

// Touch routes a touch event: one contact pans, two contacts pinch.
// Touch never starts a selection.
func (c *Canvas) Touch(ev TouchEvent) {
	switch ev.Kind {
	case TouchStart, TouchMove:
		if c.mode == ModeSelecting {
			return
		}
		if len(ev.Touches) > 0 {
			c.mode = ModePanning
		}
		if c.cam.Touch(ev.Touches) {
			c.redraw()
		}
	case TouchEnd:
		if c.mode == ModeSelecting {
			return
		}
		c.cam.TouchEnd(ev.Touches)
		if len(ev.Touches) == 0 {
			c.mode = ModeIdle
		}
	}
}

// Render draws the current state into dst, whose bounds are the viewport.
func (c *Canvas) Render(dst *image.RGBA) render.Frame {
	return c.rend.Draw(dst, render.Scene{
		Camera:    c.cam.Camera(),
		Blocks:    c.blocks,
		Selection: c.Selection(),
	})
}

// Snapshot is a one-line state summary for crash reports.
func (c *Canvas) Snapshot() string {
	cam := c.cam.Camera()
	s := fmt.Sprintf("mode=%s scale=%.4f offset=(%.1f,%.1f) blocks=%d", c.mode, cam.Scale, cam.OffsetX, cam.OffsetY, len(c.blocks))
	if sel := c.Selection(); sel != nil {
		r := sel.Normalize()
		s += fmt.Sprintf(" selection=%gx%g@(%g,%g) overlapping=%v", r.W, r.H, r.X, r.Y, sel.Overlapping)
	}
	return s
}
