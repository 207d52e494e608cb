/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render paints the wall into an RGBA frame: canvas background and
// border, the grid when zoomed in, committed blocks with their images and
// labels, and the live selection on top.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"ethmillion/internal/domain"
	"ethmillion/internal/geom"
)

type Palette struct {
	Viewport      color.NRGBA
	Background    color.NRGBA
	Border        color.NRGBA
	Grid          color.NRGBA
	Block         color.NRGBA // used when a block color does not parse
	SelectionFill color.NRGBA
	SelectionLine color.NRGBA
	OverlapFill   color.NRGBA
	OverlapLine   color.NRGBA
	Text          color.NRGBA
}

func DefaultPalette() Palette {
	return Palette{
		Viewport:      domain.MustColor("#020617"),
		Background:    domain.MustColor("#0f172a"),
		Border:        domain.MustColor("#334155"),
		Grid:          domain.MustColor("#1e293b"),
		Block:         domain.MustColor("#3b82f6"),
		SelectionFill: domain.MustColor("rgba(59,130,246,0.4)"),
		SelectionLine: domain.MustColor("#3b82f6"),
		OverlapFill:   domain.MustColor("rgba(239,68,68,0.4)"),
		OverlapLine:   domain.MustColor("#ef4444"),
		Text:          domain.MustColor("white"),
	}
}

// Thresholds are the camera scales above which optional layers appear.
type Thresholds struct {
	Grid      float64
	Label     float64
	Dimension float64
}

type Options struct {
	Bounds     domain.Bounds
	GridSize   float64
	Palette    Palette
	Thresholds Thresholds

	// screen pixel widths
	BorderWidth    float64
	GridWidth      float64
	SelectionWidth float64

	DimensionPx     float64 // dimension label font size
	DimensionOffset float64 // baseline distance below the selection
	MinLabelSize    float64 // smallest block label, world units
	LabelDivisor    float64 // block label size is height/LabelDivisor
}

func DefaultOptions() Options {
	return Options{
		Bounds:          domain.Bounds{Width: 1080, Height: 1920},
		GridSize:        10,
		Palette:         DefaultPalette(),
		Thresholds:      Thresholds{Grid: 4, Label: 0.3, Dimension: 0.8},
		BorderWidth:     1,
		GridWidth:       0.5,
		SelectionWidth:  2,
		DimensionPx:     12,
		DimensionOffset: 15,
		MinLabelSize:    8,
		LabelDivisor:    5,
	}
}

// Images supplies decoded block images. A false result means "not yet".
type Images interface {
	Image(ref string) (image.Image, bool)
}

// Scene is everything one frame depends on.
type Scene struct {
	Camera    domain.Camera
	Blocks    []domain.CommittedBlock
	Selection *domain.Selection
}

// Frame summarizes what a Draw call put on screen.
type Frame struct {
	Grid      bool
	GridLines int
	Blocks    int
	Images    int
	Labels    int
	Selection bool
	Dimension bool
}

type Renderer struct {
	opt    Options
	images Images
	faces  *faceCache
}

// New creates a renderer. images may be nil, in which case blocks are drawn
// with their fill color only.
func New(opt Options, images Images) *Renderer {
	return &Renderer{opt: opt, images: images, faces: newFaceCache()}
}

func (r *Renderer) Options() Options { return r.opt }

// Draw paints the scene into dst. dst's bounds are the viewport, with the
// origin at the viewport's top-left corner.
func (r *Renderer) Draw(dst *image.RGBA, s Scene) Frame {
	var f Frame
	pal := r.opt.Palette
	fillRect(dst, dst.Bounds(), pal.Viewport)

	cam := s.Camera
	if cam.Scale <= 0 {
		return f
	}
	canvas := geom.RectToScreen(r.opt.Bounds.Rect(), cam)
	fillRect(dst, pixelRect(canvas), pal.Background)
	strokeRect(dst, canvas, r.opt.BorderWidth, pal.Border)

	if cam.Scale > r.opt.Thresholds.Grid {
		f.Grid = true
		f.GridLines = r.drawGrid(dst, cam)
	}

	view := geom.VisibleWorld(cam, float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy()))
	for _, b := range s.Blocks {
		if !geom.Overlaps(b.Rect(), view) {
			continue
		}
		r.drawBlock(dst, b, cam, &f)
	}

	if s.Selection != nil {
		r.drawSelection(dst, *s.Selection, cam, &f)
	}
	return f
}

func (r *Renderer) drawGrid(dst *image.RGBA, cam domain.Camera) int {
	g := r.opt.GridSize
	if g <= 0 {
		return 0
	}
	b := r.opt.Bounds
	view := geom.VisibleWorld(cam, float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy()))
	col := hairline(r.opt.Palette.Grid, r.opt.GridWidth)
	top, bottom := round(cam.OffsetY), round(b.Height*cam.Scale+cam.OffsetY)
	left, right := round(cam.OffsetX), round(b.Width*cam.Scale+cam.OffsetX)

	n := 0
	xEnd := math.Min(b.Width, view.X+view.W)
	for k := math.Max(0, math.Ceil(view.X/g)); k*g <= xEnd; k++ {
		sx := round(k*g*cam.Scale + cam.OffsetX)
		fillRect(dst, image.Rect(sx, top, sx+1, bottom), col)
		n++
	}
	yEnd := math.Min(b.Height, view.Y+view.H)
	for k := math.Max(0, math.Ceil(view.Y/g)); k*g <= yEnd; k++ {
		sy := round(k*g*cam.Scale + cam.OffsetY)
		fillRect(dst, image.Rect(left, sy, right, sy+1), col)
		n++
	}
	return n
}

func (r *Renderer) drawBlock(dst *image.RGBA, b domain.CommittedBlock, cam domain.Camera, f *Frame) {
	f.Blocks++
	sr := geom.RectToScreen(b.Rect(), cam)
	pr := pixelRect(sr)

	c, err := domain.ParseColor(b.Color)
	if err != nil {
		c = r.opt.Palette.Block
	}
	fillRect(dst, pr, c)

	if b.ImageURL != "" && r.images != nil {
		if img, ok := r.images.Image(b.ImageURL); ok && !pr.Empty() {
			xdraw.ApproxBiLinear.Scale(dst, pr, img, img.Bounds(), draw.Over, nil)
			f.Images++
		}
	}

	if b.Text != "" && cam.Scale > r.opt.Thresholds.Label {
		size := math.Max(r.opt.MinLabelSize, b.Height/r.opt.LabelDivisor) * cam.Scale
		face := r.faces.face(faceBold, size)
		drawCentered(dst, face, b.Text, sr.X+sr.W/2, sr.Y+sr.H/2, true, r.opt.Palette.Text)
		f.Labels++
	}
}

func (r *Renderer) drawSelection(dst *image.RGBA, s domain.Selection, cam domain.Camera, f *Frame) {
	pal := r.opt.Palette
	fill, line := pal.SelectionFill, pal.SelectionLine
	if s.Overlapping {
		fill, line = pal.OverlapFill, pal.OverlapLine
	}
	rect := s.Normalize()
	sr := geom.RectToScreen(rect, cam)
	fillRect(dst, pixelRect(sr), fill)
	strokeRect(dst, sr, r.opt.SelectionWidth, line)
	f.Selection = true

	if cam.Scale > r.opt.Thresholds.Dimension {
		face := r.faces.face(faceMono, r.opt.DimensionPx)
		label := fmt.Sprintf("%gx%g", rect.W, rect.H)
		drawCentered(dst, face, label, sr.X+sr.W/2, sr.Y+sr.H+r.opt.DimensionOffset, false, pal.Text)
		f.Dimension = true
	}
}
