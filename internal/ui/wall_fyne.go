//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"ethmillion/internal/engine"
)

// WallCanvas shows an engine.Canvas in a raster and forwards pointer and
// wheel input to it. The engine works in raster pixels, so positions are
// scaled by the window's pixel density.
type WallCanvas struct {
	widget.BaseWidget

	eng    *engine.Canvas
	raster *canvas.Raster
	buf    *image.RGBA
	// pxPerUnit is raster pixels per Fyne unit, updated on every draw.
	pxPerUnit float32

	// OnOpenLink is called when a block with a link is double-clicked.
	OnOpenLink func(link string)
}

var (
	_ desktop.Mouseable   = (*WallCanvas)(nil)
	_ desktop.Hoverable   = (*WallCanvas)(nil)
	_ desktop.Cursorable  = (*WallCanvas)(nil)
	_ fyne.Scrollable     = (*WallCanvas)(nil)
	_ fyne.DoubleTappable = (*WallCanvas)(nil)
)

func NewWallCanvas(eng *engine.Canvas) *WallCanvas {
	w := &WallCanvas{eng: eng, pxPerUnit: 1}
	w.raster = canvas.NewRaster(w.draw)
	w.raster.SetMinSize(fyne.NewSize(320, 240))
	eng.OnRedraw(func() { fyne.Do(w.raster.Refresh) })
	w.ExtendBaseWidget(w)
	return w
}

func (w *WallCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(w.raster)
}

func (w *WallCanvas) draw(pw, ph int) image.Image {
	if sz := w.Size(); sz.Width > 0 {
		w.pxPerUnit = float32(pw) / sz.Width
	}
	if w.buf == nil || w.buf.Rect.Dx() != pw || w.buf.Rect.Dy() != ph {
		w.buf = image.NewRGBA(image.Rect(0, 0, pw, ph))
	}
	w.eng.Resize(float64(pw), float64(ph))
	w.eng.Render(w.buf)
	return w.buf
}

func (w *WallCanvas) MouseDown(ev *desktop.MouseEvent) {
	w.eng.Pointer(pointerEvent(engine.PointerDown, ev, w.pxPerUnit))
}

func (w *WallCanvas) MouseUp(ev *desktop.MouseEvent) {
	w.eng.Pointer(pointerEvent(engine.PointerUp, ev, w.pxPerUnit))
}

func (w *WallCanvas) MouseIn(*desktop.MouseEvent) {}

func (w *WallCanvas) MouseMoved(ev *desktop.MouseEvent) {
	w.eng.Pointer(pointerEvent(engine.PointerMove, ev, w.pxPerUnit))
}

// MouseOut freezes an in-progress selection, like a pointer leaving the page.
func (w *WallCanvas) MouseOut() {
	w.eng.Pointer(engine.PointerEvent{Kind: engine.PointerLeave})
}

func (w *WallCanvas) Cursor() desktop.Cursor {
	if w.eng.Mode() == engine.ModePanning {
		return desktop.PointerCursor
	}
	return desktop.CrosshairCursor
}

func (w *WallCanvas) Scrolled(ev *fyne.ScrollEvent) {
	w.eng.Wheel(engine.WheelEvent{DeltaY: wheelDelta(ev.Scrolled.DY), Pos: toPixels(ev.Position, w.pxPerUnit)})
}

func (w *WallCanvas) DoubleTapped(ev *fyne.PointEvent) {
	b, ok := w.eng.BlockAt(toPixels(ev.Position, w.pxPerUnit))
	if !ok || b.LinkURL == "" || w.OnOpenLink == nil {
		return
	}
	w.OnOpenLink(b.LinkURL)
}
