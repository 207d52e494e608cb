/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Text is drawn with two embedded Go fonts: bold for block labels and mono
// for the selection dimension label. The parsed fonts are shared; faces hold
// glyph caches and belong to one Renderer.

type faceKind int

const (
	faceBold faceKind = iota
	faceMono
)

type faceKey struct {
	kind faceKind
	px   int
}

// maxFacePx bounds glyph rasterization at extreme zoom.
const maxFacePx = 1024

var (
	fontsOnce sync.Once
	boldFont  *opentype.Font
	monoFont  *opentype.Font
)

func loadFonts() {
	fontsOnce.Do(func() {
		boldFont, _ = opentype.Parse(gobold.TTF)
		monoFont, _ = opentype.Parse(gomono.TTF)
	})
}

// faceCache keeps faces per pixel size.
type faceCache struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
}

func newFaceCache() *faceCache { return &faceCache{faces: make(map[faceKey]font.Face)} }

// face returns a face of roughly px pixels, falling back to basicfont if
// the embedded fonts cannot be used.
func (c *faceCache) face(kind faceKind, px float64) font.Face {
	size := int(math.Round(px))
	if size < 1 {
		size = 1
	}
	if size > maxFacePx {
		size = maxFacePx
	}
	key := faceKey{kind: kind, px: size}
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.faces[key]; ok {
		return f
	}
	loadFonts()
	src := boldFont
	if kind == faceMono {
		src = monoFont
	}
	if src == nil {
		return basicfont.Face7x13
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	c.faces[key] = f
	return f
}

// drawCentered draws s horizontally centered on cx. With middle set the text
// is also vertically centered on y; otherwise y is the baseline.
func drawCentered(dst draw.Image, face font.Face, s string, cx, y float64, middle bool, c color.Color) image.Rectangle {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	w := d.MeasureString(s)
	x := fixed.Int26_6(math.Round(cx*64)) - w/2
	base := fixed.Int26_6(math.Round(y * 64))
	if middle {
		m := face.Metrics()
		base += (m.Ascent - m.Descent) / 2
	}
	d.Dot = fixed.Point26_6{X: x, Y: base}
	bounds, _ := d.BoundString(s)
	d.DrawString(s)
	return image.Rect(bounds.Min.X.Floor(), bounds.Min.Y.Floor(), bounds.Max.X.Ceil(), bounds.Max.Y.Ceil())
}
