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
	"sync"
	"testing"

	"ethmillion/internal/domain"
)

type fakeImages map[string]image.Image

func (f fakeImages) Image(ref string) (image.Image, bool) {
	img, ok := f[ref]
	return img, ok
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA { return img.RGBAAt(x, y) }

func asRGBA(c color.NRGBA) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func TestDrawBackgroundAndBorder(t *testing.T) {
	r := New(DefaultOptions(), nil)
	dst := image.NewRGBA(image.Rect(0, 0, 200, 200))
	f := r.Draw(dst, Scene{Camera: domain.Camera{Scale: 1}})
	if f.Grid || f.Blocks != 0 || f.Selection {
		t.Fatalf("unexpected frame %+v", f)
	}
	if got, want := rgbaAt(dst, 100, 100), asRGBA(DefaultPalette().Background); got != want {
		t.Fatalf("background = %v, want %v", got, want)
	}
	if got, want := rgbaAt(dst, 0, 50), asRGBA(DefaultPalette().Border); got != want {
		t.Fatalf("border = %v, want %v", got, want)
	}
}

func TestViewportOutsideCanvas(t *testing.T) {
	r := New(DefaultOptions(), nil)
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	r.Draw(dst, Scene{Camera: domain.Camera{Scale: 0.01, OffsetX: 50, OffsetY: 50}})
	if got, want := rgbaAt(dst, 10, 10), asRGBA(DefaultPalette().Viewport); got != want {
		t.Fatalf("viewport = %v, want %v", got, want)
	}
}

func TestGridOnlyWhenZoomedIn(t *testing.T) {
	r := New(DefaultOptions(), nil)
	dst := image.NewRGBA(image.Rect(0, 0, 200, 200))
	if f := r.Draw(dst, Scene{Camera: domain.Camera{Scale: 4}}); f.Grid {
		t.Fatalf("grid drawn at threshold scale")
	}
	f := r.Draw(dst, Scene{Camera: domain.Camera{Scale: 5}})
	if !f.Grid {
		t.Fatalf("grid missing at scale 5")
	}
	// visible world is 0..40 on both axes: lines at 0,10,20,30,40
	if f.GridLines != 10 {
		t.Fatalf("grid lines = %d, want 10 visible lines only", f.GridLines)
	}
	bg := asRGBA(DefaultPalette().Background)
	if got := rgbaAt(dst, 50, 25); got == bg {
		t.Fatalf("grid line at x=50 not painted")
	}
	if got := rgbaAt(dst, 25, 25); got != bg {
		t.Fatalf("cell interior painted: %v", got)
	}
}

func TestBlocksImagesAndCulling(t *testing.T) {
	imgs := fakeImages{"red.png": solid(2, 2, color.RGBA{R: 255, A: 255})}
	r := New(DefaultOptions(), imgs)
	dst := image.NewRGBA(image.Rect(0, 0, 200, 200))
	blocks := []domain.CommittedBlock{
		{ID: "a", X: 10, Y: 10, Width: 50, Height: 50, Color: "#10b981"},
		{ID: "b", X: 60, Y: 60, Width: 40, Height: 40, Color: "#000000", ImageURL: "red.png"},
		{ID: "c", X: 120, Y: 120, Width: 20, Height: 20, Color: "#ffffff", ImageURL: "pending.png"},
		{ID: "far", X: 900, Y: 1800, Width: 100, Height: 100, Color: "#ffffff"},
	}
	f := r.Draw(dst, Scene{Camera: domain.Camera{Scale: 1}, Blocks: blocks})
	if f.Blocks != 3 || f.Images != 1 {
		t.Fatalf("frame = %+v, want 3 blocks and 1 image", f)
	}
	if got := rgbaAt(dst, 30, 30); got != (color.RGBA{R: 0x10, G: 0xb9, B: 0x81, A: 255}) {
		t.Fatalf("block fill = %v", got)
	}
	if got := rgbaAt(dst, 80, 80); got.R < 200 || got.G > 40 {
		t.Fatalf("image not drawn into block: %v", got)
	}
	if got := rgbaAt(dst, 130, 130); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("pending image should leave the fill color: %v", got)
	}
}

func TestBadBlockColorFallsBack(t *testing.T) {
	r := New(DefaultOptions(), nil)
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	r.Draw(dst, Scene{Camera: domain.Camera{Scale: 1}, Blocks: []domain.CommittedBlock{{X: 10, Y: 10, Width: 30, Height: 30, Color: "nope"}}})
	if got, want := rgbaAt(dst, 20, 20), asRGBA(DefaultPalette().Block); got != want {
		t.Fatalf("fallback fill = %v, want %v", got, want)
	}
}

func TestBlockLabelThreshold(t *testing.T) {
	r := New(DefaultOptions(), nil)
	dst := image.NewRGBA(image.Rect(0, 0, 400, 400))
	blocks := []domain.CommittedBlock{{X: 0, Y: 0, Width: 200, Height: 200, Color: "#000000", Text: "HELLO"}}
	if f := r.Draw(dst, Scene{Camera: domain.Camera{Scale: 0.25}, Blocks: blocks}); f.Labels != 0 {
		t.Fatalf("label drawn below threshold")
	}
	f := r.Draw(dst, Scene{Camera: domain.Camera{Scale: 1}, Blocks: blocks})
	if f.Labels != 1 {
		t.Fatalf("label missing at scale 1")
	}
	white := 0
	for y := 60; y < 140; y++ {
		for x := 20; x < 180; x++ {
			if c := rgbaAt(dst, x, y); c.R > 200 && c.G > 200 && c.B > 200 {
				white++
			}
		}
	}
	if white == 0 {
		t.Fatalf("no label pixels near the block center")
	}
}

func TestSelectionColorsAndDimension(t *testing.T) {
	r := New(DefaultOptions(), nil)
	dst := image.NewRGBA(image.Rect(0, 0, 300, 300))
	sel := &domain.Selection{StartX: 150, StartY: 150, CurrentX: 100, CurrentY: 100}

	f := r.Draw(dst, Scene{Camera: domain.Camera{Scale: 1}, Selection: sel})
	if !f.Selection || !f.Dimension {
		t.Fatalf("frame = %+v", f)
	}
	if c := rgbaAt(dst, 125, 125); c.B <= c.R {
		t.Fatalf("valid selection should be blue: %v", c)
	}
	if c := rgbaAt(dst, 100, 125); c != (color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 255}) {
		t.Fatalf("selection border = %v", c)
	}

	sel.Overlapping = true
	r.Draw(dst, Scene{Camera: domain.Camera{Scale: 1}, Selection: sel})
	if c := rgbaAt(dst, 125, 125); c.R <= c.B {
		t.Fatalf("overlapping selection should be red: %v", c)
	}

	f = r.Draw(dst, Scene{Camera: domain.Camera{Scale: 0.8}, Selection: sel})
	if f.Dimension {
		t.Fatalf("dimension label shown at scale 0.8")
	}
}

func TestZeroScaleDrawsOnlyViewport(t *testing.T) {
	r := New(DefaultOptions(), nil)
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if f := r.Draw(dst, Scene{}); f != (Frame{}) {
		t.Fatalf("frame = %+v", f)
	}
}

func TestHairline(t *testing.T) {
	c := hairline(color.NRGBA{A: 200}, 0.5)
	if c.A != 100 {
		t.Fatalf("alpha = %d", c.A)
	}
	if hairline(color.NRGBA{A: 200}, 2).A != 200 {
		t.Fatalf("wide lines keep alpha")
	}
}

func TestFacesBelongToRenderer(t *testing.T) {
	a := New(DefaultOptions(), nil)
	b := New(DefaultOptions(), nil)
	fa := a.faces.face(faceBold, 12)
	if fa != a.faces.face(faceBold, 12.2) {
		t.Fatalf("face not reused within a renderer")
	}
	if fa == b.faces.face(faceBold, 12) {
		t.Fatalf("renderers share a face")
	}
}

func TestConcurrentRenderers(t *testing.T) {
	blocks := []domain.CommittedBlock{{X: 0, Y: 0, Width: 200, Height: 200, Color: "#000000", Text: "HELLO"}}
	sel := &domain.Selection{CurrentX: 100, CurrentY: 100}
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := New(DefaultOptions(), nil)
			dst := image.NewRGBA(image.Rect(0, 0, 300, 300))
			for j := 0; j < 5; j++ {
				if f := r.Draw(dst, Scene{Camera: domain.Camera{Scale: 1}, Blocks: blocks, Selection: sel}); f.Labels != 1 || !f.Dimension {
					t.Errorf("frame = %+v", f)
					return
				}
			}
		}()
	}
	wg.Wait()
}
