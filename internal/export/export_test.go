/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"ethmillion/internal/domain"
	"ethmillion/internal/render"
)

func testBlocks() []domain.CommittedBlock {
	return []domain.CommittedBlock{
		{ID: "1", X: 40, Y: 60, Width: 20, Height: 20, Color: "#ff0000", Text: "GENESIS", LinkURL: "https://example.org"},
		{ID: "2", X: 0, Y: 0, Width: 10, Height: 10, Color: "bogus", ImageURL: "img"},
	}
}

func smallRenderer(images render.Images) *render.Renderer {
	opt := render.DefaultOptions()
	opt.Bounds = domain.Bounds{Width: 100, Height: 200}
	return render.New(opt, images)
}

type oneImage struct{ img image.Image }

func (o oneImage) Image(ref string) (image.Image, bool) { return o.img, ref == "img" }

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestWritePNGRendersWholeWall(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "wall.png")
	if err := WritePNG(out, smallRenderer(nil), testBlocks(), PNGOptions{Scale: 2}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 400 {
		t.Fatalf("size = %v", b)
	}
	// block 1 interior away from its label
	r, g, b, _ := img.At(2*40+2, 2*60+2).RGBA()
	if r>>8 != 0xff || g>>8 != 0 || b>>8 != 0 {
		t.Fatalf("block pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestRasterizeRejectsBadScale(t *testing.T) {
	r := smallRenderer(nil)
	if _, err := Rasterize(r, nil, PNGOptions{Scale: -1}); err == nil {
		t.Fatalf("expected error for negative scale")
	}
	if _, err := Rasterize(r, nil, PNGOptions{Scale: 1000}); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	img, err := Rasterize(r, nil, PNGOptions{})
	if err != nil || img.Bounds().Dx() != 100 {
		t.Fatalf("default scale: %v %v", img.Bounds(), err)
	}
}

func TestWritePDFCreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "wall.pdf")
	opt := DefaultPDFOptions()
	opt.GridSize = 10
	opt.Images = oneImage{img: solid(color.RGBA{0, 255, 0, 255})}
	if err := WritePDF(out, domain.Bounds{Width: 100, Height: 200}, testBlocks(), opt); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", data[:min(len(data), 8)])
	}
	if !bytes.Contains(data, []byte("https://example.org")) {
		t.Fatalf("link annotation missing")
	}
}

func TestRenderPDFRejectsEmptyBounds(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPDF(&buf, domain.Bounds{}, nil, DefaultPDFOptions()); err == nil {
		t.Fatalf("expected error for empty bounds")
	}
}
