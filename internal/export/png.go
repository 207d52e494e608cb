/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"ethmillion/internal/domain"
	"ethmillion/internal/render"
)

// MaxPNGPixels bounds the raster size of a PNG export.
const MaxPNGPixels = 64 << 20

var ErrTooLarge = errors.New("export too large")

// PNGOptions controls PNG export behavior.
type PNGOptions struct {
	Scale     float64 // output pixels per world unit; 0 means 1
	Selection *domain.Selection
}

// WritePNG renders the whole wall through r and writes it to path.
func WritePNG(path string, r *render.Renderer, blocks []domain.CommittedBlock, opt PNGOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := RenderPNG(f, r, blocks, opt); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// RenderPNG encodes the wall rendered at opt.Scale to w.
func RenderPNG(w io.Writer, r *render.Renderer, blocks []domain.CommittedBlock, opt PNGOptions) error {
	img, err := Rasterize(r, blocks, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Rasterize renders the full canvas with the camera at the origin.
func Rasterize(r *render.Renderer, blocks []domain.CommittedBlock, opt PNGOptions) (*image.RGBA, error) {
	scale := opt.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("invalid scale %v", opt.Scale)
	}
	b := r.Options().Bounds
	pw := int(math.Ceil(b.Width * scale))
	ph := int(math.Ceil(b.Height * scale))
	if pw <= 0 || ph <= 0 {
		return nil, fmt.Errorf("invalid bounds %gx%g", b.Width, b.Height)
	}
	if int64(pw)*int64(ph) > MaxPNGPixels {
		return nil, fmt.Errorf("%w: %dx%d px", ErrTooLarge, pw, ph)
	}
	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	r.Draw(img, render.Scene{
		Camera:    domain.Camera{Scale: scale},
		Blocks:    blocks,
		Selection: opt.Selection,
	})
	return img, nil
}
