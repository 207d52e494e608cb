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

	"ethmillion/internal/domain"
)

// pixelRect snaps a screen-space rectangle to whole pixels.
func pixelRect(r domain.Rect) image.Rectangle {
	return image.Rect(round(r.X), round(r.Y), round(r.X+r.W), round(r.Y+r.H))
}

func round(v float64) int {
	// keep far off-screen coordinates from overflowing int conversions
	const lim = 1 << 30
	if v > lim {
		return lim
	}
	if v < -lim {
		return -lim
	}
	return int(math.Round(v))
}

// fillRect paints r; opaque colors replace, translucent ones blend over.
func fillRect(dst *image.RGBA, r image.Rectangle, c color.NRGBA) {
	if c.A == 0 || r.Empty() {
		return
	}
	op := draw.Over
	if c.A == 0xff {
		op = draw.Src
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, op)
}

// strokeRect outlines a screen rectangle with a band width pixels wide
// centered on its edges. The four bands never overlap, so translucent
// colors blend once per pixel.
func strokeRect(dst *image.RGBA, r domain.Rect, width float64, c color.NRGBA) {
	c = hairline(c, width)
	w := max(1, round(width))
	lo := -w / 2
	hi := lo + w
	x0, y0 := round(r.X), round(r.Y)
	x1, y1 := round(r.X+r.W), round(r.Y+r.H)
	fillRect(dst, image.Rect(x0+lo, y0+lo, x1+hi, y0+hi), c)
	fillRect(dst, image.Rect(x0+lo, y1+lo, x1+hi, y1+hi), c)
	if y1+lo > y0+hi {
		fillRect(dst, image.Rect(x0+lo, y0+hi, x0+hi, y1+lo), c)
		fillRect(dst, image.Rect(x1+lo, y0+hi, x1+hi, y1+lo), c)
	}
}

// hairline fades a color for sub-pixel line widths drawn as one pixel.
func hairline(c color.NRGBA, width float64) color.NRGBA {
	if width >= 1 || width <= 0 {
		return c
	}
	c.A = uint8(float64(c.A)*width + 0.5)
	return c
}
