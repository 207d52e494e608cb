/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes the wall to files: a raster PNG through the canvas
// renderer and a vector PDF poster through gofpdf.
package export

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ethmillion/internal/domain"
	"ethmillion/internal/render"
	"ethmillion/internal/version"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions controls PDF export behavior.
// Units are points (pt); one world unit maps to one point.
type PDFOptions struct {
	Title    string
	Margin   float64
	GridSize float64 // 0 disables the grid
	Labels   bool
	Palette  render.Palette
	Images   render.Images // optional; blocks with a loaded image embed it
}

// DefaultPDFOptions mirrors the on-screen look.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{Title: "EthMillion", Margin: 36, Labels: true, Palette: render.DefaultPalette()}
}

// WritePDF writes a single-page poster of the wall to path.
func WritePDF(path string, bounds domain.Bounds, blocks []domain.CommittedBlock, opt PDFOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := RenderPDF(f, bounds, blocks, opt); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// RenderPDF writes the poster to w.
func RenderPDF(w io.Writer, bounds domain.Bounds, blocks []domain.CommittedBlock, opt PDFOptions) error {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return fmt.Errorf("invalid bounds %gx%g", bounds.Width, bounds.Height)
	}
	m := opt.Margin
	pageW := bounds.Width + 2*m
	pageH := bounds.Height + 2*m
	pal := opt.Palette

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	title := opt.Title
	if title == "" {
		title = "EthMillion"
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("ethmillion "+version.String(), false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// page and canvas
	setFillColor(pdf, pal.Viewport)
	pdf.Rect(0, 0, pageW, pageH, "F")
	setFillColor(pdf, pal.Background)
	setDrawColor(pdf, pal.Border)
	pdf.SetLineWidth(1)
	pdf.Rect(m, m, bounds.Width, bounds.Height, "FD")

	if opt.GridSize > 0 {
		setDrawColor(pdf, pal.Grid)
		pdf.SetLineWidth(0.25)
		for x := opt.GridSize; x < bounds.Width; x += opt.GridSize {
			pdf.Line(m+x, m, m+x, m+bounds.Height)
		}
		for y := opt.GridSize; y < bounds.Height; y += opt.GridSize {
			pdf.Line(m, m+y, m+bounds.Width, m+y)
		}
	}

	for i, b := range blocks {
		x, y := m+b.X, m+b.Y
		c, err := domain.ParseColor(b.Color)
		if err != nil {
			c = pal.Block
		}
		setFillColor(pdf, c)
		pdf.Rect(x, y, b.Width, b.Height, "F")

		if opt.Images != nil && b.ImageURL != "" {
			if img, ok := opt.Images.Image(b.ImageURL); ok {
				var buf bytes.Buffer
				if err := png.Encode(&buf, img); err == nil {
					name := fmt.Sprintf("block-%d", i)
					iopt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
					pdf.RegisterImageOptionsReader(name, iopt, &buf)
					pdf.ImageOptions(name, x, y, b.Width, b.Height, false, iopt, 0, "")
				}
			}
		}
		if opt.Labels && b.Text != "" {
			size := max(b.Height/5, 8)
			pdf.SetFont("Helvetica", "B", size)
			setTextColor(pdf, pal.Text)
			txt := tr(b.Text)
			tw := pdf.GetStringWidth(txt)
			pdf.Text(x+(b.Width-tw)/2, y+b.Height/2+size*0.35, txt)
		}
		if link := strings.TrimSpace(b.LinkURL); link != "" {
			pdf.LinkString(x, y, b.Width, b.Height, link)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
