/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"fmt"
	"image/color"
	"strings"

	"ethmillion/internal/camera"
	"ethmillion/internal/config"
	"ethmillion/internal/domain"
	"ethmillion/internal/render"
)

// ConfigFrom builds a canvas configuration from the user config.
func ConfigFrom(ac config.AppConfig) (Config, error) {
	if err := ac.Validate(); err != nil {
		return Config{}, err
	}
	b := domain.Bounds{Width: float64(ac.Canvas.Width), Height: float64(ac.Canvas.Height)}
	v := ac.View

	pal, err := paletteFrom(ac.Colors)
	if err != nil {
		return Config{}, err
	}
	ro := render.DefaultOptions()
	ro.Bounds = b
	ro.GridSize = float64(ac.Canvas.GridSize)
	ro.Palette = pal
	ro.Thresholds = render.Thresholds{Grid: v.GridVisibleScale, Label: v.LabelVisibleScale, Dimension: v.DimensionVisibleScale}

	mod, ok := ParseModifier(strings.ToLower(strings.TrimSpace(v.PanModifier)))
	if !ok && strings.TrimSpace(v.PanModifier) != "" && v.PanModifier != "none" {
		return Config{}, fmt.Errorf("unknown pan modifier %q", v.PanModifier)
	}

	return Config{
		Bounds:   b,
		GridSize: float64(ac.Canvas.GridSize),
		MinSize:  float64(ac.Canvas.MinPurchaseSize),
		Camera: camera.Limits{
			MinZoom:     v.MinZoom,
			MaxZoom:     v.MaxZoom,
			Sensitivity: v.ZoomSensitivity,
			FitMargin:   v.FitMargin,
			PanMargin:   v.PanMargin,
		},
		Render:      ro,
		PanModifier: mod,
	}, nil
}

func paletteFrom(c config.ColorsConfig) (render.Palette, error) {
	pal := render.DefaultPalette()
	fields := []struct {
		name string
		val  string
		dst  *color.NRGBA
	}{
		{"viewport", c.Viewport, &pal.Viewport},
		{"background", c.Background, &pal.Background},
		{"border", c.Border, &pal.Border},
		{"grid", c.Grid, &pal.Grid},
		{"selection", c.Selection, &pal.SelectionFill},
		{"selection_border", c.SelectionBorder, &pal.SelectionLine},
		{"overlap", c.Overlap, &pal.OverlapFill},
		{"overlap_border", c.OverlapBorder, &pal.OverlapLine},
		{"text", c.Text, &pal.Text},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.val) == "" {
			continue
		}
		col, err := domain.ParseColor(f.val)
		if err != nil {
			return pal, fmt.Errorf("colors.%s: %w", f.name, err)
		}
		*f.dst = col
	}
	return pal, nil
}
