/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"ethmillion/internal/domain"
	"ethmillion/internal/engine"
)

func modifiers(m fyne.KeyModifier) engine.Modifier {
	var out engine.Modifier
	if m&fyne.KeyModifierShift != 0 {
		out |= engine.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		out |= engine.ModCtrl
	}
	if m&fyne.KeyModifierAlt != 0 {
		out |= engine.ModAlt
	}
	if m&fyne.KeyModifierSuper != 0 {
		out |= engine.ModSuper
	}
	return out
}

func button(b desktop.MouseButton) engine.Button {
	switch {
	case b&desktop.MouseButtonSecondary != 0:
		return engine.ButtonSecondary
	case b&desktop.MouseButtonTertiary != 0:
		return engine.ButtonTertiary
	default:
		return engine.ButtonPrimary
	}
}

// toPixels converts a widget position (device independent units) into the
// raster's pixel space, which is the space the engine works in.
func toPixels(p fyne.Position, pxPerUnit float32) domain.Point {
	if pxPerUnit <= 0 {
		pxPerUnit = 1
	}
	return domain.Point{X: float64(p.X * pxPerUnit), Y: float64(p.Y * pxPerUnit)}
}

func pointerEvent(kind engine.PointerKind, ev *desktop.MouseEvent, pxPerUnit float32) engine.PointerEvent {
	return engine.PointerEvent{
		Kind:   kind,
		Pos:    toPixels(ev.Position, pxPerUnit),
		Button: button(ev.Button),
		Mods:   modifiers(ev.Modifier),
	}
}
