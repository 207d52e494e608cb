/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"ethmillion/internal/domain"
	"ethmillion/internal/engine"
)

func TestModifiers(t *testing.T) {
	got := modifiers(fyne.KeyModifierShift | fyne.KeyModifierAlt)
	if got != engine.ModShift|engine.ModAlt {
		t.Fatalf("modifiers = %v", got)
	}
	if modifiers(0) != 0 {
		t.Fatalf("no modifiers expected")
	}
}

func TestButton(t *testing.T) {
	cases := map[desktop.MouseButton]engine.Button{
		desktop.MouseButtonPrimary:   engine.ButtonPrimary,
		desktop.MouseButtonSecondary: engine.ButtonSecondary,
		desktop.MouseButtonTertiary:  engine.ButtonTertiary,
	}
	for in, want := range cases {
		if got := button(in); got != want {
			t.Errorf("button(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestPointerEventScalesToPixels(t *testing.T) {
	ev := &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 20)},
		Button:     desktop.MouseButtonPrimary,
		Modifier:   fyne.KeyModifierControl,
	}
	pe := pointerEvent(engine.PointerDown, ev, 2)
	if pe.Pos != (domain.Point{X: 20, Y: 40}) || pe.Mods != engine.ModCtrl || pe.Kind != engine.PointerDown {
		t.Fatalf("pointer event = %+v", pe)
	}
	if p := toPixels(fyne.NewPos(3, 4), 0); p != (domain.Point{X: 3, Y: 4}) {
		t.Fatalf("zero ratio = %+v", p)
	}
}
