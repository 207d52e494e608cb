/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"ethmillion/internal/domain"
)

// Mode is the interaction the canvas is in. Exactly one gesture owns the
// pointer at a time; the mode is decided when the gesture starts.
type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeSelecting
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePanning:
		return "panning"
	case ModeSelecting:
		return "selecting"
	}
	return "unknown"
}

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonTertiary
)

// Modifier is a bit set of held keyboard modifiers.
type Modifier uint

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// ParseModifier maps a config token to a modifier.
func ParseModifier(s string) (Modifier, bool) {
	switch s {
	case "shift":
		return ModShift, true
	case "ctrl", "control":
		return ModCtrl, true
	case "alt", "option":
		return ModAlt, true
	case "super", "cmd", "meta":
		return ModSuper, true
	}
	return 0, false
}

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerLeave
)

// PointerEvent is a mouse or pen event in screen coordinates.
type PointerEvent struct {
	Kind   PointerKind
	Pos    domain.Point
	Button Button
	Mods   Modifier
}

// WheelEvent carries a vertical scroll delta; positive scrolls down (zoom out).
type WheelEvent struct {
	DeltaY float64
	Pos    domain.Point
}

type TouchKind int

const (
	TouchStart TouchKind = iota
	TouchMove
	TouchEnd
)

// TouchEvent lists the contacts still down after the event.
type TouchEvent struct {
	Kind    TouchKind
	Touches []domain.Point
}
