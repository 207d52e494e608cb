/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package selection implements the drag-to-select state machine of the wall.
//
// A press outside every committed block anchors a new grid-aligned selection
// (Idle/Frozen -> Dragging), pointer moves reshape it (Dragging -> Dragging),
// and a release freezes it (Dragging -> Frozen). A frozen selection lives until
// it is cleared or committed. A press inside a block is ignored entirely.
package selection

import (
	"ethmillion/internal/domain"
	"ethmillion/internal/geom"
)

type State int

const (
	Idle State = iota
	Dragging
	Frozen
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Frozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Machine holds the selection state of one canvas. It is not safe for
// concurrent use; all calls are expected from the input goroutine.
type Machine struct {
	q      geom.Quantizer
	blocks []domain.CommittedBlock
	state  State
	sel    domain.Selection
}

func New(q geom.Quantizer) *Machine {
	return &Machine{q: q}
}

// SetBlocks replaces the committed blocks used for containment and overlap
// tests. The slice is read, never modified. An existing selection has its
// overlap flag recomputed; the return value reports whether it flipped.
func (m *Machine) SetBlocks(blocks []domain.CommittedBlock) bool {
	m.blocks = blocks
	if m.state == Idle {
		return false
	}
	ov := geom.CheckOverlap(m.sel.Normalize(), m.blocks)
	if ov == m.sel.Overlapping {
		return false
	}
	m.sel.Overlapping = ov
	return true
}

func (m *Machine) State() State { return m.state }

// Selection returns the current selection and whether there is one.
func (m *Machine) Selection() (domain.Selection, bool) {
	if m.state == Idle {
		return domain.Selection{}, false
	}
	return m.sel, true
}

// Begin starts a drag at world point p. It returns false, leaving the machine
// untouched, when the snapped press lands inside a committed block.
func (m *Machine) Begin(p domain.Point) bool {
	anchor := m.q.Anchor(p)
	if geom.InAnyBlock(anchor, m.blocks) {
		return false
	}
	corner := m.q.InitialCorner(anchor)
	m.sel = domain.Selection{
		StartX:   anchor.X,
		StartY:   anchor.Y,
		CurrentX: corner.X,
		CurrentY: corner.Y,
		Active:   true,
	}
	m.sel.Overlapping = geom.CheckOverlap(m.sel.Normalize(), m.blocks)
	m.state = Dragging
	return true
}

// Update moves the free corner toward world point p. Only valid while dragging.
func (m *Machine) Update(p domain.Point) bool {
	if m.state != Dragging {
		return false
	}
	anchor := domain.Point{X: m.sel.StartX, Y: m.sel.StartY}
	c := m.q.Corner(anchor, p)
	m.sel.CurrentX, m.sel.CurrentY = c.X, c.Y
	m.sel.Overlapping = geom.CheckOverlap(m.sel.Normalize(), m.blocks)
	return true
}

// End freezes a dragging selection without touching its coordinates.
func (m *Machine) End() bool {
	if m.state != Dragging {
		return false
	}
	m.sel.Active = false
	m.state = Frozen
	return true
}

// Clear drops any selection.
func (m *Machine) Clear() bool {
	if m.state == Idle {
		return false
	}
	m.sel = domain.Selection{}
	m.state = Idle
	return true
}

// Commit hands a frozen selection to the caller and returns to Idle.
func (m *Machine) Commit() (domain.Selection, bool) {
	if m.state != Frozen {
		return domain.Selection{}, false
	}
	s := m.sel
	m.Clear()
	return s, true
}
