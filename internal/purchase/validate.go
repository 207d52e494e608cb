/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package purchase

import (
	"errors"
	"fmt"
	"strings"

	"ethmillion/internal/domain"
	"ethmillion/internal/geom"
)

var (
	ErrNoSelection        = errors.New("no selection")
	ErrSelectionActive    = errors.New("selection is still being dragged")
	ErrOverlap            = errors.New("selection overlaps an owned block")
	ErrBelowMinimum       = errors.New("selection is below the minimum purchase size")
	ErrWalletNotConnected = errors.New("wallet not connected")
)

// Validate reports whether sel can be bought by wallet given the committed blocks.
// Overlap is recomputed against blocks rather than trusting sel.Overlapping.
func Validate(sel *domain.Selection, blocks []domain.CommittedBlock, wallet string, minSize float64) error {
	if sel == nil {
		return ErrNoSelection
	}
	if sel.Active {
		return ErrSelectionActive
	}
	r := sel.Normalize()
	if geom.CheckOverlap(r, blocks) {
		return ErrOverlap
	}
	if r.W < minSize || r.H < minSize {
		return fmt.Errorf("%w: %gx%g < %g", ErrBelowMinimum, r.W, r.H, minSize)
	}
	if strings.TrimSpace(wallet) == "" {
		return ErrWalletNotConnected
	}
	return nil
}
