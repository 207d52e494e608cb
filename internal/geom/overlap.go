/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "ethmillion/internal/domain"

// Overlaps reports whether two rectangles share interior area. Touching
// edges do not count.
func Overlaps(a, b domain.Rect) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X && a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

// CheckOverlap reports whether candidate overlaps any block.
func CheckOverlap(candidate domain.Rect, blocks []domain.CommittedBlock) bool {
	for _, b := range blocks {
		if Overlaps(candidate, b.Rect()) {
			return true
		}
	}
	return false
}

// BlockAt returns the index of the first block whose half-open area contains p.
func BlockAt(p domain.Point, blocks []domain.CommittedBlock) (int, bool) {
	for i, b := range blocks {
		if b.Rect().Contains(p) {
			return i, true
		}
	}
	return -1, false
}

// InAnyBlock reports whether p is inside some block.
func InAnyBlock(p domain.Point, blocks []domain.CommittedBlock) bool {
	_, ok := BlockAt(p, blocks)
	return ok
}

// FirstOverlap returns the first pair of indices (i < j) of overlapping blocks.
func FirstOverlap(blocks []domain.CommittedBlock) (int, int, bool) {
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			if Overlaps(blocks[i].Rect(), blocks[j].Rect()) {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}
