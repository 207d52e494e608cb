/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package purchase

import (
	"fmt"
	"strings"
	"sync"

	"ethmillion/internal/domain"
	"ethmillion/internal/geom"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/shopspring/decimal"
)

// PercentDecimals is the precision of the sold percentage.
const PercentDecimals = 4

// Stats summarizes how much of the wall is sold.
type Stats struct {
	Sold    int64
	Total   int64
	Percent string // e.g. "0.0193"
}

// OwnerTotal is the number of pixels and blocks held by one owner.
type OwnerTotal struct {
	Owner  string
	Pixels int64
	Blocks int
}

// Ledger owns the set of committed blocks. It is safe for concurrent use.
type Ledger struct {
	mu     sync.RWMutex
	bounds domain.Bounds
	blocks []domain.CommittedBlock
}

// NewLedger returns a ledger seeded with blocks. Seeds are trusted; validate
// them with storage.ParseBlocks before calling.
func NewLedger(bounds domain.Bounds, blocks []domain.CommittedBlock) *Ledger {
	return &Ledger{bounds: bounds, blocks: append([]domain.CommittedBlock(nil), blocks...)}
}

// Bounds returns the wall size.
func (l *Ledger) Bounds() domain.Bounds { return l.bounds }

// Blocks returns a copy of the committed blocks.
func (l *Ledger) Blocks() []domain.CommittedBlock {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.CommittedBlock(nil), l.blocks...)
}

// Replace swaps in a new block set, e.g. after the seed file changed on disk.
func (l *Ledger) Replace(blocks []domain.CommittedBlock) {
	l.mu.Lock()
	l.blocks = append([]domain.CommittedBlock(nil), blocks...)
	l.mu.Unlock()
}

// Add appends b if it is in bounds and overlaps nothing.
func (l *Ledger) Add(b domain.CommittedBlock) error {
	if err := b.Validate(l.bounds); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if geom.CheckOverlap(b.Rect(), l.blocks) {
		return fmt.Errorf("block %q: %w", b.ID, ErrOverlap)
	}
	l.blocks = append(l.blocks, b)
	return nil
}

// Stats returns sold/total pixels and the sold percentage.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var sold int64
	for _, b := range l.blocks {
		sold += int64(b.Width * b.Height)
	}
	total := int64(l.bounds.Area())
	pct := decimal.Zero
	if total > 0 {
		pct = decimal.NewFromInt(sold).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total))
	}
	return Stats{Sold: sold, Total: total, Percent: pct.StringFixed(PercentDecimals)}
}

// OwnerTotals aggregates pixels per owner, sorted by owner address.
// Addresses compare case-insensitively.
func (l *Ledger) OwnerTotals() []OwnerTotal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tree := redblacktree.NewWithStringComparator()
	for _, b := range l.blocks {
		key := strings.ToLower(b.OwnerID)
		cur := OwnerTotal{Owner: key}
		if v, ok := tree.Get(key); ok {
			cur = v.(OwnerTotal)
		}
		cur.Pixels += int64(b.Width * b.Height)
		cur.Blocks++
		tree.Put(key, cur)
	}
	out := make([]OwnerTotal, 0, tree.Size())
	it := tree.Iterator()
	for it.Next() {
		out = append(out, it.Value().(OwnerTotal))
	}
	return out
}
