/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ethmillion/internal/domain"
	applog "ethmillion/internal/log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt describes a completed mint.
type Receipt struct {
	Block    domain.CommittedBlock
	Price    decimal.Decimal
	Currency string
	Treasury string
}

// Minter simulates sending the purchase transaction to the treasury and
// commits the block to the ledger once it "confirms".
type Minter struct {
	Ledger   *Ledger
	Pricer   Pricer
	Treasury string
	Delay    time.Duration
	MinSize  float64

	now   func() time.Time
	newID func() string
}

// NewMinter wires a Minter over ledger.
func NewMinter(ledger *Ledger, pricer Pricer, treasury string, delay time.Duration, minSize float64) *Minter {
	return &Minter{
		Ledger:   ledger,
		Pricer:   pricer,
		Treasury: treasury,
		Delay:    delay,
		MinSize:  minSize,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Mint validates sel and design, waits for the simulated confirmation and
// commits the new block. Blocks may change while waiting, so the selection
// is validated again before committing.
func (m *Minter) Mint(ctx context.Context, sel *domain.Selection, d Design, owner string) (Receipt, error) {
	l := applog.WithOperation(applog.WithComponent("purchase"), "mint")
	if err := d.Validate(); err != nil {
		return Receipt{}, err
	}
	if err := Validate(sel, m.Ledger.Blocks(), owner, m.MinSize); err != nil {
		return Receipt{}, err
	}
	r := sel.Normalize()
	price := m.Pricer.Quote(r)
	l.InfoContext(ctx, "mint submitted",
		slog.String("rect", rectString(r)),
		slog.String("price", m.Pricer.Format(price)),
		slog.String("treasury", m.Treasury))

	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			l.WarnContext(ctx, "mint aborted", slog.Any("err", ctx.Err()))
			return Receipt{}, ctx.Err()
		case <-t.C:
		}
	}
	if err := Validate(sel, m.Ledger.Blocks(), owner, m.MinSize); err != nil {
		return Receipt{}, err
	}
	b := domain.CommittedBlock{
		ID:        m.newID(),
		X:         r.X,
		Y:         r.Y,
		Width:     r.W,
		Height:    r.H,
		OwnerID:   owner,
		Color:     d.color(),
		ImageURL:  d.ImageURL,
		LinkURL:   d.LinkURL,
		Text:      d.Text,
		CreatedAt: m.now().UTC(),
	}
	if err := m.Ledger.Add(b); err != nil {
		return Receipt{}, err
	}
	l.InfoContext(ctx, "block minted", slog.String("id", b.ID))
	return Receipt{Block: b, Price: price, Currency: m.Pricer.Currency, Treasury: m.Treasury}, nil
}

func rectString(r domain.Rect) string {
	return fmt.Sprintf("%g,%g %gx%g", r.X, r.Y, r.W, r.H)
}
