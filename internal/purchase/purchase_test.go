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
	"errors"
	"strings"
	"testing"
	"time"

	"ethmillion/internal/config"
	"ethmillion/internal/domain"

	"github.com/shopspring/decimal"
)

var wall = domain.Bounds{Width: 1080, Height: 1920}

func genesis() domain.CommittedBlock {
	return domain.CommittedBlock{ID: "1", X: 400, Y: 600, Width: 200, Height: 200, OwnerID: "0xA", Color: "#3b82f6"}
}

func frozen(x0, y0, x1, y1 float64) *domain.Selection {
	return &domain.Selection{StartX: x0, StartY: y0, CurrentX: x1, CurrentY: y1}
}

func defaultPricer(t *testing.T) Pricer {
	t.Helper()
	p, err := NewPricer(config.Defaults().Market)
	if err != nil {
		t.Fatalf("NewPricer: %v", err)
	}
	return p
}

func TestQuoteAndFormat(t *testing.T) {
	p := defaultPricer(t)
	if got := p.Format(p.Quote(domain.Rect{W: 10, H: 10})); got != "0.03500 ETH" {
		t.Fatalf("10x10 = %q", got)
	}
	if got := p.Format(p.Quote(domain.Rect{X: 400, Y: 600, W: 200, H: 200})); got != "14.00000 ETH" {
		t.Fatalf("200x200 = %q", got)
	}
	if !p.Quote(domain.Rect{W: 0, H: 10}).IsZero() {
		t.Fatalf("empty rect should be free")
	}
	if got := FormatPrice(decimal.RequireFromString("1.5"), ""); got != "1.50000" {
		t.Fatalf("no currency = %q", got)
	}
	if _, err := NewPricer(config.MarketConfig{PricePerPixel: "abc"}); !errors.Is(err, config.ErrPrice) {
		t.Fatalf("expected ErrPrice, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	blocks := []domain.CommittedBlock{genesis()}
	cases := []struct {
		name   string
		sel    *domain.Selection
		wallet string
		want   error
	}{
		{"nil", nil, "0x1", ErrNoSelection},
		{"active", &domain.Selection{StartX: 0, StartY: 0, CurrentX: 20, CurrentY: 20, Active: true}, "0x1", ErrSelectionActive},
		{"overlap", frozen(390, 590, 420, 620), "0x1", ErrOverlap},
		{"below minimum", frozen(1080, 0, 1075, 20), "0x1", ErrBelowMinimum},
		{"no wallet", frozen(0, 0, 20, 20), "  ", ErrWalletNotConnected},
		{"ok", frozen(0, 0, 20, 20), "0x1", nil},
		{"touching edge ok", frozen(600, 600, 620, 620), "0x1", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.sel, blocks, tc.wallet, 10)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDesignValidate(t *testing.T) {
	ok := []Design{
		{},
		{Color: "red", Text: "hello"},
		{Text: strings.Repeat("é", MaxTextRunes)},
		{LinkURL: "https://example.org/x", ImageURL: "data:image/png;base64,AAAA"},
		{ImageURL: "/tmp/logo.png"},
	}
	for i, d := range ok {
		if err := d.Validate(); err != nil {
			t.Fatalf("case %d: unexpected %v", i, err)
		}
	}
	bad := []struct {
		d    Design
		want error
	}{
		{Design{Text: strings.Repeat("x", MaxTextRunes+1)}, ErrTextTooLong},
		{Design{LinkURL: "javascript:alert(1)"}, ErrInvalidLink},
		{Design{LinkURL: "example.org"}, ErrInvalidLink},
		{Design{ImageURL: "ftp://example.org/a.png"}, ErrInvalidImage},
		{Design{ImageURL: "data:text/html,hi"}, ErrInvalidImage},
	}
	for i, tc := range bad {
		if err := tc.d.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("bad case %d: err = %v, want %v", i, err, tc.want)
		}
	}
	if err := (Design{Color: "nope"}).Validate(); err == nil {
		t.Fatalf("expected color error")
	}
}

func TestLedgerStatsAndOwners(t *testing.T) {
	l := NewLedger(wall, []domain.CommittedBlock{genesis()})
	st := l.Stats()
	if st.Sold != 40000 || st.Total != 1080*1920 {
		t.Fatalf("stats = %+v", st)
	}
	if st.Percent != "1.9290" {
		t.Fatalf("percent = %q", st.Percent)
	}
	if err := l.Add(domain.CommittedBlock{ID: "2", X: 0, Y: 0, Width: 10, Height: 10, OwnerID: "0xb"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := l.Add(domain.CommittedBlock{ID: "3", X: 10, Y: 0, Width: 10, Height: 20, OwnerID: "0xa"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := l.Add(domain.CommittedBlock{ID: "4", X: 5, Y: 5, Width: 10, Height: 10, OwnerID: "0xc"}); !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected overlap, got %v", err)
	}
	if err := l.Add(domain.CommittedBlock{ID: "5", X: 1075, Y: 0, Width: 10, Height: 10}); !errors.Is(err, domain.ErrOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
	owners := l.OwnerTotals()
	if len(owners) != 2 {
		t.Fatalf("owners = %+v", owners)
	}
	if owners[0].Owner != "0xa" || owners[0].Pixels != 40200 || owners[0].Blocks != 2 {
		t.Fatalf("first owner = %+v", owners[0])
	}
	if owners[1].Owner != "0xb" || owners[1].Pixels != 100 {
		t.Fatalf("second owner = %+v", owners[1])
	}
	l.Replace(nil)
	if got := l.Stats(); got.Sold != 0 || got.Percent != "0.0000" {
		t.Fatalf("after replace = %+v", got)
	}
}

func TestMintCommitsBlock(t *testing.T) {
	l := NewLedger(wall, []domain.CommittedBlock{genesis()})
	m := NewMinter(l, defaultPricer(t), "0xtreasury", 0, 10)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }
	m.newID = func() string { return "blk-1" }

	rec, err := m.Mint(context.Background(), frozen(20, 20, 0, 0), Design{Text: "gm"}, "0xowner")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	b := rec.Block
	if b.ID != "blk-1" || b.Rect() != (domain.Rect{X: 0, Y: 0, W: 20, H: 20}) || b.Color != DefaultColor || !b.CreatedAt.Equal(fixed) {
		t.Fatalf("block = %+v", b)
	}
	if rec.Price.StringFixed(5) != "0.14000" || rec.Treasury != "0xtreasury" || rec.Currency != "ETH" {
		t.Fatalf("receipt = %+v", rec)
	}
	if len(l.Blocks()) != 2 {
		t.Fatalf("ledger not updated")
	}
	// same area again now overlaps
	if _, err := m.Mint(context.Background(), frozen(0, 0, 20, 20), Design{}, "0xowner"); !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected overlap on second mint, got %v", err)
	}
}

func TestMintHonorsContext(t *testing.T) {
	l := NewLedger(wall, nil)
	m := NewMinter(l, defaultPricer(t), "", time.Hour, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Mint(ctx, frozen(0, 0, 20, 20), Design{}, "0x1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(l.Blocks()) != 0 {
		t.Fatalf("aborted mint must not commit")
	}
}

func TestMintRevalidatesAfterWait(t *testing.T) {
	l := NewLedger(wall, nil)
	m := NewMinter(l, defaultPricer(t), "", 300*time.Millisecond, 10)
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = l.Add(domain.CommittedBlock{ID: "rival", X: 0, Y: 0, Width: 10, Height: 10})
	}()
	if _, err := m.Mint(context.Background(), frozen(0, 0, 20, 20), Design{}, "0x1"); !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected overlap after rival mint, got %v", err)
	}
}

func TestMintRejectsBadDesign(t *testing.T) {
	m := NewMinter(NewLedger(wall, nil), defaultPricer(t), "", 0, 10)
	if _, err := m.Mint(context.Background(), frozen(0, 0, 20, 20), Design{LinkURL: "nope"}, "0x1"); !errors.Is(err, ErrInvalidLink) {
		t.Fatalf("expected ErrInvalidLink, got %v", err)
	}
}
