/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package purchase turns a frozen selection into a committed block: pricing,
// validation of the selection and design, the simulated mint, and the ledger
// of sold pixels.
package purchase

import (
	"fmt"
	"strings"

	"ethmillion/internal/config"
	"ethmillion/internal/domain"

	"github.com/shopspring/decimal"
)

// PriceDecimals is the number of decimals shown for prices.
const PriceDecimals = 5

// Pricer quotes selections at a fixed price per pixel.
type Pricer struct {
	PerPixel decimal.Decimal
	Currency string
}

// NewPricer builds a Pricer from the market config.
func NewPricer(m config.MarketConfig) (Pricer, error) {
	p, err := m.Price()
	if err != nil {
		return Pricer{}, err
	}
	cur := strings.TrimSpace(m.Currency)
	if cur == "" {
		cur = "ETH"
	}
	return Pricer{PerPixel: p, Currency: cur}, nil
}

// Quote returns width*height*price for r.
func (p Pricer) Quote(r domain.Rect) decimal.Decimal {
	if r.Empty() {
		return decimal.Zero
	}
	px := decimal.NewFromFloat(r.W).Mul(decimal.NewFromFloat(r.H))
	return px.Mul(p.PerPixel)
}

// Format renders d with PriceDecimals and the currency suffix.
func (p Pricer) Format(d decimal.Decimal) string { return FormatPrice(d, p.Currency) }

// FormatPrice renders d as "0.03500 ETH".
func FormatPrice(d decimal.Decimal, currency string) string {
	s := d.StringFixed(PriceDecimals)
	if currency == "" {
		return s
	}
	return fmt.Sprintf("%s %s", s, currency)
}
