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

	"ethmillion/internal/domain"
	"ethmillion/internal/purchase"
)

func TestHeaderText(t *testing.T) {
	got := headerText(purchase.Stats{Sold: 40000, Total: 2073600, Percent: "1.9290"})
	if got != "40,000 / 2,073,600 sold (1.9290%)" {
		t.Fatalf("headerText = %q", got)
	}
}

func TestWalletButtonText(t *testing.T) {
	if walletButtonText("", false) != "Connect Wallet" {
		t.Fatalf("disconnected label")
	}
	if walletButtonText("", true) != "Connecting..." {
		t.Fatalf("connecting label")
	}
	if got := walletButtonText("0x71C7656EC7ab88b098defB751B7401B5f6d8976F", false); got != "0x71C7...976F" {
		t.Fatalf("connected label = %q", got)
	}
}

func TestDrawerText(t *testing.T) {
	if a, b := drawerText(nil); a != "" || b != "" {
		t.Fatalf("nil selection = %q %q", a, b)
	}
	title, size := drawerText(&domain.Selection{StartX: 30, StartY: 0, CurrentX: 0, CurrentY: 20})
	if title != "Selected Area" || size != "30 × 20 px" {
		t.Fatalf("drawer = %q %q", title, size)
	}
	title, _ = drawerText(&domain.Selection{CurrentX: 10, CurrentY: 10, Overlapping: true})
	if title != "Overlap Detected" {
		t.Fatalf("overlap title = %q", title)
	}
}

func TestWheelDelta(t *testing.T) {
	if wheelDelta(10) != -100 || wheelDelta(-10) != 100 {
		t.Fatalf("wheelDelta = %v / %v", wheelDelta(10), wheelDelta(-10))
	}
}
