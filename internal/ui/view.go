/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"

	"ethmillion/internal/domain"
	"ethmillion/internal/purchase"
	"ethmillion/internal/wallet"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options are the inputs of Run.
type Options struct {
	// BlocksPath is the committed-blocks JSON file; empty keeps blocks in memory.
	BlocksPath string
}

// wheelScale converts a Fyne scroll step into browser-style deltaY units
// (one notch is 10 in Fyne and about 100 in browsers).
const wheelScale = 10

// wheelDelta maps a Fyne scroll DY (positive when scrolling up) to a wheel
// delta where positive zooms out.
func wheelDelta(dy float32) float64 { return -float64(dy) * wheelScale }

var printer = message.NewPrinter(language.English)

// headerText is the sold counter shown in the header.
func headerText(st purchase.Stats) string {
	return printer.Sprintf("%d / %d sold (%s%%)", st.Sold, st.Total, st.Percent)
}

// walletButtonText is the label of the connect button.
func walletButtonText(addr string, connecting bool) string {
	switch {
	case connecting:
		return "Connecting..."
	case addr == "":
		return "Connect Wallet"
	default:
		return wallet.FormatAddress(addr)
	}
}

// drawerText returns the drawer heading and the selected size.
func drawerText(sel *domain.Selection) (title, size string) {
	if sel == nil {
		return "", ""
	}
	r := sel.Normalize()
	title = "Selected Area"
	if sel.Overlapping {
		title = "Overlap Detected"
	}
	return title, fmt.Sprintf("%g × %g px", r.W, r.H)
}
