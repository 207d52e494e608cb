/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package wallet simulates connecting a browser-style Ethereum wallet.
// No chain is contacted: Connect waits a short delay and hands out a random address,
// optionally remembering it in the OS keyring between runs.
package wallet

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"ethmillion/internal/config"
	applog "ethmillion/internal/log"
)

// AddressHexLen is the number of hex digits after the 0x prefix.
const AddressHexLen = 40

// Connector hands out wallet addresses.
type Connector struct {
	Delay    time.Duration
	Remember bool

	rand io.Reader
}

// NewConnector builds a Connector from the wallet config section.
func NewConnector(c config.WalletConfig) *Connector {
	return &Connector{Delay: c.ConnectDelay(), Remember: c.Remember, rand: rand.Reader}
}

// Connect waits for the simulated approval and returns an address.
// A remembered address is reused when Remember is set.
func (c *Connector) Connect(ctx context.Context) (string, error) {
	l := applog.WithOperation(applog.WithComponent("wallet"), "connect")
	if c.Delay > 0 {
		t := time.NewTimer(c.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
	if c.Remember {
		if addr, err := config.RememberedWallet(); err == nil && ValidAddress(addr) {
			l.DebugContext(ctx, "reusing remembered wallet", slog.String("addr", FormatAddress(addr)))
			return addr, nil
		}
	}
	r := c.rand
	if r == nil {
		r = rand.Reader
	}
	addr, err := RandomAddress(r)
	if err != nil {
		return "", err
	}
	if c.Remember {
		if err := config.RememberWallet(addr); err != nil {
			l.WarnContext(ctx, "remember wallet failed", slog.Any("err", err))
		}
	}
	l.InfoContext(ctx, "wallet connected", slog.String("addr", FormatAddress(addr)))
	return addr, nil
}

// Disconnect forgets a remembered address.
func (c *Connector) Disconnect() error {
	if !c.Remember {
		return nil
	}
	return config.ForgetWallet()
}

// RandomAddress returns "0x" followed by 40 lowercase hex digits read from r.
func RandomAddress(r io.Reader) (string, error) {
	var b [AddressHexLen / 2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return "", fmt.Errorf("generate address: %w", err)
	}
	return "0x" + hex.EncodeToString(b[:]), nil
}

// ValidAddress reports whether addr is 0x followed by 40 hex digits (any case).
func ValidAddress(addr string) bool {
	if len(addr) != 2+AddressHexLen || !strings.HasPrefix(addr, "0x") {
		return false
	}
	_, err := hex.DecodeString(addr[2:])
	return err == nil
}

// FormatAddress shortens addr to 0x1234...abcd. Short strings are returned as is.
func FormatAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
