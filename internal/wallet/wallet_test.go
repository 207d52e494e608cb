/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package wallet

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"ethmillion/internal/config"

	"github.com/zalando/go-keyring"
)

var addrRE = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

func TestRandomAddressFormat(t *testing.T) {
	a, err := RandomAddress(bytes.NewReader(bytes.Repeat([]byte{0xab}, 20)))
	if err != nil {
		t.Fatalf("RandomAddress: %v", err)
	}
	if a != "0x"+string(bytes.Repeat([]byte("ab"), 20)) {
		t.Fatalf("address = %q", a)
	}
	if _, err := RandomAddress(bytes.NewReader([]byte{1, 2})); err == nil {
		t.Fatalf("expected error on short entropy")
	}
}

func TestConnectReturnsAddressAfterDelay(t *testing.T) {
	keyring.MockInit()
	c := &Connector{Delay: 20 * time.Millisecond}
	start := time.Now()
	a, err := c.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("connect returned before the delay")
	}
	if !addrRE.MatchString(a) || !ValidAddress(a) {
		t.Fatalf("bad address %q", a)
	}
	if _, err := config.RememberedWallet(); !errors.Is(err, config.ErrNoWallet) {
		t.Fatalf("address remembered without Remember: %v", err)
	}
}

func TestConnectCanceled(t *testing.T) {
	c := &Connector{Delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Connect(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConnectRemembers(t *testing.T) {
	keyring.MockInit()
	c := &Connector{Remember: true}
	first, err := c.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	second, err := c.Connect(context.Background())
	if err != nil || second != first {
		t.Fatalf("expected remembered %q, got %q (%v)", first, second, err)
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	third, _ := c.Connect(context.Background())
	if third == first {
		t.Fatalf("forgotten address reused")
	}
}

func TestFormatAddress(t *testing.T) {
	if got := FormatAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"); got != "0x71C7...976F" {
		t.Fatalf("FormatAddress = %q", got)
	}
	if got := FormatAddress("0x1234"); got != "0x1234" {
		t.Fatalf("short = %q", got)
	}
	if ValidAddress("0x123") || ValidAddress("1x"+string(bytes.Repeat([]byte("a"), 40))) || ValidAddress("0x"+string(bytes.Repeat([]byte("g"), 40))) {
		t.Fatalf("ValidAddress accepted junk")
	}
}
