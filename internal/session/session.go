/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session wires the canvas engine to its collaborators: the block
// ledger and its seed file, pricing and minting, the wallet, and the image
// cache with its on-disk preview store. Both the CLI and the desktop UI run
// on top of a Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"ethmillion/internal/config"
	"ethmillion/internal/domain"
	"ethmillion/internal/engine"
	"ethmillion/internal/imagecache"
	applog "ethmillion/internal/log"
	"ethmillion/internal/purchase"
	"ethmillion/internal/storage"
	"ethmillion/internal/telemetry"
	"ethmillion/internal/wallet"

	"github.com/shopspring/decimal"
)

// PreviewCacheAuto selects storage.DefaultPreviewPath for images.preview_cache.
const PreviewCacheAuto = "auto"

// Options are the per-run inputs that do not live in the config file.
type Options struct {
	// BlocksPath is the committed-blocks JSON file. Empty keeps blocks in memory,
	// seeded with the genesis block.
	BlocksPath string
	// Wallet is a previously remembered address, as returned by config.Load.
	Wallet string
	// Fetcher overrides the network/file image fetcher. Mainly for tests.
	Fetcher imagecache.Fetcher
}

// Session is the application state behind one window or CLI invocation.
// Canvas must only be touched from one goroutine; everything else is safe
// for concurrent use.
type Session struct {
	Config   config.AppConfig
	Bounds   domain.Bounds
	Ledger   *purchase.Ledger
	Pricer   purchase.Pricer
	Minter   *purchase.Minter
	Wallets  *wallet.Connector
	Images   *imagecache.Cache
	Previews *storage.PreviewStore // nil when the disk cache is disabled
	Canvas   *engine.Canvas

	blocksPath string
	log        *slog.Logger

	mu     sync.RWMutex
	wallet string
}

// Open builds a session from a validated config.
func Open(cfg config.AppConfig, opt Options) (*Session, error) {
	l := applog.WithComponent("session")
	ecfg, err := engine.ConfigFrom(cfg)
	if err != nil {
		return nil, err
	}
	pricer, err := purchase.NewPricer(cfg.Market)
	if err != nil {
		return nil, err
	}

	blocks, err := loadSeed(opt.BlocksPath, ecfg.Bounds)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Config:     cfg,
		Bounds:     ecfg.Bounds,
		Pricer:     pricer,
		Wallets:    wallet.NewConnector(cfg.Wallet),
		blocksPath: opt.BlocksPath,
		log:        l,
	}
	if wallet.ValidAddress(opt.Wallet) {
		s.wallet = opt.Wallet
	}
	s.Ledger = purchase.NewLedger(ecfg.Bounds, blocks)
	s.Minter = purchase.NewMinter(s.Ledger, pricer, cfg.Market.Treasury, cfg.Market.MintDelay(), float64(cfg.Canvas.MinPurchaseSize))

	if p := previewPath(cfg.Images.PreviewCache); p != "" {
		ps, err := storage.OpenPreviewStore(p)
		if err != nil {
			// the cache is an optimization; run without it
			l.Warn("preview store unavailable", slog.String("path", p), slog.Any("err", err))
		} else {
			s.Previews = ps
		}
	}

	var next imagecache.Fetcher = imagecache.Router{}
	if opt.Fetcher != nil {
		next = opt.Fetcher
	}
	var fetch imagecache.Fetcher = next
	if s.Previews != nil {
		fetch = imagecache.Stored{Store: s.Previews, Next: next}
	}
	s.Images = imagecache.New(fetch, imagecache.WithTimeout(cfg.Images.FetchTimeout()))

	s.Canvas = engine.New(ecfg, engine.WithImages(s.Images))
	s.Canvas.SetBlocks(s.Ledger.Blocks())
	l.Info("session ready", slog.Int("blocks", len(blocks)), slog.Bool("preview_cache", s.Previews != nil))
	return s, nil
}

func loadSeed(path string, b domain.Bounds) ([]domain.CommittedBlock, error) {
	if strings.TrimSpace(path) == "" {
		return storage.DefaultBlocks(), nil
	}
	blocks, err := storage.LoadBlocks(path, b)
	if errors.Is(err, fs.ErrNotExist) {
		return storage.DefaultBlocks(), nil
	}
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func previewPath(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, PreviewCacheAuto) {
		return storage.DefaultPreviewPath()
	}
	return v
}

// Close stops pending image loads and closes the preview store.
func (s *Session) Close() error {
	s.Images.Close()
	if s.Previews != nil {
		return s.Previews.Close()
	}
	return nil
}

// WalletAddress returns the connected address, or "".
func (s *Session) WalletAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet
}

// Connect runs the wallet handshake and remembers the result.
func (s *Session) Connect(ctx context.Context) (string, error) {
	addr, err := s.Wallets.Connect(ctx)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.wallet = addr
	s.mu.Unlock()
	telemetry.WalletConnected()
	return addr, nil
}

// Disconnect drops the wallet and forgets it if it was remembered.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	s.wallet = ""
	s.mu.Unlock()
	return s.Wallets.Disconnect()
}

// Quote prices the current selection; ok is false when there is none.
func (s *Session) Quote() (price decimal.Decimal, formatted string, ok bool) {
	sel := s.Canvas.Selection()
	if sel == nil {
		return decimal.Zero, "", false
	}
	p := s.Pricer.Quote(sel.Normalize())
	return p, s.Pricer.Format(p), true
}

// CanPurchase reports why the current selection cannot be bought, or nil.
func (s *Session) CanPurchase() error {
	return purchase.Validate(s.Canvas.Selection(), s.Ledger.Blocks(), s.WalletAddress(), float64(s.Config.Canvas.MinPurchaseSize))
}

// Mint runs the simulated transaction for sel. It does not touch the canvas
// and may run on any goroutine; hand the receipt to Commit afterwards.
func (s *Session) Mint(ctx context.Context, sel *domain.Selection, d purchase.Design) (purchase.Receipt, error) {
	owner := s.WalletAddress()
	ctx = applog.WithWallet(ctx, owner)
	return s.Minter.Mint(ctx, sel, d, owner)
}

// Commit shows a minted block on the canvas, clears the selection and
// persists the block set. Call it on the canvas goroutine.
func (s *Session) Commit(rec purchase.Receipt) error {
	s.Canvas.CommitSelection()
	s.Canvas.SetBlocks(s.Ledger.Blocks())
	if rec.Block.ImageURL != "" {
		s.Images.Get(rec.Block.ImageURL)
	}
	telemetry.BlockMinted(int64(rec.Block.Width * rec.Block.Height))
	return s.Save()
}

// Purchase is Mint followed by Commit on the calling goroutine.
func (s *Session) Purchase(ctx context.Context, d purchase.Design) (purchase.Receipt, error) {
	rec, err := s.Mint(ctx, s.Canvas.Selection(), d)
	if err != nil {
		return purchase.Receipt{}, err
	}
	return rec, s.Commit(rec)
}

// Save writes the ledger to the blocks file, if one is configured.
func (s *Session) Save() error {
	if s.blocksPath == "" {
		return nil
	}
	if err := storage.SaveBlocks(s.blocksPath, s.Ledger.Blocks()); err != nil {
		return fmt.Errorf("save blocks: %w", err)
	}
	return nil
}

// Watch reloads the blocks file on external edits until ctx is done. apply
// runs a canvas update on the canvas goroutine (fyne.Do in the UI).
func (s *Session) Watch(ctx context.Context, apply func(func())) error {
	if s.blocksPath == "" {
		<-ctx.Done()
		return nil
	}
	return storage.WatchBlocks(ctx, s.blocksPath, s.Bounds, func(bs []domain.CommittedBlock) {
		s.Ledger.Replace(bs)
		apply(func() { s.Canvas.SetBlocks(s.Ledger.Blocks()) })
	})
}
