/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"ethmillion/internal/config"
	"ethmillion/internal/crash"
	"ethmillion/internal/domain"
	"ethmillion/internal/engine"
	"ethmillion/internal/export"
	applog "ethmillion/internal/log"
	"ethmillion/internal/purchase"
	"ethmillion/internal/render"
	"ethmillion/internal/session"
	"ethmillion/internal/telemetry"
	"ethmillion/internal/ui"
	"ethmillion/internal/version"
	"ethmillion/internal/wallet"
)

// errUsage makes main print the usage text and exit with code 2.
var errUsage = errors.New("usage")

func usage() {
	fmt.Println("EthMillion - pixel wall canvas")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ethmillion version|-v|--version                      Show version")
	fmt.Println("  ethmillion ui [<blocks.json>]                        Launch desktop UI (build with -tags fyne for full UI)")
	fmt.Println("  ethmillion stats <blocks.json>                       Print sold pixels and owner totals")
	fmt.Println("  ethmillion quote <x> <y> <w> <h>                     Price an area")
	fmt.Println("  ethmillion buy <blocks.json> <x> <y> <w> <h> [color] [text] [link]")
	fmt.Println("                                                       Mint an area with a simulated wallet")
	fmt.Println("  ethmillion render <blocks.json> <out.png> [scale]    Export the wall as PNG")
	fmt.Println("  ethmillion pdf <blocks.json> <out.pdf>               Export the wall as PDF")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer crash.Recover(nil)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	if err := run(args[1], args[2:], l); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(2)
		}
		l.Error("command failed", slog.String("cmd", args[1]), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, l *slog.Logger) error {
	switch cmd {
	case "version", "--version", "-v":
		fmt.Println("EthMillion")
		fmt.Println(version.String())
		return nil
	case "ui":
		var path string
		if len(args) >= 1 {
			path = args[0]
		}
		return ui.Run(ui.Options{BlocksPath: path})
	case "stats":
		if len(args) < 1 {
			fmt.Println("stats requires <blocks.json>")
			return errUsage
		}
		return withSession(args[0], l, func(_ context.Context, s *session.Session) error {
			st := s.Ledger.Stats()
			fmt.Printf("Sold: %d / %d pixels (%s%%)\n", st.Sold, st.Total, st.Percent)
			fmt.Printf("Blocks: %d\n", len(s.Ledger.Blocks()))
			for _, o := range s.Ledger.OwnerTotals() {
				fmt.Printf("  %s  %d px in %d block(s)\n", wallet.FormatAddress(o.Owner), o.Pixels, o.Blocks)
			}
			return nil
		})
	case "quote":
		if len(args) < 4 {
			fmt.Println("quote requires <x> <y> <w> <h>")
			return errUsage
		}
		r, err := parseRect(args[:4])
		if err != nil {
			return err
		}
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := purchase.NewPricer(cfg.Market)
		if err != nil {
			return err
		}
		fmt.Printf("%g × %g px = %s\n", r.W, r.H, p.Format(p.Quote(r)))
		return nil
	case "buy":
		if len(args) < 5 {
			fmt.Println("buy requires <blocks.json> <x> <y> <w> <h>")
			return errUsage
		}
		r, err := parseRect(args[1:5])
		if err != nil {
			return err
		}
		d := purchase.Design{Color: purchase.DefaultColor}
		if len(args) > 5 {
			d.Color = args[5]
		}
		if len(args) > 6 {
			d.Text = args[6]
		}
		if len(args) > 7 {
			d.LinkURL = args[7]
		}
		return withSession(args[0], l, func(ctx context.Context, s *session.Session) error {
			return buy(ctx, s, r, d, l)
		})
	case "render":
		if len(args) < 2 {
			fmt.Println("render requires <blocks.json> and <out.png>")
			return errUsage
		}
		scale := 1.0
		if len(args) > 2 {
			v, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("scale: %w", err)
			}
			scale = v
		}
		out, err := absPath(args[1])
		if err != nil {
			return err
		}
		return withSession(args[0], l, func(_ context.Context, s *session.Session) error {
			ecfg, err := engine.ConfigFrom(s.Config)
			if err != nil {
				return err
			}
			preloadImages(s)
			r := render.New(ecfg.Render, s.Images)
			if err := export.WritePNG(out, r, s.Ledger.Blocks(), export.PNGOptions{Scale: scale}); err != nil {
				return err
			}
			telemetry.ExportWritten("png")
			fmt.Println("Exported to", out)
			return nil
		})
	case "pdf":
		if len(args) < 2 {
			fmt.Println("pdf requires <blocks.json> and <out.pdf>")
			return errUsage
		}
		out, err := absPath(args[1])
		if err != nil {
			return err
		}
		return withSession(args[0], l, func(_ context.Context, s *session.Session) error {
			preloadImages(s)
			opt := export.DefaultPDFOptions()
			opt.Images = s.Images
			if err := export.WritePDF(out, s.Bounds, s.Ledger.Blocks(), opt); err != nil {
				return err
			}
			telemetry.ExportWritten("pdf")
			fmt.Println("Exported to", out)
			return nil
		})
	}
	return errUsage
}

func loadConfig() (config.AppConfig, string, error) {
	cfg, addr, err := config.Load()
	if err != nil {
		return cfg, "", err
	}
	applog.Init(applog.OptionsFrom(cfg.Logging))
	telemetry.NewDefault(telemetry.FromConfig(cfg))
	return cfg, addr, nil
}

// withSession opens a session on the blocks file, runs fn with a context that
// is cancelled on Ctrl-C, and closes the session.
func withSession(blocksPath string, l *slog.Logger, fn func(context.Context, *session.Session) error) error {
	cfg, addr, err := loadConfig()
	if err != nil {
		return err
	}
	abs, err := absPath(blocksPath)
	if err != nil {
		return err
	}
	l.Info("open blocks", slog.String("path", abs))
	s, err := session.Open(cfg, session.Options{BlocksPath: abs, Wallet: addr})
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			l.Warn("close session", slog.Any("err", err))
		}
	}()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer telemetry.Flush(ctx)
	return fn(ctx, s)
}

// buy selects r by dragging across it with an identity camera, then runs the
// purchase flow.
func buy(ctx context.Context, s *session.Session, r domain.Rect, d purchase.Design, l *slog.Logger) error {
	if s.WalletAddress() == "" {
		fmt.Println("Connecting wallet...")
		if _, err := s.Connect(ctx); err != nil {
			return err
		}
	}
	fmt.Println("Wallet:", wallet.FormatAddress(s.WalletAddress()))

	s.Canvas.SetCamera(domain.Camera{Scale: 1})
	from := domain.Point{X: r.X, Y: r.Y}
	to := domain.Point{X: r.X + r.W, Y: r.Y + r.H}
	s.Canvas.Pointer(engine.PointerEvent{Kind: engine.PointerDown, Pos: from, Button: engine.ButtonPrimary})
	s.Canvas.Pointer(engine.PointerEvent{Kind: engine.PointerMove, Pos: to})
	s.Canvas.Pointer(engine.PointerEvent{Kind: engine.PointerUp, Pos: to})
	if err := s.CanPurchase(); err != nil {
		return err
	}
	_, price, _ := s.Quote()
	fmt.Printf("Minting %s for %s...\n", rectString(s.Canvas.Selection().Normalize()), price)
	rec, err := s.Purchase(ctx, d)
	if err != nil {
		return err
	}
	l.Info("minted", slog.String("id", rec.Block.ID))
	fmt.Printf("Minted block %s, paid %s to %s\n", rec.Block.ID, s.Pricer.Format(rec.Price), wallet.FormatAddress(rec.Treasury))
	return nil
}

// preloadImages starts every block image and waits for the loads to settle,
// so exports include them.
func preloadImages(s *session.Session) {
	for _, b := range s.Ledger.Blocks() {
		if b.ImageURL != "" {
			s.Images.Get(b.ImageURL)
		}
	}
	s.Images.Wait()
}

func absPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("path is empty")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}

func parseRect(args []string) (domain.Rect, error) {
	var v [4]float64
	names := [4]string{"x", "y", "w", "h"}
	for i := range v {
		f, err := strconv.ParseFloat(strings.TrimSpace(args[i]), 64)
		if err != nil {
			return domain.Rect{}, fmt.Errorf("%s: %w", names[i], err)
		}
		v[i] = f
	}
	r := domain.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
	if r.Empty() {
		return domain.Rect{}, fmt.Errorf("area %gx%g is empty", r.W, r.H)
	}
	return r, nil
}

func rectString(r domain.Rect) string {
	return fmt.Sprintf("%g × %g px at (%g, %g)", r.W, r.H, r.X, r.Y)
}
