//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"runtime"
	"strings"
	"unicode/utf8"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

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
	"ethmillion/internal/version"
	"ethmillion/internal/wallet"
)

// Run starts the Fyne desktop UI: the wall canvas with a header, a selection
// drawer and the purchase flow.
func Run(opt Options) error {
	applog.Init(applog.FromEnv())
	cfg, remembered, err := config.Load()
	if err != nil {
		return err
	}
	applog.Init(applog.OptionsFrom(cfg.Logging))
	telemetry.NewDefault(telemetry.FromConfig(cfg))
	defer telemetry.Flush(context.Background())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("blocks", opt.BlocksPath))

	sess, err := session.Open(cfg, session.Options{BlocksPath: opt.BlocksPath, Wallet: remembered})
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			l.Warn("close session", slog.Any("err", err))
		}
	}()
	defer crash.Recover(sess.Canvas)

	fyneApp := app.NewWithID("ethmillion")
	w := fyneApp.NewWindow("EthMillion")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wall := NewWallCanvas(sess.Canvas)
	wall.OnOpenLink = func(link string) {
		u, err := url.Parse(link)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if err := fyneApp.OpenURL(u); err != nil {
			l.Warn("open link", slog.String("url", link), slog.Any("err", err))
		}
	}

	// Header
	stats := widget.NewLabel("")
	updateStats := func() { stats.SetText(headerText(sess.Ledger.Stats())) }
	connectBtn := widget.NewButton(walletButtonText(sess.WalletAddress(), false), nil)

	// Selection drawer
	drawerTitle := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	drawerSize := widget.NewLabel("")
	drawerPrice := widget.NewLabel("")
	drawerHint := widget.NewLabel("")
	buyBtn := widget.NewButton("Buy Pixels", nil)
	buyBtn.Importance = widget.HighImportance
	clearBtn := widget.NewButton("Clear", func() { sess.Canvas.ClearSelection() })
	drawer := container.NewVBox(
		widget.NewSeparator(),
		container.NewHBox(drawerTitle, drawerSize, drawerPrice),
		drawerHint,
		container.NewHBox(clearBtn, buyBtn),
	)
	drawer.Hide()

	updateDrawer := func(sel *domain.Selection) {
		if sel == nil {
			drawer.Hide()
			return
		}
		title, size := drawerText(sel)
		drawerTitle.SetText(title)
		drawerSize.SetText(size)
		if _, price, ok := sess.Quote(); ok {
			drawerPrice.SetText(price)
		}
		switch err := sess.CanPurchase(); {
		case err == nil:
			drawerHint.SetText("")
			buyBtn.Enable()
		case errors.Is(err, purchase.ErrSelectionActive):
			drawerHint.SetText("Release to finish the selection.")
			buyBtn.Disable()
		case errors.Is(err, purchase.ErrWalletNotConnected):
			drawerHint.SetText("Connect a wallet to buy this area.")
			buyBtn.Disable()
		default:
			drawerHint.SetText(err.Error())
			buyBtn.Disable()
		}
		drawer.Show()
	}
	sess.Canvas.OnSelectionChange(updateDrawer)

	connecting := false
	refreshWallet := func() {
		connectBtn.SetText(walletButtonText(sess.WalletAddress(), connecting))
		updateDrawer(sess.Canvas.Selection())
	}
	connectBtn.OnTapped = func() {
		if connecting {
			return
		}
		if addr := sess.WalletAddress(); addr != "" {
			dialog.ShowConfirm("Disconnect", "Disconnect "+wallet.FormatAddress(addr)+"?", func(ok bool) {
				if !ok {
					return
				}
				if err := sess.Disconnect(); err != nil {
					l.Warn("forget wallet", slog.Any("err", err))
				}
				refreshWallet()
			}, w)
			return
		}
		connecting = true
		refreshWallet()
		go func() {
			addr, err := sess.Connect(ctx)
			fyne.Do(func() {
				connecting = false
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						dialog.ShowError(err, w)
					}
				} else {
					l.Info("wallet connected", slog.String("wallet", wallet.FormatAddress(addr)))
				}
				refreshWallet()
			})
		}()
	}

	buyBtn.OnTapped = func() {
		showPurchaseDialog(w, func(d purchase.Design) {
			sel := sess.Canvas.Selection()
			prog := dialog.NewCustomWithoutButtons("Minting", container.NewVBox(
				widget.NewLabel("Waiting for the transaction to confirm..."),
				widget.NewProgressBarInfinite(),
			), w)
			prog.Show()
			go func() {
				rec, err := sess.Mint(ctx, sel, d)
				fyne.Do(func() {
					prog.Hide()
					if err != nil {
						dialog.ShowError(err, w)
						updateDrawer(sess.Canvas.Selection())
						return
					}
					if err := sess.Commit(rec); err != nil {
						dialog.ShowError(err, w)
					}
					updateStats()
					dialog.ShowInformation("Block minted", fmt.Sprintf("%g × %g px for %s\nPaid to %s",
						rec.Block.Width, rec.Block.Height, sess.Pricer.Format(rec.Price), wallet.FormatAddress(rec.Treasury)), w)
				})
			}()
		})
	}

	w.Canvas().SetOnTypedKey(func(k *fyne.KeyEvent) {
		switch k.Name {
		case fyne.KeyEscape:
			sess.Canvas.ClearSelection()
		case fyne.KeyF:
			sess.Canvas.Fit()
		}
	})

	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File", exportPNGItem(w, sess, l), exportPDFItem(w, sess, l)),
		fyne.NewMenu("View",
			fyne.NewMenuItem("Fit Canvas", func() { sess.Canvas.Fit() }),
			fyne.NewMenuItem("Clear Selection", func() { sess.Canvas.ClearSelection() }),
		),
		fyne.NewMenu("About", fyne.NewMenuItem("About EthMillion", func() {
			info := fmt.Sprintf("EthMillion\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nBlocks: %s",
				version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), blocksLabel(opt.BlocksPath))
			dialog.ShowInformation("About", info, w)
		})),
	))

	title := widget.NewLabelWithStyle("EthMillion", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	header := container.NewBorder(nil, nil, title, connectBtn, stats)
	w.SetContent(container.NewBorder(header, drawer, nil, nil, wall))
	updateStats()

	go func() {
		err := sess.Watch(ctx, func(fn func()) {
			fyne.Do(func() {
				fn()
				updateStats()
				updateDrawer(sess.Canvas.Selection())
			})
		})
		if err != nil {
			l.Warn("watch blocks", slog.Any("err", err))
		}
	}()

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		cancel()
		w.Close()
	})

	w.ShowAndRun()
	return nil
}

func showPurchaseDialog(w fyne.Window, submit func(purchase.Design)) {
	colorEntry := widget.NewEntry()
	colorEntry.SetText(purchase.DefaultColor)
	textEntry := widget.NewEntry()
	textEntry.SetPlaceHolder("Up to 20 characters")
	textEntry.Validator = func(s string) error {
		if utf8.RuneCountInString(s) > purchase.MaxTextRunes {
			return purchase.ErrTextTooLong
		}
		return nil
	}
	imageEntry := widget.NewEntry()
	imageEntry.SetPlaceHolder("https://... or a local file")
	browse := widget.NewButton("Browse…", func() {
		open := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if ur == nil {
				return
			}
			imageEntry.SetText(ur.URI().Path())
			_ = ur.Close()
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif"}))
		open.Show()
	})
	linkEntry := widget.NewEntry()
	linkEntry.SetPlaceHolder("https://...")

	form := dialog.NewForm("Customize Your Block", "Mint", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Color", colorEntry),
		widget.NewFormItem("Text", textEntry),
		widget.NewFormItem("Image", container.NewBorder(nil, nil, nil, browse, imageEntry)),
		widget.NewFormItem("Link", linkEntry),
	}, func(ok bool) {
		if !ok {
			return
		}
		d := purchase.Design{
			Color:    strings.TrimSpace(colorEntry.Text),
			Text:     textEntry.Text,
			ImageURL: strings.TrimSpace(imageEntry.Text),
			LinkURL:  strings.TrimSpace(linkEntry.Text),
		}
		if err := d.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		submit(d)
	}, w)
	form.Resize(fyne.NewSize(460, 0))
	form.Show()
}

func exportPNGItem(w fyne.Window, sess *session.Session, l *slog.Logger) *fyne.MenuItem {
	return fyne.NewMenuItem("Export PNG…", func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			ecfg, err := engine.ConfigFrom(sess.Config)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			r := render.New(ecfg.Render, sess.Images)
			if err := export.WritePNG(outPath, r, sess.Ledger.Blocks(), export.PNGOptions{Scale: 1}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			telemetry.ExportWritten("png")
			l.Info("exported png", slog.String("path", outPath))
			dialog.ShowInformation("Export PNG", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("ethmillion.png")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".png"}))
		save.Show()
	})
}

func exportPDFItem(w fyne.Window, sess *session.Session, l *slog.Logger) *fyne.MenuItem {
	return fyne.NewMenuItem("Export PDF…", func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			opt := export.DefaultPDFOptions()
			opt.Images = sess.Images
			if err := export.WritePDF(outPath, sess.Bounds, sess.Ledger.Blocks(), opt); err != nil {
				dialog.ShowError(err, w)
				return
			}
			telemetry.ExportWritten("pdf")
			l.Info("exported pdf", slog.String("path", outPath))
			dialog.ShowInformation("Export PDF", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("ethmillion.pdf")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".pdf"}))
		save.Show()
	})
}

func blocksLabel(path string) string {
	if path == "" {
		return "in memory"
	}
	if _, err := os.Stat(path); err != nil {
		return path + " (new)"
	}
	return path
}
