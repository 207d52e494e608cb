/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

// CanvasConfig fixes the world geometry. Width, height and the minimum
// purchase size must be multiples of the grid size.
type CanvasConfig struct {
	Width           int `yaml:"width"`
	Height          int `yaml:"height"`
	GridSize        int `yaml:"grid_size"`
	MinPurchaseSize int `yaml:"min_purchase_size"`
}

type ViewConfig struct {
	MinZoom               float64 `yaml:"min_zoom"`
	MaxZoom               float64 `yaml:"max_zoom"`
	ZoomSensitivity       float64 `yaml:"zoom_sensitivity"`
	GridVisibleScale      float64 `yaml:"grid_visible_scale"`
	LabelVisibleScale     float64 `yaml:"label_visible_scale"`
	DimensionVisibleScale float64 `yaml:"dimension_visible_scale"`
	FitMargin             float64 `yaml:"fit_margin"`
	PanMargin             float64 `yaml:"pan_margin"`
	PanModifier           string  `yaml:"pan_modifier"` // alt | shift | ctrl | super
}

// ColorsConfig holds CSS style color tokens.
type ColorsConfig struct {
	Viewport        string `yaml:"viewport"`
	Background      string `yaml:"background"`
	Border          string `yaml:"border"`
	Grid            string `yaml:"grid"`
	Selection       string `yaml:"selection"`
	SelectionBorder string `yaml:"selection_border"`
	Overlap         string `yaml:"overlap"`
	OverlapBorder   string `yaml:"overlap_border"`
	Text            string `yaml:"text"`
}

type MarketConfig struct {
	PricePerPixel string `yaml:"price_per_pixel"` // decimal string, avoids float drift
	Currency      string `yaml:"currency"`
	Treasury      string `yaml:"treasury"`
	MintDelayMs   int    `yaml:"mint_delay_ms"`
}

type WalletConfig struct {
	ConnectDelayMs int  `yaml:"connect_delay_ms"`
	Remember       bool `yaml:"remember"`
}

type ImagesConfig struct {
	PreviewCache   string `yaml:"preview_cache"` // sqlite path; empty disables the disk cache
	FetchTimeoutMs int    `yaml:"fetch_timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	View          ViewConfig    `yaml:"view"`
	Colors        ColorsConfig  `yaml:"colors"`
	Market        MarketConfig  `yaml:"market"`
	Wallet        WalletConfig  `yaml:"wallet"`
	Images        ImagesConfig  `yaml:"images"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "dark"},
		Canvas:        CanvasConfig{Width: 1080, Height: 1920, GridSize: 10, MinPurchaseSize: 10},
		View: ViewConfig{
			MinZoom: 0.05, MaxZoom: 50, ZoomSensitivity: 0.001,
			GridVisibleScale: 4, LabelVisibleScale: 0.3, DimensionVisibleScale: 0.8,
			FitMargin: 0.9, PanMargin: 40, PanModifier: "alt",
		},
		Colors: ColorsConfig{
			Viewport:        "#020617",
			Background:      "#0f172a",
			Border:          "#334155",
			Grid:            "#1e293b",
			Selection:       "rgba(59, 130, 246, 0.4)",
			SelectionBorder: "#3b82f6",
			Overlap:         "rgba(239, 68, 68, 0.4)",
			OverlapBorder:   "#ef4444",
			Text:            "white",
		},
		Market: MarketConfig{
			PricePerPixel: "0.00035",
			Currency:      "ETH",
			Treasury:      "0x4C6250369Ff5fdA67B9E737a3955532a8Ad485c4",
			MintDelayMs:   3500,
		},
		Wallet:  WalletConfig{ConnectDelayMs: 1200, Remember: true},
		Images:  ImagesConfig{PreviewCache: "", FetchTimeoutMs: 15000},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "EM_CONFIG"
	EnvTelemetryOptIn = "EM_TELEMETRY_OPT_IN"
	EnvPricePerPixel  = "EM_PRICE_PER_PIXEL"
	EnvTreasury       = "EM_TREASURY"
	EnvMintDelayMs    = "EM_MINT_DELAY_MS"
	EnvWalletDelayMs  = "EM_WALLET_DELAY_MS"
	EnvPreviewCache   = "EM_PREVIEW_CACHE"
	EnvPanModifier    = "EM_PAN_MODIFIER"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "EM_LOG_LEVEL"
	EnvLogFormat = "EM_LOG_FORMAT"
	EnvLogSource = "EM_LOG_SOURCE"
	EnvLogFile   = "EM_LOG_FILE"
)

// ConfigPath returns the per-user config file path. EM_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "EthMillion")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "EthMillion")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "ethmillion")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and env overrides.
// The remembered wallet address comes from the OS keychain and is returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	var addr string
	if cfg.Wallet.Remember {
		addr, _ = RememberedWallet()
	}
	return cfg, addr, nil
}

// Save writes the user config YAML and remembers the wallet address when non-empty.
func Save(cfg AppConfig, wallet string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if wallet != "" && cfg.Wallet.Remember {
		return RememberWallet(wallet)
	}
	return nil
}

var (
	ErrGeometry = errors.New("invalid canvas geometry")
	ErrZoom     = errors.New("invalid zoom range")
	ErrPrice    = errors.New("invalid price per pixel")
)

// Validate rejects configurations the canvas cannot honor.
func (c AppConfig) Validate() error {
	cv := c.Canvas
	if cv.GridSize <= 0 || cv.Width <= 0 || cv.Height <= 0 || cv.MinPurchaseSize <= 0 {
		return fmt.Errorf("%w: sizes must be positive", ErrGeometry)
	}
	if cv.Width%cv.GridSize != 0 || cv.Height%cv.GridSize != 0 {
		return fmt.Errorf("%w: %dx%d is not a multiple of grid %d", ErrGeometry, cv.Width, cv.Height, cv.GridSize)
	}
	if cv.MinPurchaseSize%cv.GridSize != 0 {
		return fmt.Errorf("%w: min purchase size %d is not a multiple of grid %d", ErrGeometry, cv.MinPurchaseSize, cv.GridSize)
	}
	v := c.View
	if v.MinZoom <= 0 || v.MaxZoom < v.MinZoom {
		return fmt.Errorf("%w: [%g, %g]", ErrZoom, v.MinZoom, v.MaxZoom)
	}
	if _, err := c.Market.Price(); err != nil {
		return err
	}
	return nil
}

// Price parses the configured price per pixel.
func (m MarketConfig) Price() (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(m.PricePerPixel))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrPrice, m.PricePerPixel)
	}
	if p.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", ErrPrice, m.PricePerPixel)
	}
	return p, nil
}

func (m MarketConfig) MintDelay() time.Duration { return time.Duration(m.MintDelayMs) * time.Millisecond }

func (w WalletConfig) ConnectDelay() time.Duration {
	return time.Duration(w.ConnectDelayMs) * time.Millisecond
}

func (i ImagesConfig) FetchTimeout() time.Duration {
	if i.FetchTimeoutMs <= 0 {
		return time.Duration(Defaults().Images.FetchTimeoutMs) * time.Millisecond
	}
	return time.Duration(i.FetchTimeoutMs) * time.Millisecond
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn

	setInt(&dst.Canvas.Width, src.Canvas.Width)
	setInt(&dst.Canvas.Height, src.Canvas.Height)
	setInt(&dst.Canvas.GridSize, src.Canvas.GridSize)
	setInt(&dst.Canvas.MinPurchaseSize, src.Canvas.MinPurchaseSize)

	setFloat(&dst.View.MinZoom, src.View.MinZoom)
	setFloat(&dst.View.MaxZoom, src.View.MaxZoom)
	setFloat(&dst.View.ZoomSensitivity, src.View.ZoomSensitivity)
	setFloat(&dst.View.GridVisibleScale, src.View.GridVisibleScale)
	setFloat(&dst.View.LabelVisibleScale, src.View.LabelVisibleScale)
	setFloat(&dst.View.DimensionVisibleScale, src.View.DimensionVisibleScale)
	setFloat(&dst.View.FitMargin, src.View.FitMargin)
	setFloat(&dst.View.PanMargin, src.View.PanMargin)
	setString(&dst.View.PanModifier, strings.ToLower(src.View.PanModifier))

	setString(&dst.Colors.Viewport, src.Colors.Viewport)
	setString(&dst.Colors.Background, src.Colors.Background)
	setString(&dst.Colors.Border, src.Colors.Border)
	setString(&dst.Colors.Grid, src.Colors.Grid)
	setString(&dst.Colors.Selection, src.Colors.Selection)
	setString(&dst.Colors.SelectionBorder, src.Colors.SelectionBorder)
	setString(&dst.Colors.Overlap, src.Colors.Overlap)
	setString(&dst.Colors.OverlapBorder, src.Colors.OverlapBorder)
	setString(&dst.Colors.Text, src.Colors.Text)

	setString(&dst.Market.PricePerPixel, src.Market.PricePerPixel)
	setString(&dst.Market.Currency, src.Market.Currency)
	setString(&dst.Market.Treasury, src.Market.Treasury)
	setInt(&dst.Market.MintDelayMs, src.Market.MintDelayMs)

	setInt(&dst.Wallet.ConnectDelayMs, src.Wallet.ConnectDelayMs)
	dst.Wallet.Remember = src.Wallet.Remember

	setString(&dst.Images.PreviewCache, src.Images.PreviewCache)
	setInt(&dst.Images.FetchTimeoutMs, src.Images.FetchTimeoutMs)

	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func setString(dst *string, v string) {
	if s := strings.TrimSpace(v); s != "" {
		*dst = s
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPricePerPixel)); v != "" {
		cfg.Market.PricePerPixel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTreasury)); v != "" {
		cfg.Market.Treasury = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMintDelayMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Market.MintDelayMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvWalletDelayMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Wallet.ConnectDelayMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvPreviewCache)); v != "" {
		cfg.Images.PreviewCache = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPanModifier)); v != "" {
		cfg.View.PanModifier = strings.ToLower(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env := map[string]string{
		"general.telemetry_opt_in": EnvTelemetryOptIn,
		"market.price_per_pixel":   EnvPricePerPixel,
		"market.treasury":          EnvTreasury,
		"market.mint_delay_ms":     EnvMintDelayMs,
		"wallet.connect_delay_ms":  EnvWalletDelayMs,
		"images.preview_cache":     EnvPreviewCache,
		"view.pan_modifier":        EnvPanModifier,
		"logging.level":            EnvLogLevel,
		"logging.format":           EnvLogFormat,
		"logging.source":           EnvLogSource,
		"logging.file":             EnvLogFile,
	}[key]
	if env != "" && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
