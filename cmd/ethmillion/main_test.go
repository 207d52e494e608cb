/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"ethmillion/internal/config"
	applog "ethmillion/internal/log"
	"ethmillion/internal/storage"
)

func isolate(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigPath, filepath.Join(dir, "config.yaml"))
	return dir
}

func TestAbsPath(t *testing.T) {
	if _, err := absPath("  "); err == nil {
		t.Fatalf("empty path accepted")
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	got, err := absPath("blocks.json")
	if err != nil || got != filepath.Join(cwd, "blocks.json") {
		t.Fatalf("absPath = %q, %v", got, err)
	}
}

func TestRunUsageErrors(t *testing.T) {
	l := applog.WithComponent("cli")
	for _, c := range []struct {
		cmd  string
		args []string
	}{
		{"bogus", nil},
		{"stats", nil},
		{"quote", []string{"1", "2"}},
		{"buy", []string{"blocks.json", "0", "0"}},
		{"render", []string{"blocks.json"}},
		{"pdf", nil},
	} {
		if err := run(c.cmd, c.args, l); !errors.Is(err, errUsage) {
			t.Errorf("run(%s %v) = %v, want usage error", c.cmd, c.args, err)
		}
	}
}

func TestRunReportsBadInput(t *testing.T) {
	isolate(t)
	l := applog.WithComponent("cli")
	if err := run("quote", []string{"0", "0", "w", "10"}, l); err == nil || !strings.Contains(err.Error(), "w:") {
		t.Fatalf("quote with bad width = %v", err)
	}
	if err := run("stats", []string{""}, l); err == nil || !strings.Contains(err.Error(), "path is empty") {
		t.Fatalf("stats with empty path = %v", err)
	}
	if err := run("render", []string{"blocks.json", ""}, l); err == nil || !strings.Contains(err.Error(), "path is empty") {
		t.Fatalf("render with empty output = %v", err)
	}
}

func TestRunStatsAndRender(t *testing.T) {
	dir := isolate(t)
	l := applog.WithComponent("cli")
	blocks := filepath.Join(dir, "blocks.json")
	if err := storage.SaveBlocks(blocks, storage.DefaultBlocks()); err != nil {
		t.Fatal(err)
	}
	if err := run("stats", []string{blocks}, l); err != nil {
		t.Fatalf("stats: %v", err)
	}
	out := filepath.Join(dir, "wall.png")
	if err := run("render", []string{blocks, out, "0.1"}, l); err != nil {
		t.Fatalf("render: %v", err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Fatalf("png not written: %v", err)
	}
}
