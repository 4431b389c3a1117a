// Copyright 2026 The auditai Authors
// This file is part of auditai.
//
// auditai is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// auditai is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with auditai. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runWithConfig(t *testing.T, args ...string) auditaiConfig {
	t.Helper()
	var cfg auditaiConfig
	app := &cli.App{
		Flags: configFlags,
		Action: func(ctx *cli.Context) error {
			var err error
			cfg, err = makeConfig(ctx)
			return err
		},
	}
	require.NoError(t, app.Run(append([]string{"auditai"}, args...)))
	return cfg
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.Wallet.Chain = "scroll-sepolia"
	cfg.Compiler.Optimize = true
	cfg.HTTP.CorsAllowedOrigins = []string{"http://localhost:3000"}

	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, &cfg))

	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0644))

	loaded := defaultConfig()
	require.NoError(t, loadConfig(file, &loaded))
	assert.Equal(t, cfg, loaded)
}

func TestConfigUnknownField(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, []byte("[Wallet]\nChainName = \"dev\"\n"), 0644))

	cfg := defaultConfig()
	err := loadConfig(file, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), file)
	assert.Contains(t, err.Error(), "field 'ChainName' is not defined in wallet.Config")
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	contents := `
[Wallet]
Chain = "sepolia"
Account = "0x71562b71999873DB5b286dF957af199Ec94617F7"

[Deploy]
ConfirmTimeout = 60000000000

[HTTP]
Port = 9000
`
	require.NoError(t, os.WriteFile(file, []byte(contents), 0644))

	cfg := runWithConfig(t, "--config", file, "--chain", "scroll", "--http.vhosts", "a.example, b.example", "--solc.runs", "1000")
	assert.Equal(t, "scroll", cfg.Wallet.Chain)
	assert.Equal(t, "0x71562b71999873DB5b286dF957af199Ec94617F7", cfg.Wallet.Account)
	assert.Equal(t, time.Minute, cfg.Deploy.ConfirmTimeout)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.HTTP.VirtualHosts)
	assert.Equal(t, 1000, cfg.Compiler.OptimizeRuns)

	// Untouched sections keep their defaults.
	assert.Equal(t, defaultConfig().Analysis, cfg.Analysis)
}

func TestDumpConfigOmitsAPIKey(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dump.toml")
	app := &cli.App{Commands: []*cli.Command{dumpConfigCommand}}
	require.NoError(t, app.Run([]string{"auditai", "dumpconfig", "--analysis.apikey", "sk-secret", "--chain", "sepolia", out}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")
	assert.Contains(t, string(data), `Chain = "sepolia"`)
	assert.Contains(t, string(data), "[Analysis]")
}

func TestSignerConfigured(t *testing.T) {
	cfg := defaultConfig()
	assert.False(t, signerConfigured(&cfg.Wallet))
	cfg.Wallet.KeyFile = "key.hex"
	assert.True(t, signerConfigured(&cfg.Wallet))
}
