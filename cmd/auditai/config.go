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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/sunyihoo/auditai/analysis"
	"github.com/sunyihoo/auditai/cmd/utils"
	"github.com/sunyihoo/auditai/compiler"
	"github.com/sunyihoo/auditai/deployer"
	"github.com/sunyihoo/auditai/server"
	"github.com/sunyihoo/auditai/wallet"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "<dumpfile (optional)>",
	Flags:       configFlags,
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type auditaiConfig struct {
	Analysis analysis.Config
	Compiler compiler.Config
	Deploy   deployer.Config
	Wallet   wallet.Config
	HTTP     server.Config
}

func defaultConfig() auditaiConfig {
	return auditaiConfig{
		Analysis: analysis.DefaultConfig,
		Compiler: compiler.DefaultConfig,
		Deploy:   deployer.DefaultConfig,
		Wallet:   wallet.DefaultConfig,
		HTTP:     server.DefaultConfig,
	}
}

func loadConfig(file string, cfg *auditaiConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the configuration: defaults first, then the config file,
// then the command line flags.
func makeConfig(ctx *cli.Context) (auditaiConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	utils.SetAnalysisConfig(ctx, &cfg.Analysis)
	utils.SetCompilerConfig(ctx, &cfg.Compiler)
	utils.SetDeployConfig(ctx, &cfg.Deploy)
	utils.SetWalletConfig(ctx, &cfg.Wallet)
	utils.SetHTTPConfig(ctx, &cfg.HTTP)
	return cfg, nil
}

func writeConfig(w io.Writer, cfg *auditaiConfig) error {
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	// API keys are never written out.
	cfg.Analysis.APIKey = ""

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	return writeConfig(dump, &cfg)
}
