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

// auditai audits, compiles and deploys smart contracts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/console/prompt"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/sunyihoo/auditai/analysis"
	"github.com/sunyihoo/auditai/cmd/utils"
	"github.com/sunyihoo/auditai/compiler"
	"github.com/sunyihoo/auditai/deployer"
	"github.com/sunyihoo/auditai/internal/debug"
	"github.com/sunyihoo/auditai/internal/flags"
	"github.com/sunyihoo/auditai/internal/version"
	"github.com/sunyihoo/auditai/params"
	"github.com/sunyihoo/auditai/pipeline"
	"github.com/sunyihoo/auditai/server"
	"github.com/sunyihoo/auditai/wallet"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	clientIdentifier = "auditai" // Client identifier used in logs and the version string
)

var (
	configFlags = flags.Merge(
		[]cli.Flag{utils.ConfigFileFlag},
		utils.AnalysisFlags,
		utils.CompilerFlags,
		utils.WalletFlags,
		utils.DeployFlags,
		utils.HTTPFlags,
	)
	app = flags.NewApp("the smart contract audit and deployment tool")
)

func init() {
	app.Action = auditai
	app.Commands = []*cli.Command{
		// See contractcmd.go:
		auditCommand,
		compileCommand,
		deployCommand,
		// See config.go:
		dumpConfigCommand,
		// See misccmd.go:
		versionCommand,
	}
	app.Flags = flags.Merge(configFlags, []cli.Flag{utils.MetricsEnabledFlag}, debug.Flags)
	flags.AutoEnvVars(app.Flags, "AUDITAI")

	app.Before = func(ctx *cli.Context) error {
		if err := debug.Setup(ctx); err != nil {
			return err
		}
		flags.CheckEnvVars(ctx, app.Flags, "AUDITAI")
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		prompt.Stdin.Close() // Resets terminal mode.
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// auditai is the main entry point into the system if no special subcommand is
// run. It serves the HTTP API until interrupted.
func auditai(ctx *cli.Context) error {
	if args := ctx.Args().Slice(); len(args) > 0 {
		return fmt.Errorf("invalid command: %s", args[0])
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	svc, err := makeServices(ctx, &cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A nil *wallet.Manager must not end up in the server's Wallet interface.
	var api *server.Server
	if svc.wallet != nil {
		api = server.New(cfg.HTTP, svc.pipeline, svc.wallet)
	} else {
		api = server.New(cfg.HTTP, svc.pipeline, nil)
	}
	g, gctx := errgroup.WithContext(sigctx)
	g.Go(func() error {
		return api.Serve(gctx)
	})
	if svc.wallet != nil && cfg.Wallet.AutoConnect {
		g.Go(func() error {
			if err := svc.connect(gctx, &cfg.Wallet); err != nil {
				log.Warn("Wallet auto-connect failed", "err", err)
			}
			return nil
		})
	}
	log.Info("Starting "+clientIdentifier, "version", app.Version, "chain", cfg.Wallet.Chain)
	err = g.Wait()
	svc.pipeline.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// services bundles the adapters and the pipeline driving them.
type services struct {
	analyzer *analysis.Client
	compiler *compiler.Solc
	deployer *deployer.Deployer
	wallet   *wallet.Manager // nil when no signer is configured
	pipeline *pipeline.Pipeline
}

func makeServices(ctx *cli.Context, cfg *auditaiConfig) (*services, error) {
	svc := &services{
		analyzer: analysis.New(cfg.Analysis, option.WithHeader("User-Agent", version.ClientName(clientIdentifier))),
		compiler: compiler.NewSolc(cfg.Compiler),
	}
	if signerConfigured(&cfg.Wallet) {
		signer, err := wallet.NewSigner(cfg.Wallet, passphrase(ctx, &cfg.Wallet))
		if err != nil {
			return nil, fmt.Errorf("failed to set up signer: %w", err)
		}
		svc.wallet = wallet.NewManager(signer, nil)
		if !ctx.Bool(utils.YesFlag.Name) {
			svc.wallet.SetConfirm(confirmTransaction)
		}
		svc.deployer = deployer.New(cfg.Deploy, svc.wallet)
		svc.pipeline = pipeline.New(svc.analyzer, svc.compiler, svc.deployer, svc.wallet)
	} else {
		log.Warn("No signer configured, deployments are disabled")
		svc.pipeline = pipeline.New(svc.analyzer, svc.compiler, nil, nil)
	}
	return svc, nil
}

// connect connects the wallet to the configured chain.
func (svc *services) connect(ctx context.Context, cfg *wallet.Config) error {
	chain, err := params.ChainByName(cfg.Chain)
	if err != nil {
		return err
	}
	if cfg.RPC != "" {
		chain.RPC = cfg.RPC
	}
	if _, err := svc.wallet.Connect(ctx, chain); err != nil {
		return err
	}
	svc.pipeline.NotifyWallet()
	return nil
}

func (svc *services) close() {
	if svc.wallet != nil {
		svc.wallet.Disconnect()
	}
}

func signerConfigured(cfg *wallet.Config) bool {
	return cfg.Clef != "" || cfg.KeyStoreDir != "" || cfg.KeyFile != ""
}

// passphrase returns the keystore password from --password, prompting for it
// when a keystore is used without a password file.
func passphrase(ctx *cli.Context, cfg *wallet.Config) string {
	if cfg.KeyStoreDir == "" || cfg.Clef != "" {
		return ""
	}
	if list := utils.MakePasswordList(ctx); len(list) > 0 {
		return list[0]
	}
	password, err := prompt.Stdin.PromptPassword(fmt.Sprintf("Passphrase for %s: ", cfg.Account))
	if err != nil {
		utils.Fatalf("Failed to read passphrase: %v", err)
	}
	return password
}

// confirmTransaction asks on the terminal before a transaction is signed.
func confirmTransaction(account common.Address, tx *types.Transaction) bool {
	fmt.Printf("\nAccount:   %s\n", account.Hex())
	fmt.Printf("Chain id:  %v\n", tx.ChainId())
	fmt.Printf("Nonce:     %d\n", tx.Nonce())
	fmt.Printf("Gas limit: %d\n", tx.Gas())
	fmt.Printf("Value:     %s\n", params.FormatValue(tx.Value()))
	fmt.Printf("Data:      %d bytes\n", len(tx.Data()))
	ok, err := prompt.Stdin.PromptConfirm("Sign the contract creation transaction?")
	if err != nil {
		log.Warn("Failed to read confirmation", "err", err)
		return false
	}
	return ok
}
