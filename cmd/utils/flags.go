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

// Package utils contains internal helper functions for auditai commands.
package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/sunyihoo/auditai/analysis"
	"github.com/sunyihoo/auditai/compiler"
	"github.com/sunyihoo/auditai/deployer"
	"github.com/sunyihoo/auditai/internal/flags"
	"github.com/sunyihoo/auditai/params"
	"github.com/sunyihoo/auditai/server"
	"github.com/sunyihoo/auditai/wallet"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// General settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}

	// Analysis service
	AnalysisKeyFlag = &cli.StringFlag{
		Name:     "analysis.apikey",
		Usage:    "API key of the analysis service (defaults to $ANTHROPIC_API_KEY)",
		Category: flags.AnalysisCategory,
	}
	AnalysisURLFlag = &cli.StringFlag{
		Name:     "analysis.url",
		Usage:    "Base URL of the analysis service",
		Category: flags.AnalysisCategory,
	}
	AnalysisModelFlag = &cli.StringFlag{
		Name:     "analysis.model",
		Usage:    "Language model used for audits",
		Value:    analysis.DefaultConfig.Model,
		Category: flags.AnalysisCategory,
	}
	AnalysisMaxTokensFlag = &cli.Int64Flag{
		Name:     "analysis.maxtokens",
		Usage:    "Maximum length of an audit report in tokens",
		Value:    analysis.DefaultConfig.MaxTokens,
		Category: flags.AnalysisCategory,
	}
	AnalysisTimeoutFlag = &cli.DurationFlag{
		Name:     "analysis.timeout",
		Usage:    "Time limit of a single audit request",
		Value:    analysis.DefaultConfig.Timeout,
		Category: flags.AnalysisCategory,
	}
	AnalysisRateFlag = &cli.IntFlag{
		Name:     "analysis.rpm",
		Usage:    "Maximum audit requests per minute (0 = unlimited)",
		Value:    analysis.DefaultConfig.RequestsPerMinute,
		Category: flags.AnalysisCategory,
	}

	// Solidity compiler
	SolcFlag = &cli.StringFlag{
		Name:     "solc",
		Usage:    "Solidity compiler executable",
		Value:    compiler.DefaultConfig.Path,
		Category: flags.CompilerCategory,
	}
	SolcOptimizeFlag = &cli.BoolFlag{
		Name:     "solc.optimize",
		Usage:    "Enable the bytecode optimizer",
		Category: flags.CompilerCategory,
	}
	SolcRunsFlag = &cli.IntFlag{
		Name:     "solc.runs",
		Usage:    "Number of optimizer runs",
		Value:    compiler.DefaultConfig.OptimizeRuns,
		Category: flags.CompilerCategory,
	}
	SolcEVMVersionFlag = &cli.StringFlag{
		Name:     "solc.evmversion",
		Usage:    "Target EVM version (e.g. paris, shanghai, cancun)",
		Category: flags.CompilerCategory,
	}

	// Wallet
	ChainFlag = &cli.StringFlag{
		Name:     "chain",
		Usage:    "Chain to deploy to (" + strings.Join(params.ChainNames(), ", ") + ")",
		Value:    wallet.DefaultConfig.Chain,
		Category: flags.WalletCategory,
	}
	RPCFlag = &cli.StringFlag{
		Name:     "rpc",
		Usage:    "JSON-RPC endpoint overriding the chain's default",
		Category: flags.WalletCategory,
	}
	KeyFileFlag = &cli.StringFlag{
		Name:     "keyfile",
		Usage:    "File holding a hex encoded private key used for signing",
		Category: flags.WalletCategory,
	}
	KeyStoreDirFlag = &flags.DirectoryFlag{
		Name:     "keystore",
		Usage:    "Directory of the encrypted keystore",
		Category: flags.WalletCategory,
	}
	AccountFlag = &cli.StringFlag{
		Name:     "account",
		Usage:    "Address of the signing account",
		Category: flags.WalletCategory,
	}
	ClefFlag = &cli.StringFlag{
		Name:     "signer",
		Usage:    "External signer (url or path to ipc file)",
		Category: flags.WalletCategory,
	}
	PasswordFileFlag = &cli.PathFlag{
		Name:      "password",
		Usage:     "Password file to use for the keystore account",
		TakesFile: true,
		Category:  flags.WalletCategory,
	}
	LightKDFFlag = &cli.BoolFlag{
		Name:     "lightkdf",
		Usage:    "Reduce key-derivation RAM & CPU usage at some expense of KDF strength",
		Category: flags.WalletCategory,
	}
	AutoConnectFlag = &cli.BoolFlag{
		Name:     "wallet.autoconnect",
		Usage:    "Connect the wallet when the server starts",
		Category: flags.WalletCategory,
	}

	// Deployment
	ConfirmTimeoutFlag = &cli.DurationFlag{
		Name:     "deploy.timeout",
		Usage:    "Time to wait for the deployment transaction to be mined",
		Value:    deployer.DefaultConfig.ConfirmTimeout,
		Category: flags.DeployCategory,
	}
	GasLimitFlag = &cli.Uint64Flag{
		Name:     "deploy.gaslimit",
		Usage:    "Gas limit of the deployment transaction (0 = estimate)",
		Category: flags.DeployCategory,
	}
	YesFlag = &cli.BoolFlag{
		Name:     "yes",
		Aliases:  []string{"y"},
		Usage:    "Sign transactions without asking for confirmation",
		Category: flags.DeployCategory,
	}

	// HTTP API
	HTTPListenAddrFlag = &cli.StringFlag{
		Name:     "http.addr",
		Usage:    "HTTP API listening interface",
		Value:    server.DefaultConfig.Host,
		Category: flags.APICategory,
	}
	HTTPPortFlag = &cli.IntFlag{
		Name:     "http.port",
		Usage:    "HTTP API listening port",
		Value:    server.DefaultConfig.Port,
		Category: flags.APICategory,
	}
	HTTPCORSDomainFlag = &cli.StringFlag{
		Name:     "http.corsdomain",
		Usage:    "Comma separated list of domains from which to accept cross origin requests (browser enforced)",
		Category: flags.APICategory,
	}
	HTTPVirtualHostsFlag = &cli.StringFlag{
		Name:     "http.vhosts",
		Usage:    "Comma separated list of virtual hostnames from which to accept requests (server enforced). Accepts '*' wildcard.",
		Value:    strings.Join(server.DefaultConfig.VirtualHosts, ","),
		Category: flags.APICategory,
	}
	WSAllowedOriginsFlag = &cli.StringFlag{
		Name:     "ws.origins",
		Usage:    "Origins from which to accept websocket requests",
		Category: flags.APICategory,
	}

	// Metrics flags
	MetricsEnabledFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Publish the metrics registry on the pprof server under /debug/metrics",
		Category: flags.MetricsCategory,
	}
)

var (
	AnalysisFlags = []cli.Flag{
		AnalysisKeyFlag,
		AnalysisURLFlag,
		AnalysisModelFlag,
		AnalysisMaxTokensFlag,
		AnalysisTimeoutFlag,
		AnalysisRateFlag,
	}
	CompilerFlags = []cli.Flag{
		SolcFlag,
		SolcOptimizeFlag,
		SolcRunsFlag,
		SolcEVMVersionFlag,
	}
	WalletFlags = []cli.Flag{
		ChainFlag,
		RPCFlag,
		KeyFileFlag,
		KeyStoreDirFlag,
		AccountFlag,
		ClefFlag,
		PasswordFileFlag,
		LightKDFFlag,
		AutoConnectFlag,
	}
	DeployFlags = []cli.Flag{
		ConfirmTimeoutFlag,
		GasLimitFlag,
		YesFlag,
	}
	HTTPFlags = []cli.Flag{
		HTTPListenAddrFlag,
		HTTPPortFlag,
		HTTPCORSDomainFlag,
		HTTPVirtualHostsFlag,
		WSAllowedOriginsFlag,
	}
)

// Fatalf formats a message to standard error and exits the program.
// The message is also printed to standard output if standard error
// is redirected to a different file.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// SplitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func SplitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

// SetAnalysisConfig applies analysis-related command line flags to the config.
func SetAnalysisConfig(ctx *cli.Context, cfg *analysis.Config) {
	if ctx.IsSet(AnalysisKeyFlag.Name) {
		cfg.APIKey = ctx.String(AnalysisKeyFlag.Name)
	}
	if ctx.IsSet(AnalysisURLFlag.Name) {
		cfg.BaseURL = ctx.String(AnalysisURLFlag.Name)
	}
	if ctx.IsSet(AnalysisModelFlag.Name) {
		cfg.Model = ctx.String(AnalysisModelFlag.Name)
	}
	if ctx.IsSet(AnalysisMaxTokensFlag.Name) {
		cfg.MaxTokens = ctx.Int64(AnalysisMaxTokensFlag.Name)
	}
	if ctx.IsSet(AnalysisTimeoutFlag.Name) {
		cfg.Timeout = ctx.Duration(AnalysisTimeoutFlag.Name)
	}
	if ctx.IsSet(AnalysisRateFlag.Name) {
		cfg.RequestsPerMinute = ctx.Int(AnalysisRateFlag.Name)
	}
}

// SetCompilerConfig applies compiler-related command line flags to the config.
func SetCompilerConfig(ctx *cli.Context, cfg *compiler.Config) {
	if ctx.IsSet(SolcFlag.Name) {
		cfg.Path = ctx.String(SolcFlag.Name)
	}
	if ctx.IsSet(SolcOptimizeFlag.Name) {
		cfg.Optimize = ctx.Bool(SolcOptimizeFlag.Name)
	}
	if ctx.IsSet(SolcRunsFlag.Name) {
		cfg.OptimizeRuns = ctx.Int(SolcRunsFlag.Name)
	}
	if ctx.IsSet(SolcEVMVersionFlag.Name) {
		cfg.EVMVersion = ctx.String(SolcEVMVersionFlag.Name)
	}
}

// SetWalletConfig applies wallet-related command line flags to the config.
func SetWalletConfig(ctx *cli.Context, cfg *wallet.Config) {
	if ctx.IsSet(ChainFlag.Name) {
		cfg.Chain = ctx.String(ChainFlag.Name)
	}
	if ctx.IsSet(RPCFlag.Name) {
		cfg.RPC = ctx.String(RPCFlag.Name)
	}
	if ctx.IsSet(KeyFileFlag.Name) {
		cfg.KeyFile = ctx.String(KeyFileFlag.Name)
	}
	if ctx.IsSet(KeyStoreDirFlag.Name) {
		cfg.KeyStoreDir = ctx.String(KeyStoreDirFlag.Name)
	}
	if ctx.IsSet(AccountFlag.Name) {
		cfg.Account = ctx.String(AccountFlag.Name)
	}
	if ctx.IsSet(ClefFlag.Name) {
		cfg.Clef = ctx.String(ClefFlag.Name)
	}
	if ctx.IsSet(LightKDFFlag.Name) {
		cfg.LightKDF = ctx.Bool(LightKDFFlag.Name)
	}
	if ctx.IsSet(AutoConnectFlag.Name) {
		cfg.AutoConnect = ctx.Bool(AutoConnectFlag.Name)
	}
}

// SetDeployConfig applies deployment-related command line flags to the config.
func SetDeployConfig(ctx *cli.Context, cfg *deployer.Config) {
	if ctx.IsSet(ConfirmTimeoutFlag.Name) {
		cfg.ConfirmTimeout = ctx.Duration(ConfirmTimeoutFlag.Name)
	}
	if ctx.IsSet(GasLimitFlag.Name) {
		cfg.GasLimit = ctx.Uint64(GasLimitFlag.Name)
	}
}

// SetHTTPConfig applies HTTP API flags to the config.
func SetHTTPConfig(ctx *cli.Context, cfg *server.Config) {
	if ctx.IsSet(HTTPListenAddrFlag.Name) {
		cfg.Host = ctx.String(HTTPListenAddrFlag.Name)
	}
	if ctx.IsSet(HTTPPortFlag.Name) {
		cfg.Port = ctx.Int(HTTPPortFlag.Name)
	}
	if ctx.IsSet(HTTPCORSDomainFlag.Name) {
		cfg.CorsAllowedOrigins = SplitAndTrim(ctx.String(HTTPCORSDomainFlag.Name))
	}
	if ctx.IsSet(HTTPVirtualHostsFlag.Name) {
		cfg.VirtualHosts = SplitAndTrim(ctx.String(HTTPVirtualHostsFlag.Name))
	}
	if ctx.IsSet(WSAllowedOriginsFlag.Name) {
		cfg.WSOrigins = SplitAndTrim(ctx.String(WSAllowedOriginsFlag.Name))
	}
}

// MakePasswordList reads password lines from the file specified by --password.
func MakePasswordList(ctx *cli.Context) []string {
	path := ctx.Path(PasswordFileFlag.Name)
	if path == "" {
		return nil
	}
	text, err := os.ReadFile(path)
	if err != nil {
		Fatalf("Failed to read password file: %v", err)
	}
	lines := strings.Split(string(text), "\n")
	// Sanitise DOS line endings.
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	return lines
}
