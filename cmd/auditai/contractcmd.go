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
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/sunyihoo/auditai/cmd/utils"
	"github.com/sunyihoo/auditai/internal/flags"
	"github.com/sunyihoo/auditai/params"
	"github.com/sunyihoo/auditai/pipeline"
	"github.com/urfave/cli/v2"
)

var (
	contractFlag = &cli.StringFlag{
		Name:     "contract",
		Usage:    "Name of the contract to compile",
		Value:    params.SampleContractName,
		Category: flags.CompilerCategory,
	}
	outFlag = &cli.StringFlag{
		Name:     "out",
		Usage:    "Write the compiled artifact as JSON to the given file",
		Category: flags.CompilerCategory,
	}
	argsFlag = &cli.StringSliceFlag{
		Name:     "args",
		Usage:    "Constructor arguments, in declaration order",
		Category: flags.DeployCategory,
	}
	valueFlag = &cli.StringFlag{
		Name:     "value",
		Usage:    "Amount sent to the constructor (wei, or with a gwei/ether suffix)",
		Category: flags.DeployCategory,
	}

	auditCommand = &cli.Command{
		Action:    audit,
		Name:      "audit",
		Usage:     "Request a security review of a contract",
		ArgsUsage: "<source.sol>",
		Flags:     configFlags,
		Description: `
Sends the contract source to the analysis service and prints the
sanitized report. Without a file argument the sample contract is audited.`,
	}
	compileCommand = &cli.Command{
		Action:    compile,
		Name:      "compile",
		Usage:     "Compile a contract with solc",
		ArgsUsage: "<source.sol>",
		Flags:     flags.Merge(configFlags, []cli.Flag{contractFlag, outFlag}),
	}
	deployCommand = &cli.Command{
		Action:    deploy,
		Name:      "deploy",
		Usage:     "Compile a contract and deploy it through the configured wallet",
		ArgsUsage: "<source.sol>",
		Flags:     flags.Merge(configFlags, []cli.Flag{contractFlag, argsFlag, valueFlag}),
		Description: `
Compiles the named contract, connects the wallet to --chain and submits
the contract creation transaction. Unless --yes is given, the transaction
has to be confirmed on the terminal before it is signed.`,
	}
)

// preparePipeline builds the services and loads the source file given as the
// first argument, if any.
func preparePipeline(ctx *cli.Context) (*services, *auditaiConfig, error) {
	if ctx.NArg() > 1 {
		return nil, nil, errors.New("too many arguments, expected at most one source file")
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc, err := makeServices(ctx, &cfg)
	if err != nil {
		return nil, nil, err
	}
	if file := ctx.Args().First(); file != "" {
		source, err := os.ReadFile(file)
		if err != nil {
			svc.close()
			return nil, nil, err
		}
		svc.pipeline.SetSource(string(source))
	}
	return svc, &cfg, nil
}

// finish waits for a triggered operation and turns an Error result into a
// command failure.
func finish(task *pipeline.Task, err error) (pipeline.Result, error) {
	if err != nil {
		return pipeline.Result{}, err
	}
	res, opErr := task.Wait()
	if res.Kind == pipeline.Error {
		log.Debug("Operation failed", "op", task.Op(), "err", opErr)
		return res, errors.New(res.Message)
	}
	return res, nil
}

func audit(ctx *cli.Context) error {
	svc, _, err := preparePipeline(ctx)
	if err != nil {
		return err
	}
	defer svc.close()

	res, err := finish(svc.pipeline.TriggerAudit())
	if err != nil {
		return err
	}
	fmt.Println(res.Report.Markup)
	log.Info("Audit finished", "model", res.Report.Model, "input", res.Report.InputTokens, "output", res.Report.OutputTokens)
	return nil
}

func compile(ctx *cli.Context) error {
	svc, _, err := preparePipeline(ctx)
	if err != nil {
		return err
	}
	defer svc.close()

	res, err := finish(svc.pipeline.TriggerCompile(ctx.String(contractFlag.Name)))
	if err != nil {
		return err
	}
	art := res.Artifact
	if out := ctx.String(outFlag.Name); out != "" {
		blob, err := json.MarshalIndent(art, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, blob, 0644); err != nil {
			return err
		}
		log.Info("Wrote artifact", "contract", art.Name, "file", out)
		return nil
	}
	fmt.Printf("Contract:  %s\n", art.Name)
	fmt.Printf("Compiler:  %s\n", art.Info.CompilerVersion)
	fmt.Printf("ABI:       %s\n", art.RawABI)
	fmt.Printf("Bytecode:  %s\n", art.Bytecode)
	return nil
}

func deploy(ctx *cli.Context) error {
	svc, cfg, err := preparePipeline(ctx)
	if err != nil {
		return err
	}
	defer svc.close()
	if svc.wallet == nil {
		utils.Fatalf("No signer configured, use --%s, --%s or --%s", utils.KeyFileFlag.Name, utils.KeyStoreDirFlag.Name, utils.ClefFlag.Name)
	}
	value, err := params.ParseValue(ctx.String(valueFlag.Name))
	if err != nil {
		return err
	}
	var args []interface{}
	for _, arg := range ctx.StringSlice(argsFlag.Name) {
		args = append(args, arg)
	}

	if _, err := finish(svc.pipeline.TriggerCompile(ctx.String(contractFlag.Name))); err != nil {
		return err
	}
	if err := svc.connect(ctx.Context, &cfg.Wallet); err != nil {
		return fmt.Errorf("failed to connect wallet: %w", err)
	}
	res, err := finish(svc.pipeline.TriggerDeploy(args, value))
	if err != nil {
		return err
	}
	d := res.Deployment
	fmt.Printf("Transaction: %s\n", d.TxID)
	fmt.Printf("Contract:    %s\n", d.ContractAddress)
	fmt.Printf("Block:       %d\n", d.BlockNumber)
	if d.ExplorerURL != "" {
		fmt.Printf("%-12s %s\n", d.ExplorerName+":", d.ExplorerURL)
	}
	return nil
}
