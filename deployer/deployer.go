// Copyright 2026 The auditai Authors
// This file is part of the auditai library.
//
// The auditai library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The auditai library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the auditai library. If not, see <http://www.gnu.org/licenses/>.

// Package deployer submits compiled contracts to a chain through the active
// wallet session and waits for their confirmation.
package deployer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/sunyihoo/auditai/compiler"
	"github.com/sunyihoo/auditai/params"
	"github.com/sunyihoo/auditai/wallet"
)

// Config tunes deployments.
type Config struct {
	// ConfirmTimeout bounds the wait for the first confirmation.
	ConfirmTimeout time.Duration

	// GasLimit, when non-zero, skips gas estimation.
	GasLimit uint64 `toml:",omitempty"`
}

// DefaultConfig contains the default deployment settings.
var DefaultConfig = Config{
	ConfirmTimeout: 5 * time.Minute,
}

// Sessions hands out the active wallet session. *wallet.Manager implements it.
type Sessions interface {
	Session() (*wallet.Session, error)
}

// Receipt describes a confirmed deployment.
type Receipt struct {
	TxHash          common.Hash    `json:"txHash"`
	ContractAddress common.Address `json:"contractAddress"`
	BlockNumber     uint64         `json:"blockNumber"`
	GasUsed         uint64         `json:"gasUsed"`
	Chain           params.Chain   `json:"chain"`
}

// ExplorerURL links the deployment transaction on the chain's block explorer,
// or returns "" when the chain has none.
func (r *Receipt) ExplorerURL() string {
	return r.Chain.Explorer.TxURL(r.TxHash.Hex())
}

type waitFunc func(ctx context.Context, b bind.DeployBackend, tx *types.Transaction) (*types.Receipt, error)

// Deployer deploys contract artifacts.
type Deployer struct {
	cfg     Config
	wallets Sessions

	waitMined waitFunc
}

// New creates a deployer signing through the sessions of wallets.
func New(cfg Config, wallets Sessions) *Deployer {
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = DefaultConfig.ConfirmTimeout
	}
	return &Deployer{cfg: cfg, wallets: wallets, waitMined: bind.WaitMined}
}

// Deploy signs and submits the creation transaction of art, passing args to
// its constructor and value as endowment, and blocks until the transaction
// has one confirmation or the confirmation timeout passes.
//
// Deploy 会阻塞直到交易被确认一次（或超时）。
func (d *Deployer) Deploy(ctx context.Context, art *compiler.Artifact, args []interface{}, value *big.Int) (*Receipt, error) {
	sess, err := d.wallets.Session()
	if err != nil {
		return nil, &DeployError{Kind: NotConnected, err: err}
	}
	if art == nil || len(art.Bytecode) == 0 {
		return nil, &DeployError{Kind: InvalidArguments, err: errors.New("no bytecode to deploy")}
	}
	ctorArgs, err := constructorArgs(art.ABI, args)
	if err != nil {
		return nil, &DeployError{Kind: InvalidArguments, err: err}
	}
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() > 0 && !art.ABI.Constructor.IsPayable() {
		return nil, &DeployError{Kind: InvalidArguments, err: fmt.Errorf("constructor of %s is not payable", art.Name)}
	}

	opts := sess.TransactOpts(ctx)
	opts.Value = value
	opts.GasLimit = d.cfg.GasLimit

	logger := log.New("contract", art.Name, "chain", sess.Chain.Name, "from", sess.Account)
	addr, tx, _, err := bind.DeployContract(opts, art.ABI, art.Bytecode, sess.Backend, ctorArgs...)
	if err != nil {
		kind := classify(err)
		logger.Warn("Contract deployment rejected", "kind", kind, "err", err)
		return nil, &DeployError{Kind: kind, err: err}
	}
	logger.Info("Submitted contract creation", "tx", tx.Hash(), "address", addr, "nonce", tx.Nonce())

	waitCtx, cancel := context.WithTimeout(ctx, d.cfg.ConfirmTimeout)
	defer cancel()

	start := time.Now()
	receipt, err := d.waitMined(waitCtx, sess.Backend, tx)
	if err != nil {
		kind := classify(err)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			kind = ReceiptTimeout
		}
		logger.Warn("Contract creation unconfirmed", "tx", tx.Hash(), "kind", kind, "err", err)
		return nil, &DeployError{Kind: kind, TxHash: tx.Hash(), err: err}
	}
	if receipt.Status == types.ReceiptStatusFailed {
		logger.Warn("Contract creation reverted", "tx", tx.Hash(), "block", receipt.BlockNumber)
		return nil, &DeployError{Kind: Reverted, TxHash: tx.Hash(), err: errors.New("execution reverted")}
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, &DeployError{Kind: MissingContractAddress, TxHash: tx.Hash(), err: errors.New("receipt carries no contract address")}
	}
	res := &Receipt{
		TxHash:          tx.Hash(),
		ContractAddress: receipt.ContractAddress,
		GasUsed:         receipt.GasUsed,
		Chain:           sess.Chain,
	}
	if receipt.BlockNumber != nil {
		res.BlockNumber = receipt.BlockNumber.Uint64()
	}
	logger.Info("Contract deployed", "address", res.ContractAddress, "block", res.BlockNumber, "gas", res.GasUsed, "elapsed", common.PrettyDuration(time.Since(start)))
	return res, nil
}
