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

// Package pipeline coordinates the audit, compile and deploy operations that
// act on a single contract source.
//
// The pipeline owns the result on display. Operations run in the background,
// at most one of each kind at a time, and replace the displayed result when
// they finish. Presentation code observes the pipeline only through
// immutable snapshots.
//
// pipeline 包协调审计、编译与部署三种操作，并持有当前展示的结果。
package pipeline

import (
	"context"
	"fmt"
	"math/big"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/sunyihoo/auditai/analysis"
	"github.com/sunyihoo/auditai/compiler"
	"github.com/sunyihoo/auditai/deployer"
	"github.com/sunyihoo/auditai/params"
)

// Op identifies an operation kind.
type Op int

const (
	OpAudit Op = iota
	OpCompile
	OpDeploy
)

func (op Op) String() string {
	switch op {
	case OpAudit:
		return "audit"
	case OpCompile:
		return "compile"
	case OpDeploy:
		return "deploy"
	}
	return fmt.Sprintf("op(%d)", int(op))
}

func (op Op) fallback() string {
	switch op {
	case OpAudit:
		return "An error occurred during the audit. Please try again."
	case OpCompile:
		return "An error occurred during compilation. Please try again."
	}
	return "An error occurred during deployment. Please try again."
}

// Analyzer reviews contract source code.
type Analyzer interface {
	Analyze(ctx context.Context, source string) (*analysis.Report, error)
}

// Compiler turns contract source into a deployable artifact.
type Compiler interface {
	Compile(ctx context.Context, source, contract string) (*compiler.Artifact, error)
}

// Deployer submits an artifact to the chain and waits for its confirmation.
type Deployer interface {
	Deploy(ctx context.Context, art *compiler.Artifact, args []interface{}, value *big.Int) (*deployer.Receipt, error)
}

// Wallet reports whether a wallet connection is active.
type Wallet interface {
	Connected() bool
}

// Pipeline is the orchestrator. Its zero value is not usable, use New.
type Pipeline struct {
	analyzer Analyzer
	compiler Compiler
	deployer Deployer
	wallet   Wallet

	mu         sync.Mutex
	source     string
	sourceHash common.Hash
	result     Result
	flags      Flags
	artifact   *compiler.Artifact
	seq        uint64

	feed event.Feed
	wg   sync.WaitGroup
}

// New creates a pipeline holding the sample contract and no result.
func New(a Analyzer, c Compiler, d Deployer, w Wallet) *Pipeline {
	return &Pipeline{
		analyzer:   a,
		compiler:   c,
		deployer:   d,
		wallet:     w,
		source:     params.SampleContractSource,
		sourceHash: compiler.SourceHash(params.SampleContractSource),
	}
}

// SetSource replaces the contract source. Operations already running keep
// the source they started with, and the displayed result is left untouched.
func (p *Pipeline) SetSource(source string) {
	p.mu.Lock()
	p.source = source
	p.sourceHash = compiler.SourceHash(source)
	snap := p.snapshotLocked()
	p.mu.Unlock()

	sourceEdits.Inc(1)
	p.publish(snap)
}

// Source returns the current contract source.
func (p *Pipeline) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Snapshot returns a copy of the current state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// SubscribeSnapshots delivers a snapshot after every state change. Deliveries
// block the pipeline until received, so ch should be buffered and drained.
func (p *Pipeline) SubscribeSnapshots(ch chan<- Snapshot) event.Subscription {
	return p.feed.Subscribe(ch)
}

// Wait blocks until no operation is in flight.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// TriggerAudit starts a review of the current source.
func (p *Pipeline) TriggerAudit() (*Task, error) {
	source, err := p.acquire(OpAudit)
	if err != nil {
		return nil, err
	}
	return p.run(OpAudit, func(ctx context.Context, logger log.Logger) (Result, error) {
		report, err := p.analyzer.Analyze(ctx, source)
		if err != nil {
			return Result{}, err
		}
		logger.Info("Audit finished", "model", report.Model, "input", report.InputTokens, "output", report.OutputTokens)
		return Result{Kind: Audit, Report: report}, nil
	}), nil
}

// TriggerCompile compiles the current source and selects the named contract,
// or the sample contract name when name is empty.
func (p *Pipeline) TriggerCompile(name string) (*Task, error) {
	if name == "" {
		name = params.SampleContractName
	}
	source, err := p.acquire(OpCompile)
	if err != nil {
		return nil, err
	}
	return p.run(OpCompile, func(ctx context.Context, logger log.Logger) (Result, error) {
		art, err := p.compiler.Compile(ctx, source, name)
		if err != nil {
			return Result{}, err
		}
		logger.Info("Compilation finished", "contract", art.Name, "code", len(art.Bytecode))
		return Result{Kind: Compilation, Artifact: art}, nil
	}), nil
}

// TriggerDeploy deploys the held artifact with the given constructor
// arguments and value. It requires a compiled artifact matching the current
// source and a connected wallet; otherwise the failure is displayed and a
// *PreconditionError returned without contacting the chain.
func (p *Pipeline) TriggerDeploy(args []interface{}, value *big.Int) (*Task, error) {
	p.mu.Lock()
	if p.flags.Deploying {
		p.mu.Unlock()
		opStats[OpDeploy].suppressed.Inc(1)
		log.Debug("Operation already in flight", "op", OpDeploy)
		return nil, ErrInFlight
	}
	var reason string
	switch {
	case p.artifact == nil:
		reason = msgCompileFirst
	case p.wallet == nil || !p.wallet.Connected():
		reason = msgConnectWallet
	case p.artifact.SourceHash != p.sourceHash:
		reason = msgSourceChanged
	}
	if reason != "" {
		p.result = errorResult(reason)
		snap := p.snapshotLocked()
		p.mu.Unlock()

		preconditionFailures.Inc(1)
		log.Warn("Deployment precondition failed", "reason", reason)
		p.publish(snap)
		return nil, &PreconditionError{Reason: reason}
	}
	art := p.artifact
	p.flags.Deploying = true
	p.mu.Unlock()

	return p.run(OpDeploy, func(ctx context.Context, logger log.Logger) (Result, error) {
		receipt, err := p.deployer.Deploy(ctx, art, args, value)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: Deployment, Deployment: &DeploymentInfo{
			TxID:            receipt.TxHash.Hex(),
			ContractAddress: receipt.ContractAddress.Hex(),
			ExplorerURL:     receipt.ExplorerURL(),
			ExplorerName:    receipt.Chain.Explorer.Name,
			Chain:           receipt.Chain.Name,
			BlockNumber:     receipt.BlockNumber,
		}}, nil
	}), nil
}

// acquire marks op as in flight and returns the source it should work on.
func (p *Pipeline) acquire(op Op) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	busy := p.flags.busy(op)
	if *busy {
		opStats[op].suppressed.Inc(1)
		log.Debug("Operation already in flight", "op", op)
		return "", ErrInFlight
	}
	*busy = true
	return p.source, nil
}

type operation func(ctx context.Context, logger log.Logger) (Result, error)

// run executes fn in the background. The caller must have marked op as in
// flight; run clears the flag when fn returns or panics.
func (p *Pipeline) run(op Op, fn operation) *Task {
	var (
		task   = newTask(op)
		stats  = opStats[op]
		logger = log.New("op", op, "id", uuid.NewString())
	)
	stats.started.Inc(1)
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		var (
			start = time.Now()
			res   Result
			err   error
		)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Operation panicked", "panic", r, "stack", string(debug.Stack()))
				res, err = Result{}, fmt.Errorf("%v panicked: %v", op, r)
			}
			stats.duration.UpdateSince(start)
			if err != nil {
				stats.failed.Inc(1)
				res = errorResult(userMessage(op, err))
				logger.Warn("Operation failed", "err", err, "elapsed", common.PrettyDuration(time.Since(start)))
			} else {
				stats.succeeded.Inc(1)
				logger.Debug("Operation succeeded", "elapsed", common.PrettyDuration(time.Since(start)))
			}
			p.publish(p.complete(op, res, err))
			task.finish(res, err)
		}()

		p.publish(p.touch())
		res, err = fn(context.Background(), logger)
	}()
	return task
}

// complete displays the outcome of op and clears its busy flag.
func (p *Pipeline) complete(op Op, res Result, err error) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	*p.flags.busy(op) = false
	p.result = res
	if op == OpCompile {
		// A failed compile must not leave an older artifact deployable.
		if err != nil {
			p.artifact = nil
		} else {
			p.artifact = res.Artifact
		}
	}
	return p.snapshotLocked()
}

// NotifyWallet publishes a fresh snapshot after the wallet connection was
// established or dropped.
func (p *Pipeline) NotifyWallet() {
	p.publish(p.touch())
}

func (p *Pipeline) touch() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// snapshotLocked records a state change and returns the new snapshot.
func (p *Pipeline) snapshotLocked() Snapshot {
	p.seq++
	return p.snapshot()
}

func (p *Pipeline) snapshot() Snapshot {
	snap := Snapshot{
		Seq:      p.seq,
		Source:   p.source,
		Result:   p.result,
		Flags:    p.flags,
		Artifact: p.artifact,
	}
	if p.artifact != nil {
		snap.Stale = p.artifact.SourceHash != p.sourceHash
	}
	if p.wallet != nil {
		snap.WalletConnected = p.wallet.Connected()
	}
	return snap
}

func (p *Pipeline) publish(snap Snapshot) {
	p.feed.Send(snap)
}
