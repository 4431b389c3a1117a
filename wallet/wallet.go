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

// Package wallet manages the wallet connection used to sign deployments.
//
// A connection pairs a signer (raw key, encrypted keystore or the clef
// external signer) with a JSON-RPC backend of the selected chain. Exactly one
// connection is active at a time.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sunyihoo/auditai/params"
)

var (
	// ErrNotConnected is returned when a session is requested without an
	// active wallet connection.
	ErrNotConnected = errors.New("wallet not connected")

	// ErrSignatureDenied is returned by session signers when the wallet holder
	// declines to sign.
	ErrSignatureDenied = errors.New("signature request denied")

	// ErrChainMismatch is returned when the RPC endpoint serves another chain
	// than the one selected.
	ErrChainMismatch = errors.New("chain id mismatch")
)

// userRejectedCode is the EIP-1193 error code for a request the user rejected.
const userRejectedCode = 4001

// Backend is the chain access needed to deploy contracts and await receipts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// DialFunc connects to the JSON-RPC endpoint of a chain.
type DialFunc func(ctx context.Context, rawurl string) (Backend, error)

// DialRPC dials a JSON-RPC endpoint with ethclient.
func DialRPC(ctx context.Context, rawurl string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ConfirmFunc is asked before each signature. Returning false declines it.
type ConfirmFunc func(account common.Address, tx *types.Transaction) bool

// Session is an active wallet connection.
type Session struct {
	Chain   params.Chain
	Account common.Address
	Backend Backend

	opts *bind.TransactOpts
}

// TransactOpts returns a fresh copy of the session's transaction options bound
// to ctx.
func (s *Session) TransactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *s.opts
	opts.Context = ctx
	return &opts
}

// Manager owns the current wallet connection.
// Manager 持有当前唯一的钱包连接，连接/断开都通过它完成。
type Manager struct {
	signer  Signer
	dial    DialFunc
	confirm ConfirmFunc

	mu      sync.RWMutex
	session *Session
}

// NewManager creates a disconnected manager. A nil dial function defaults to
// DialRPC.
func NewManager(signer Signer, dial DialFunc) *Manager {
	if dial == nil {
		dial = DialRPC
	}
	return &Manager{signer: signer, dial: dial}
}

// SetConfirm installs a callback consulted before every signature.
func (m *Manager) SetConfirm(fn ConfirmFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirm = fn
}

// Connect dials the chain's RPC endpoint, checks that it serves the expected
// chain and activates a new session, replacing any previous one.
func (m *Manager) Connect(ctx context.Context, chain *params.Chain) (*Session, error) {
	if m.signer == nil {
		return nil, errors.New("no signer configured")
	}
	backend, err := m.dial(ctx, chain.RPC)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", chain.RPC, err)
	}
	id, err := backend.ChainID(ctx)
	if err != nil {
		closeBackend(backend)
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	if id.Uint64() != chain.ChainID {
		closeBackend(backend)
		return nil, fmt.Errorf("%w: endpoint serves %d, want %d (%s)", ErrChainMismatch, id, chain.ChainID, chain.Name)
	}
	opts, err := m.signer.Transactor(id)
	if err != nil {
		closeBackend(backend)
		return nil, err
	}
	sess := &Session{
		Chain:   *chain,
		Account: m.signer.Address(),
		Backend: backend,
	}
	opts.Signer = m.guard(opts.Signer)
	sess.opts = opts

	m.mu.Lock()
	prev := m.session
	m.session = sess
	m.mu.Unlock()

	if prev != nil {
		closeBackend(prev.Backend)
	}
	log.Info("Wallet connected", "account", sess.Account, "chain", chain.Name, "chainid", chain.ChainID)
	return sess, nil
}

// guard wraps a signer function with the confirmation prompt and maps wallet
// refusals onto ErrSignatureDenied.
func (m *Manager) guard(sign bind.SignerFn) bind.SignerFn {
	return func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
		m.mu.RLock()
		confirm := m.confirm
		m.mu.RUnlock()

		if confirm != nil && !confirm(addr, tx) {
			return nil, ErrSignatureDenied
		}
		signed, err := sign(addr, tx)
		if err != nil && IsSignatureDenied(err) && !errors.Is(err, ErrSignatureDenied) {
			return nil, fmt.Errorf("%w: %v", ErrSignatureDenied, err)
		}
		return signed, err
	}
}

// Disconnect drops the active session, if any.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	sess := m.session
	m.session = nil
	m.mu.Unlock()

	if sess != nil {
		closeBackend(sess.Backend)
		log.Info("Wallet disconnected", "account", sess.Account, "chain", sess.Chain.Name)
	}
}

// Connected reports whether a session is active.
func (m *Manager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil
}

// Session returns the active session or ErrNotConnected.
func (m *Manager) Session() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, ErrNotConnected
	}
	return m.session, nil
}

// Chain returns the chain of the active session, or nil.
func (m *Manager) Chain() *params.Chain {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	c := m.session.Chain
	return &c
}

func closeBackend(b Backend) {
	if c, ok := b.(interface{ Close() }); ok {
		c.Close()
	}
}

// IsSignatureDenied reports whether err means the wallet holder declined to
// sign: ErrSignatureDenied itself, an EIP-1193 "user rejected" RPC error, or a
// refusal message from an external signer such as clef.
func IsSignatureDenied(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSignatureDenied) {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == userRejectedCode {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "request denied") || strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied")
}
