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

package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/auditai/params"
)

// simClient hides the Close method of the simulated client so that
// disconnecting a session does not tear down the shared test chain.
type simClient struct {
	simulated.Client
}

func newSimManager(t *testing.T) (*Manager, *simulated.Backend) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sim := simulated.NewBackend(types.GenesisAlloc{
		crypto.PubkeyToAddress(key.PublicKey): {Balance: big.NewInt(params.Ether)},
	})
	t.Cleanup(func() { sim.Close() })

	dial := func(context.Context, string) (Backend, error) {
		return simClient{sim.Client()}, nil
	}
	return NewManager(NewKeySigner(key), dial), sim
}

func devChain(t *testing.T) *params.Chain {
	chain, err := params.ChainByName("dev")
	require.NoError(t, err)
	return chain
}

func TestConnectDisconnect(t *testing.T) {
	m, _ := newSimManager(t)
	assert.False(t, m.Connected())
	_, err := m.Session()
	require.ErrorIs(t, err, ErrNotConnected)
	assert.Nil(t, m.Chain())

	sess, err := m.Connect(context.Background(), devChain(t))
	require.NoError(t, err)
	assert.True(t, m.Connected())
	assert.Equal(t, m.signer.Address(), sess.Account)
	assert.Equal(t, uint64(1337), sess.Chain.ChainID)
	assert.Equal(t, "dev", m.Chain().Name)

	got, err := m.Session()
	require.NoError(t, err)
	assert.Same(t, sess, got)

	opts := sess.TransactOpts(context.Background())
	assert.Equal(t, sess.Account, opts.From)
	assert.NotSame(t, sess.opts, opts)

	m.Disconnect()
	assert.False(t, m.Connected())
	_, err = m.Session()
	require.ErrorIs(t, err, ErrNotConnected)

	// Disconnecting twice is harmless.
	m.Disconnect()
}

func TestConnectChainMismatch(t *testing.T) {
	m, _ := newSimManager(t)
	mainnet, err := params.ChainByName("mainnet")
	require.NoError(t, err)

	_, err = m.Connect(context.Background(), mainnet)
	require.ErrorIs(t, err, ErrChainMismatch)
	assert.False(t, m.Connected())
}

func TestConnectDialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	m := NewManager(NewKeySigner(mustKey(t)), func(context.Context, string) (Backend, error) {
		return nil, dialErr
	})
	_, err := m.Connect(context.Background(), devChain(t))
	require.ErrorIs(t, err, dialErr)
	assert.False(t, m.Connected())
}

func TestConnectWithoutSigner(t *testing.T) {
	m := NewManager(nil, nil)
	_, err := m.Connect(context.Background(), devChain(t))
	require.Error(t, err)
	assert.False(t, m.Connected())
}

func TestConfirmDenied(t *testing.T) {
	m, _ := newSimManager(t)
	var asked int
	m.SetConfirm(func(common.Address, *types.Transaction) bool {
		asked++
		return false
	})
	sess, err := m.Connect(context.Background(), devChain(t))
	require.NoError(t, err)

	opts := sess.TransactOpts(context.Background())
	tx := types.NewTx(&types.LegacyTx{Nonce: 0, Gas: 21000, GasPrice: big.NewInt(1)})
	_, err = opts.Signer(opts.From, tx)
	require.ErrorIs(t, err, ErrSignatureDenied)
	assert.Equal(t, 1, asked)

	m.SetConfirm(func(common.Address, *types.Transaction) bool { return true })
	signed, err := opts.Signer(opts.From, tx)
	require.NoError(t, err)
	assert.NotEqual(t, tx.Hash(), signed.Hash())
}

type codedError struct {
	code int
	msg  string
}

func (e codedError) Error() string  { return e.msg }
func (e codedError) ErrorCode() int { return e.code }

func TestIsSignatureDenied(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrSignatureDenied, true},
		{codedError{4001, "MetaMask Tx Signature: User denied transaction signature."}, true},
		{codedError{4001, "rejected"}, true},
		{codedError{-32000, "Request denied"}, true},
		{errors.New("user rejected the request"), true},
		{codedError{-32000, "nonce too low"}, false},
		{errors.New("insufficient funds for gas * price + value"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSignatureDenied(tt.err), "%v", tt.err)
	}
}

func TestKeystoreSigner(t *testing.T) {
	ks := keystore.NewKeyStore(t.TempDir(), keystore.LightScryptN, keystore.LightScryptP)
	acc, err := ks.NewAccount("secret")
	require.NoError(t, err)

	_, err = NewKeystoreSigner(ks, acc.Address, "wrong")
	require.Error(t, err)

	signer, err := NewKeystoreSigner(ks, acc.Address, "secret")
	require.NoError(t, err)
	assert.Equal(t, acc.Address, signer.Address())

	opts, err := signer.Transactor(big.NewInt(1337))
	require.NoError(t, err)
	assert.Equal(t, acc.Address, opts.From)

	_, err = NewKeystoreSigner(ks, common.HexToAddress("0x01"), "secret")
	require.Error(t, err)
}

func TestNewSigner(t *testing.T) {
	key := mustKey(t)
	file := filepath.Join(t.TempDir(), "key.hex")
	require.NoError(t, crypto.SaveECDSA(file, key))

	signer, err := NewSigner(Config{KeyFile: file}, "")
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer.Address())

	_, err = NewSigner(Config{}, "")
	require.Error(t, err)

	_, err = NewSigner(Config{KeyStoreDir: t.TempDir()}, "")
	require.Error(t, err, "keystore without account")

	_, err = NewSigner(Config{KeyFile: file, Account: "not-an-address"}, "")
	require.Error(t, err)

	dir := t.TempDir()
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	acc, err := ks.NewAccount("pw")
	require.NoError(t, err)
	signer, err = NewSigner(Config{KeyStoreDir: dir, Account: acc.Address.Hex(), LightKDF: true}, "pw")
	require.NoError(t, err)
	assert.Equal(t, acc.Address, signer.Address())
}

func mustKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}
