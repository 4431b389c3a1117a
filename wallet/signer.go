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
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/external"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer produces transaction options authorizing one account.
type Signer interface {
	Address() common.Address
	Transactor(chainID *big.Int) (*bind.TransactOpts, error)
}

// KeySigner signs with an in-memory private key.
type KeySigner struct {
	key *ecdsa.PrivateKey
}

// NewKeySigner wraps a private key.
func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{key: key}
}

// LoadKeySigner reads a hex encoded private key from file.
func LoadKeySigner(file string) (*KeySigner, error) {
	key, err := crypto.LoadECDSA(file)
	if err != nil {
		return nil, fmt.Errorf("load key file: %w", err)
	}
	return NewKeySigner(key), nil
}

func (s *KeySigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *KeySigner) Transactor(chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(s.key, chainID)
}

// KeystoreSigner signs with an account of an encrypted keystore directory.
type KeystoreSigner struct {
	ks      *keystore.KeyStore
	account accounts.Account
}

// NewKeystoreSigner unlocks the given account of ks with passphrase.
func NewKeystoreSigner(ks *keystore.KeyStore, addr common.Address, passphrase string) (*KeystoreSigner, error) {
	account, err := ks.Find(accounts.Account{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("keystore account %s: %w", addr.Hex(), err)
	}
	if err := ks.Unlock(account, passphrase); err != nil {
		return nil, fmt.Errorf("unlock %s: %w", addr.Hex(), err)
	}
	return &KeystoreSigner{ks: ks, account: account}, nil
}

func (s *KeystoreSigner) Address() common.Address {
	return s.account.Address
}

func (s *KeystoreSigner) Transactor(chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyStoreTransactorWithChainID(s.ks, s.account, chainID)
}

// ClefSigner delegates signing to a running clef instance, which asks its
// operator to approve every transaction.
type ClefSigner struct {
	clef    *external.ExternalSigner
	account accounts.Account
}

// NewClefSigner connects to clef at endpoint and selects addr, or the first
// account clef offers when addr is the zero address.
func NewClefSigner(endpoint string, addr common.Address) (*ClefSigner, error) {
	clef, err := external.NewExternalSigner(endpoint)
	if err != nil {
		return nil, fmt.Errorf("connect clef: %w", err)
	}
	accs := clef.Accounts()
	if len(accs) == 0 {
		return nil, errors.New("clef offers no accounts")
	}
	if addr == (common.Address{}) {
		return &ClefSigner{clef: clef, account: accs[0]}, nil
	}
	for _, acc := range accs {
		if acc.Address == addr {
			return &ClefSigner{clef: clef, account: acc}, nil
		}
	}
	return nil, fmt.Errorf("clef does not manage account %s", addr.Hex())
}

func (s *ClefSigner) Address() common.Address {
	return s.account.Address
}

func (s *ClefSigner) Transactor(*big.Int) (*bind.TransactOpts, error) {
	return bind.NewClefTransactor(s.clef, s.account), nil
}
