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
	"errors"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
)

// Config selects the wallet signer and the chain to connect to.
type Config struct {
	Chain       string // chain preset name
	RPC         string `toml:",omitempty"` // overrides the preset's RPC endpoint
	KeyFile     string `toml:",omitempty"`
	KeyStoreDir string `toml:",omitempty"`
	Account     string `toml:",omitempty"`
	Clef        string `toml:",omitempty"`
	LightKDF    bool   `toml:",omitempty"`
	AutoConnect bool
}

// DefaultConfig targets a local development node.
var DefaultConfig = Config{
	Chain: "dev",
}

// NewSigner builds the signer selected by cfg. Clef takes precedence over a
// keystore, which takes precedence over a raw key file.
func NewSigner(cfg Config, passphrase string) (Signer, error) {
	var addr common.Address
	if cfg.Account != "" {
		if !common.IsHexAddress(cfg.Account) {
			return nil, errors.New("invalid account address " + cfg.Account)
		}
		addr = common.HexToAddress(cfg.Account)
	}
	switch {
	case cfg.Clef != "":
		return NewClefSigner(cfg.Clef, addr)
	case cfg.KeyStoreDir != "":
		if addr == (common.Address{}) {
			return nil, errors.New("keystore signing requires an account address")
		}
		scryptN, scryptP := keystore.StandardScryptN, keystore.StandardScryptP
		if cfg.LightKDF {
			scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
		}
		return NewKeystoreSigner(keystore.NewKeyStore(cfg.KeyStoreDir, scryptN, scryptP), addr, passphrase)
	case cfg.KeyFile != "":
		return LoadKeySigner(cfg.KeyFile)
	}
	return nil, errors.New("no signer configured (set a key file, keystore or clef endpoint)")
}
