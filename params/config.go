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

package params

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// ErrUnknownChain is returned when a chain name does not match any preset.
var ErrUnknownChain = errors.New("unknown chain")

// Explorer describes a block explorer able to render transactions of a chain.
type Explorer struct {
	Name string `json:"name,omitempty" toml:",omitempty"`
	URL  string `json:"url,omitempty" toml:",omitempty"`
}

// TxURL returns the explorer link of the given transaction, or the empty string
// if the chain has no explorer configured.
func (e Explorer) TxURL(txid string) string {
	if e.URL == "" {
		return ""
	}
	return strings.TrimRight(e.URL, "/") + "/tx/" + txid
}

// Chain is a deployment target: the network identity, a default JSON-RPC
// endpoint and the explorer used to link deployment results.
// Chain 是部署目标，包含网络标识、默认 RPC 端点以及用于展示部署结果的区块浏览器。
type Chain struct {
	Name     string   `json:"name"`
	ChainID  uint64   `json:"chainId"`
	RPC      string   `json:"rpc"`
	Explorer Explorer `json:"explorer"`
}

// BigChainID returns the chain id as a big integer, the form expected by the
// transaction signers.
func (c *Chain) BigChainID() *big.Int {
	return new(big.Int).SetUint64(c.ChainID)
}

func (c *Chain) String() string {
	return fmt.Sprintf("%s(%d)", c.Name, c.ChainID)
}

var (
	// MainnetChain is the Ethereum main network.
	MainnetChain = &Chain{
		Name:     "mainnet",
		ChainID:  1,
		RPC:      "https://ethereum-rpc.publicnode.com",
		Explorer: Explorer{Name: "Etherscan", URL: "https://etherscan.io"},
	}
	// SepoliaChain is the Sepolia test network.
	SepoliaChain = &Chain{
		Name:     "sepolia",
		ChainID:  11155111,
		RPC:      "https://ethereum-sepolia-rpc.publicnode.com",
		Explorer: Explorer{Name: "Etherscan", URL: "https://sepolia.etherscan.io"},
	}
	// ScrollChain is the Scroll rollup main network.
	ScrollChain = &Chain{
		Name:     "scroll",
		ChainID:  534352,
		RPC:      "https://rpc.scroll.io",
		Explorer: Explorer{Name: "Scrollscan", URL: "https://scrollscan.com"},
	}
	// ScrollSepoliaChain is the Scroll test network settling on Sepolia.
	ScrollSepoliaChain = &Chain{
		Name:     "scroll-sepolia",
		ChainID:  534351,
		RPC:      "https://sepolia-rpc.scroll.io",
		Explorer: Explorer{Name: "Scrollscan", URL: "https://sepolia.scrollscan.com"},
	}
	// DevChain is a local development node (geth --dev, anvil, hardhat).
	DevChain = &Chain{
		Name:    "dev",
		ChainID: 1337,
		RPC:     "http://127.0.0.1:8545",
	}
)

// Chains contains the presets selectable by name.
var Chains = map[string]*Chain{
	MainnetChain.Name:       MainnetChain,
	SepoliaChain.Name:       SepoliaChain,
	ScrollChain.Name:        ScrollChain,
	ScrollSepoliaChain.Name: ScrollSepoliaChain,
	DevChain.Name:           DevChain,
}

// ChainByName returns a copy of the named preset, so callers may override the
// RPC endpoint without touching the shared value.
func ChainByName(name string) (*Chain, error) {
	c, ok := Chains[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownChain, name, strings.Join(ChainNames(), ", "))
	}
	cpy := *c
	return &cpy, nil
}

// ChainByID returns a copy of the preset with the given chain id, or nil.
func ChainByID(id uint64) *Chain {
	for _, c := range Chains {
		if c.ChainID == id {
			cpy := *c
			return &cpy
		}
	}
	return nil
}

// ChainNames returns the sorted preset names.
func ChainNames() []string {
	names := make([]string, 0, len(Chains))
	for name := range Chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
