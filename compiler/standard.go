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

package compiler

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// unitName is the name the source document is compiled under.
const unitName = "Compiled_Contracts"

type standardInput struct {
	Language string                `json:"language"`
	Sources  map[string]sourceUnit `json:"sources"`
	Settings standardSettings      `json:"settings"`
}

type sourceUnit struct {
	Content string `json:"content"`
}

type standardSettings struct {
	Optimizer       optimizer                      `json:"optimizer"`
	EVMVersion      string                         `json:"evmVersion,omitempty"`
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

type optimizer struct {
	Enabled bool `json:"enabled"`
	Runs    int  `json:"runs"`
}

type diagnostic struct {
	Severity         string `json:"severity"`
	Type             string `json:"type"`
	Component        string `json:"component"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage"`
}

type contractOutput struct {
	ABI json.RawMessage `json:"abi"`
	EVM struct {
		Bytecode struct {
			Object string `json:"object"`
		} `json:"bytecode"`
	} `json:"evm"`
}

type standardOutput struct {
	Errors    []diagnostic                         `json:"errors"`
	Contracts map[string]map[string]contractOutput `json:"contracts"`
}

func newStandardInput(source string, cfg Config) standardInput {
	return standardInput{
		Language: "Solidity",
		Sources:  map[string]sourceUnit{unitName: {Content: source}},
		Settings: standardSettings{
			Optimizer:  optimizer{Enabled: cfg.Optimize, Runs: cfg.OptimizeRuns},
			EVMVersion: cfg.EVMVersion,
			OutputSelection: map[string]map[string][]string{
				"*": {"*": {"abi", "evm.bytecode.object"}},
			},
		},
	}
}

// extract picks the named contract out of a standard-json compiler answer.
func extract(output []byte, contract string) (*Artifact, error) {
	var out standardOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, &CompileError{Kind: MalformedOutput, Contract: contract, err: err}
	}
	var diags []string
	for _, d := range out.Errors {
		if d.Severity != "error" {
			continue
		}
		msg := d.FormattedMessage
		if msg == "" {
			msg = d.Type + ": " + d.Message
		}
		diags = append(diags, msg)
	}
	if len(diags) > 0 {
		return nil, &CompileError{Kind: Diagnostics, Contract: contract, Diagnostics: strings.Join(diags, "")}
	}
	c, ok := out.Contracts[unitName][contract]
	if !ok {
		return nil, &CompileError{Kind: ContractNotFound, Contract: contract}
	}
	object := strings.TrimPrefix(c.EVM.Bytecode.Object, "0x")
	if object == "" {
		return nil, &CompileError{Kind: NotDeployable, Contract: contract, err: errors.New("empty bytecode")}
	}
	code, err := hex.DecodeString(object)
	if err != nil {
		// Unresolved library placeholders (__$...$__) end up here.
		return nil, &CompileError{Kind: NotDeployable, Contract: contract, err: errors.New("bytecode contains unlinked library references")}
	}
	parsed, err := abi.JSON(bytes.NewReader(c.ABI))
	if err != nil {
		return nil, &CompileError{Kind: MalformedOutput, Contract: contract, err: err}
	}
	return &Artifact{
		Name:     contract,
		ABI:      parsed,
		RawABI:   c.ABI,
		Bytecode: hexutil.Bytes(code),
	}, nil
}
