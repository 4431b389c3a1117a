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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/auditai/params"
)

const solcVersionOutput = "solc, the solidity compiler commandline interface\nVersion: 0.8.26+commit.8a97fa7a.Linux.g++\n"

// fakeSolc answers --version and --standard-json with canned output and
// records the last standard-json input.
func fakeSolc(t *testing.T, fixture string) (*Solc, *[]byte) {
	t.Helper()
	output, err := os.ReadFile(filepath.Join("testdata", fixture))
	require.NoError(t, err)

	var input []byte
	s := NewSolc(DefaultConfig)
	s.run = func(ctx context.Context, args []string, stdin []byte) ([]byte, error) {
		switch args[0] {
		case "--version":
			return []byte(solcVersionOutput), nil
		case "--standard-json":
			input = stdin
			return output, nil
		}
		return nil, fmt.Errorf("unexpected args %v", args)
	}
	return s, &input
}

// testdata/simplestorage.json is a trimmed solc answer for the sample
// contract. Its bytecode is a minimal hand-assembled SimpleStorage so the
// artifact can be deployed on a simulated chain by other packages' tests.
func TestCompileSimpleStorage(t *testing.T) {
	s, input := fakeSolc(t, "simplestorage.json")

	art, err := s.Compile(context.Background(), params.SampleContractSource, params.SampleContractName)
	require.NoError(t, err)

	get, ok := art.ABI.Methods["get"]
	require.True(t, ok, "missing get")
	assert.Len(t, get.Inputs, 0)
	require.Len(t, get.Outputs, 1)
	assert.Equal(t, abi.UintTy, get.Outputs[0].Type.T)
	assert.Equal(t, 256, get.Outputs[0].Type.Size)

	set, ok := art.ABI.Methods["set"]
	require.True(t, ok, "missing set")
	require.Len(t, set.Inputs, 1)
	assert.Equal(t, "uint256", set.Inputs[0].Type.String())
	assert.Len(t, set.Outputs, 0)

	assert.NotEmpty(t, art.Bytecode)
	assert.Equal(t, "SimpleStorage", art.Name)
	assert.Equal(t, SourceHash(params.SampleContractSource), art.SourceHash)
	assert.Equal(t, "0.8.26+commit.8a97fa7a", art.Info.CompilerVersion)
	assert.JSONEq(t, string(art.RawABI), string(mustJSON(t, art.Info.AbiDefinition)))

	// The whole source goes to the compiler under the fixed unit name.
	var req standardInput
	require.NoError(t, json.Unmarshal(*input, &req))
	assert.Equal(t, "Solidity", req.Language)
	assert.Equal(t, params.SampleContractSource, req.Sources[unitName].Content)
	assert.Equal(t, []string{"abi", "evm.bytecode.object"}, req.Settings.OutputSelection["*"]["*"])
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestCompileDiagnosticsVerbatim(t *testing.T) {
	s, _ := fakeSolc(t, "syntaxerror.json")

	_, err := s.Compile(context.Background(), "contract Broken {", "Broken")
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, Diagnostics, cerr.Kind)

	want := "ParserError: Expected ';' but got '}'\n --> Compiled_Contracts:7:5:\n  |\n7 |     }\n  |     ^\n\n" +
		"DeclarationError: Undeclared identifier.\n --> Compiled_Contracts:9:9:\n"
	assert.Equal(t, want, cerr.Diagnostics)
	assert.Equal(t, want, cerr.Error())
	assert.Equal(t, want, cerr.UserMessage())
	assert.NotContains(t, cerr.Diagnostics, "Unreachable code", "warnings must not fail the build")
}

func TestCompileContractNotFound(t *testing.T) {
	s, _ := fakeSolc(t, "simplestorage.json")

	_, err := s.Compile(context.Background(), params.SampleContractSource, "Token")
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ContractNotFound, cerr.Kind)
	assert.Equal(t, `Contract "Token" was not found in the compiled source.`, cerr.UserMessage())
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		output string
		kind   ErrorKind
	}{
		{"garbage", `not json`, MalformedOutput},
		{"empty bytecode", `{"contracts":{"Compiled_Contracts":{"I":{"abi":[],"evm":{"bytecode":{"object":""}}}}}}`, NotDeployable},
		{"unlinked", `{"contracts":{"Compiled_Contracts":{"I":{"abi":[],"evm":{"bytecode":{"object":"6080__$53aea86b7d70b31448b230b20ae141a537$__"}}}}}}`, NotDeployable},
		{"bad abi", `{"contracts":{"Compiled_Contracts":{"I":{"abi":[{"type":"function","name":"f","inputs":[{"name":"a","type":"foo"}]}],"evm":{"bytecode":{"object":"00"}}}}}}`, MalformedOutput},
		{"other unit", `{"contracts":{"Other":{"I":{"abi":[],"evm":{"bytecode":{"object":"00"}}}}}}`, ContractNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extract([]byte(tt.output), "I")
			var cerr *CompileError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.kind, cerr.Kind)
		})
	}
}

func TestCompilerUnavailable(t *testing.T) {
	var calls atomic.Int32
	s := NewSolc(Config{Path: "solc-does-not-exist"})
	s.run = func(ctx context.Context, args []string, stdin []byte) ([]byte, error) {
		calls.Add(1)
		return nil, fmt.Errorf("%w: %v", errSolcNotFound, exec.ErrNotFound)
	}
	_, err := s.Compile(context.Background(), params.SampleContractSource, params.SampleContractName)

	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, CompilerUnavailable, cerr.Kind)
	assert.True(t, errors.Is(err, errSolcNotFound))
	assert.EqualValues(t, 1, calls.Load(), "compilation must not be retried")
}

func TestExecRunnerMissingBinary(t *testing.T) {
	run := execRunner("solc-does-not-exist-anywhere")
	_, err := run(context.Background(), []string{"--version"}, nil)
	assert.ErrorIs(t, err, errSolcNotFound)
}

// TestSolcIntegration runs the real compiler if one is installed.
func TestSolcIntegration(t *testing.T) {
	if _, err := exec.LookPath("solc"); err != nil {
		t.Skip("solc not installed")
	}
	art, err := NewSolc(DefaultConfig).Compile(context.Background(), params.SampleContractSource, params.SampleContractName)
	require.NoError(t, err)
	assert.Contains(t, art.ABI.Methods, "get")
	assert.Contains(t, art.ABI.Methods, "set")
	assert.NotEmpty(t, art.Bytecode)
}
