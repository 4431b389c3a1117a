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

// Package compiler wraps the Solidity compiler executable (solc) and turns its
// standard-json output into deployable artifacts.
// 它封装 solc 可执行文件，将 standard-json 输出转换为可部署的合约产物（ABI + 字节码）。
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethcompiler "github.com/ethereum/go-ethereum/common/compiler"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// Config contains the compiler invocation settings.
type Config struct {
	Path         string // solc executable
	EVMVersion   string `toml:",omitempty"`
	Optimize     bool
	OptimizeRuns int
	Timeout      time.Duration
}

// DefaultConfig is the compiler setup used when nothing is configured.
var DefaultConfig = Config{
	Path:         "solc",
	OptimizeRuns: 200,
	Timeout:      time.Minute,
}

// Artifact is a compiled, deployable contract. It is never modified after
// creation.
type Artifact struct {
	Name       string          `json:"name"`
	ABI        abi.ABI         `json:"-"`
	RawABI     json.RawMessage `json:"abi"`
	Bytecode   hexutil.Bytes   `json:"bytecode"`
	SourceHash common.Hash     `json:"sourceHash"`

	Info ethcompiler.ContractInfo `json:"info"`
}

// SourceHash returns the fingerprint artifacts record of the source they were
// compiled from.
func SourceHash(source string) common.Hash {
	return crypto.Keccak256Hash([]byte(source))
}

// Runner executes the compiler with the given arguments and standard input.
type Runner func(ctx context.Context, args []string, stdin []byte) ([]byte, error)

// Solc compiles contract sources with an external solc binary.
type Solc struct {
	cfg Config
	run Runner

	versionOnce sync.Once
	version     string
}

// NewSolc creates a compiler running the configured solc executable.
func NewSolc(cfg Config) *Solc {
	if cfg.Path == "" {
		cfg.Path = DefaultConfig.Path
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}
	return &Solc{cfg: cfg, run: execRunner(cfg.Path)}
}

// NewSolcWithRunner creates a compiler that invokes solc through run, for
// example inside a container or against canned output.
func NewSolcWithRunner(cfg Config, run Runner) *Solc {
	s := NewSolc(cfg)
	s.run = run
	return s
}

func execRunner(path string) Runner {
	return func(ctx context.Context, args []string, stdin []byte) ([]byte, error) {
		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, path, args...)
		cmd.Stdin = bytes.NewReader(stdin)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return nil, fmt.Errorf("%w: %v", errSolcNotFound, err)
			}
			return nil, fmt.Errorf("%v: %s", err, strings.TrimSpace(stderr.String()))
		}
		return stdout.Bytes(), nil
	}
}

var versionRegexp = regexp.MustCompile(`([0-9]+)\.([0-9]+)\.([0-9]+)(\+commit\.[0-9a-f]+)?`)

// Version returns the compiler version, or the empty string if it cannot be
// determined. The result is cached.
func (s *Solc) Version(ctx context.Context) string {
	s.versionOnce.Do(func() {
		out, err := s.run(ctx, []string{"--version"}, nil)
		if err != nil {
			log.Debug("Failed to query solc version", "err", err)
			return
		}
		s.version = versionRegexp.FindString(string(out))
	})
	return s.version
}

// Compile compiles source and returns the artifact of the named contract. All
// errors are of type *CompileError.
func (s *Solc) Compile(ctx context.Context, source, contract string) (*Artifact, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	input, err := json.Marshal(newStandardInput(source, s.cfg))
	if err != nil {
		return nil, &CompileError{Kind: MalformedOutput, Contract: contract, err: err}
	}
	start := time.Now()
	output, err := s.run(ctx, []string{"--standard-json"}, input)
	if err != nil {
		log.Warn("Solidity compiler failed to run", "path", s.cfg.Path, "err", err)
		return nil, &CompileError{Kind: CompilerUnavailable, Contract: contract, err: err}
	}
	artifact, err := extract(output, contract)
	if err != nil {
		log.Debug("Compilation rejected", "contract", contract, "err", err)
		return nil, err
	}
	version := s.Version(ctx)
	artifact.SourceHash = SourceHash(source)
	artifact.Info = ethcompiler.ContractInfo{
		Source:          source,
		Language:        "Solidity",
		LanguageVersion: version,
		CompilerVersion: version,
		CompilerOptions: s.options(),
		AbiDefinition:   artifact.RawABI,
	}
	log.Debug("Compiled contract", "contract", contract, "size", len(artifact.Bytecode), "solc", version, "elapsed", time.Since(start))
	return artifact, nil
}

func (s *Solc) options() string {
	opts := []string{"--standard-json"}
	if s.cfg.Optimize {
		opts = append(opts, "--optimize", fmt.Sprintf("--optimize-runs=%d", s.cfg.OptimizeRuns))
	}
	if s.cfg.EVMVersion != "" {
		opts = append(opts, "--evm-version="+s.cfg.EVMVersion)
	}
	return strings.Join(opts, " ")
}
