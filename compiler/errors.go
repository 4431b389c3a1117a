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
	"errors"
	"fmt"
)

// ErrorKind classifies compilation failures.
type ErrorKind int

const (
	// Diagnostics means the compiler rejected the source.
	Diagnostics ErrorKind = iota
	// ContractNotFound means the requested contract is not in the output.
	ContractNotFound
	// NotDeployable means the contract compiled to no (or unlinked) bytecode.
	NotDeployable
	// CompilerUnavailable means the compiler could not be run at all.
	CompilerUnavailable
	// MalformedOutput means the compiler answered with something unreadable.
	MalformedOutput
)

func (k ErrorKind) String() string {
	switch k {
	case Diagnostics:
		return "diagnostics"
	case ContractNotFound:
		return "contract-not-found"
	case NotDeployable:
		return "not-deployable"
	case CompilerUnavailable:
		return "compiler-unavailable"
	case MalformedOutput:
		return "malformed-output"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// errSolcNotFound is reported by runners when the compiler binary is missing.
var errSolcNotFound = errors.New("solc executable not found")

// CompileError is returned by Compile for every failure.
type CompileError struct {
	Kind     ErrorKind
	Contract string

	// Diagnostics holds the compiler's error output, verbatim.
	Diagnostics string

	err error
}

func (e *CompileError) Error() string {
	switch e.Kind {
	case Diagnostics:
		return e.Diagnostics
	case ContractNotFound:
		return fmt.Sprintf("contract %q not found in compiler output", e.Contract)
	case NotDeployable:
		return fmt.Sprintf("contract %q is not deployable: %v", e.Contract, e.err)
	default:
		return fmt.Sprintf("compiler %v: %v", e.Kind, e.err)
	}
}

func (e *CompileError) Unwrap() error { return e.err }

// UserMessage returns the message shown to the user. Compiler diagnostics are
// passed through untouched.
func (e *CompileError) UserMessage() string {
	switch e.Kind {
	case Diagnostics:
		return e.Diagnostics
	case ContractNotFound:
		return fmt.Sprintf("Contract %q was not found in the compiled source.", e.Contract)
	case NotDeployable:
		return fmt.Sprintf("Contract %q has no deployable bytecode. Abstract contracts, interfaces and unlinked libraries cannot be deployed.", e.Contract)
	case CompilerUnavailable:
		return "The Solidity compiler is not available. Please check the compiler installation."
	default:
		return "The compiler returned an unreadable result. Please try again."
	}
}
