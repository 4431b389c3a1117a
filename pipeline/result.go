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

package pipeline

import (
	"fmt"

	"github.com/sunyihoo/auditai/analysis"
	"github.com/sunyihoo/auditai/compiler"
)

// Kind tags the variant held by a Result.
type Kind int

const (
	None Kind = iota
	Audit
	Compilation
	Deployment
	Error
)

var kindNames = [...]string{
	None:        "none",
	Audit:       "audit",
	Compilation: "compilation",
	Deployment:  "deployment",
	Error:       "error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(input []byte) error {
	for i, name := range kindNames {
		if name == string(input) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown result kind %q", input)
}

// DeploymentInfo is the payload of a Deployment result.
type DeploymentInfo struct {
	TxID            string `json:"txid"`
	ContractAddress string `json:"contractAddress"`
	ExplorerURL     string `json:"explorerUrl,omitempty"`
	ExplorerName    string `json:"explorerName,omitempty"`
	Chain           string `json:"chain"`
	BlockNumber     uint64 `json:"blockNumber"`
}

// Result is the outcome currently on display. Exactly the payload matching
// Kind is set.
type Result struct {
	Kind       Kind               `json:"kind"`
	Report     *analysis.Report   `json:"report,omitempty"`
	Artifact   *compiler.Artifact `json:"artifact,omitempty"`
	Deployment *DeploymentInfo    `json:"deployment,omitempty"`
	Message    string             `json:"message,omitempty"`
}

func errorResult(msg string) Result {
	return Result{Kind: Error, Message: msg}
}

// Flags tracks which operations are in flight.
type Flags struct {
	Auditing  bool `json:"auditing"`
	Compiling bool `json:"compiling"`
	Deploying bool `json:"deploying"`
}

func (f *Flags) busy(op Op) *bool {
	switch op {
	case OpAudit:
		return &f.Auditing
	case OpCompile:
		return &f.Compiling
	case OpDeploy:
		return &f.Deploying
	}
	panic(fmt.Sprintf("pipeline: unknown operation %d", int(op)))
}

// Snapshot is a point-in-time copy of the pipeline state.
type Snapshot struct {
	Seq    uint64 `json:"seq"`
	Source string `json:"source"`
	Result Result `json:"result"`
	Flags  Flags  `json:"flags"`

	// Artifact is the artifact a deployment would use, if any. Stale is set
	// when it was compiled from a source other than the current one.
	Artifact *compiler.Artifact `json:"artifact,omitempty"`
	Stale    bool               `json:"stale"`

	WalletConnected bool `json:"walletConnected"`
}
