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

package deployer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sunyihoo/auditai/wallet"
)

// ErrorKind classifies deployment failures.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	UserRejected
	InsufficientFunds
	NetworkError
	ReceiptTimeout
	Reverted
	MissingContractAddress
	InvalidArguments
	NotConnected
)

var kindNames = [...]string{
	Unknown:                "unknown",
	UserRejected:           "user-rejected",
	InsufficientFunds:      "insufficient-funds",
	NetworkError:           "network-error",
	ReceiptTimeout:         "receipt-timeout",
	Reverted:               "reverted",
	MissingContractAddress: "missing-contract-address",
	InvalidArguments:       "invalid-arguments",
	NotConnected:           "not-connected",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// fallbackMessage is shown when a failure carries nothing more specific.
const fallbackMessage = "An error occurred during deployment. Please try again."

// DeployError is returned by Deploy for every failure.
type DeployError struct {
	Kind ErrorKind

	// TxHash is set when the transaction was submitted before failing.
	TxHash common.Hash

	err error
}

func (e *DeployError) Error() string {
	if e.TxHash != (common.Hash{}) {
		return fmt.Sprintf("deployment failed: %v (tx %s): %v", e.Kind, e.TxHash.Hex(), e.err)
	}
	return fmt.Sprintf("deployment failed: %v: %v", e.Kind, e.err)
}

func (e *DeployError) Unwrap() error { return e.err }

// UserMessage returns the message shown to the user.
func (e *DeployError) UserMessage() string {
	switch e.Kind {
	case UserRejected:
		return "Transaction was rejected in the wallet."
	case InsufficientFunds:
		return "Insufficient funds to pay for the deployment transaction."
	case NetworkError:
		return "Network error while talking to the blockchain node. Please check your connection and try again."
	case ReceiptTimeout:
		return fmt.Sprintf("Transaction %s was sent but no confirmation arrived in time. It may still be mined.", e.TxHash.Hex())
	case Reverted:
		return fmt.Sprintf("Deployment transaction %s was reverted.", e.TxHash.Hex())
	case MissingContractAddress:
		return "Deployment was confirmed but no contract address was returned."
	case InvalidArguments:
		return fmt.Sprintf("Invalid constructor arguments: %v", e.err)
	case NotConnected:
		return "Please connect your wallet first."
	}
	if e.err != nil && e.err.Error() != "" {
		return e.err.Error()
	}
	return fallbackMessage
}

// classify maps an error from signing, submission or the RPC transport onto a
// failure kind.
func classify(err error) ErrorKind {
	switch {
	case wallet.IsSignatureDenied(err):
		return UserRejected
	case errors.Is(err, wallet.ErrNotConnected):
		return NotConnected
	case strings.Contains(strings.ToLower(err.Error()), "insufficient funds"):
		return InsufficientFunds
	case isNetworkError(err):
		return NetworkError
	}
	return Unknown
}

func isNetworkError(err error) bool {
	var (
		netErr net.Error
		urlErr *url.Error
	)
	switch {
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
