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
	"errors"
)

// ErrInFlight is returned when an operation is triggered while the previous
// one of the same kind has not finished. The trigger has no effect.
var ErrInFlight = errors.New("operation already in flight")

// ErrPrecondition matches every *PreconditionError.
var ErrPrecondition = errors.New("precondition failed")

const (
	msgCompileFirst  = "Please compile the contract first."
	msgConnectWallet = "Please connect your wallet first."
	msgSourceChanged = "The source code has changed since it was compiled. Please compile it again."
)

// PreconditionError is returned when a deployment is triggered without the
// state it requires.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return "precondition failed: " + e.Reason }

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }

func (e *PreconditionError) UserMessage() string { return e.Reason }

// userMessager is implemented by the errors of every adapter.
type userMessager interface {
	UserMessage() string
}

// userMessage picks the message displayed for a failed operation.
func userMessage(op Op, err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return op.fallback()
}
