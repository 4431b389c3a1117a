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
	"github.com/ethereum/go-ethereum/metrics"
)

// opMetrics counts the outcomes of one operation kind.
type opMetrics struct {
	started    metrics.Counter
	succeeded  metrics.Counter
	failed     metrics.Counter
	suppressed metrics.Counter
	duration   metrics.Timer
}

func newOpMetrics(op Op) *opMetrics {
	prefix := "pipeline/" + op.String() + "/"
	return &opMetrics{
		started:    metrics.NewRegisteredCounter(prefix+"started", nil),
		succeeded:  metrics.NewRegisteredCounter(prefix+"succeeded", nil),
		failed:     metrics.NewRegisteredCounter(prefix+"failed", nil),
		suppressed: metrics.NewRegisteredCounter(prefix+"suppressed", nil),
		duration:   metrics.NewRegisteredTimer(prefix+"duration", nil),
	}
}

var (
	opStats = map[Op]*opMetrics{
		OpAudit:   newOpMetrics(OpAudit),
		OpCompile: newOpMetrics(OpCompile),
		OpDeploy:  newOpMetrics(OpDeploy),
	}
	preconditionFailures = metrics.NewRegisteredCounter("pipeline/deploy/precondition", nil)
	sourceEdits          = metrics.NewRegisteredCounter("pipeline/source/edits", nil)
)
