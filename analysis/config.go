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

package analysis

import "time"

// Config holds the settings of the remote analysis client.
type Config struct {
	// APIKey authenticates against the service. When empty the
	// ANTHROPIC_API_KEY environment variable is used.
	APIKey string `toml:",omitempty"`

	// BaseURL overrides the service endpoint, mostly for proxies and tests.
	BaseURL string `toml:",omitempty"`

	Model       string
	MaxTokens   int64
	Temperature float64

	// Timeout bounds a single analysis request.
	Timeout time.Duration

	// RequestsPerMinute caps outgoing requests locally. Zero disables the cap.
	RequestsPerMinute int
}

// DefaultConfig contains the settings the analysis client runs with when
// nothing is configured.
var DefaultConfig = Config{
	Model:     "claude-3-5-sonnet-20240620",
	MaxTokens: 8192,
	Timeout:   3 * time.Minute,
}
