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

package server

import (
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// Config holds the settings of the HTTP interface.
type Config struct {
	Host string
	Port int

	// CorsAllowedOrigins lists the origins browsers may call the API from.
	CorsAllowedOrigins []string `toml:",omitempty"`

	// VirtualHosts lists the accepted Host header values. "*" accepts any.
	VirtualHosts []string `toml:",omitempty"`

	// WSOrigins lists the origins accepted for websocket connections.
	WSOrigins []string `toml:",omitempty"`

	// MaxSourceSize limits the size of an uploaded contract source.
	MaxSourceSize int64

	Timeouts rpc.HTTPTimeouts
}

// DefaultConfig serves on localhost only.
var DefaultConfig = Config{
	Host:          "localhost",
	Port:          8645,
	VirtualHosts:  []string{"localhost"},
	MaxSourceSize: 1 << 20,
	Timeouts:      rpc.DefaultHTTPTimeouts,
}

// checkTimeouts replaces timeouts too short to be meaningful.
func checkTimeouts(t *rpc.HTTPTimeouts) {
	fix := func(name string, v *time.Duration, def time.Duration) {
		if *v < time.Second {
			log.Warn("Sanitizing invalid HTTP "+name+" timeout", "provided", *v, "updated", def)
			*v = def
		}
	}
	fix("read", &t.ReadTimeout, rpc.DefaultHTTPTimeouts.ReadTimeout)
	fix("read header", &t.ReadHeaderTimeout, rpc.DefaultHTTPTimeouts.ReadHeaderTimeout)
	fix("write", &t.WriteTimeout, rpc.DefaultHTTPTimeouts.WriteTimeout)
	fix("idle", &t.IdleTimeout, rpc.DefaultHTTPTimeouts.IdleTimeout)
}
