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
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/log"
	"github.com/rs/cors"
)

// newCorsHandler wraps next with CORS headers for the allowed origins.
func newCorsHandler(next http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		return next
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(next)
}

// virtualHostHandler rejects requests whose Host header is not allowed.
// Requests addressed to an IP are always accepted.
type virtualHostHandler struct {
	vhosts mapset.Set[string]
	next   http.Handler
}

func newVHostHandler(vhosts []string, next http.Handler) http.Handler {
	set := mapset.NewSet[string]()
	for _, h := range vhosts {
		set.Add(strings.ToLower(h))
	}
	return &virtualHostHandler{vhosts: set, next: next}
}

func (h *virtualHostHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Host == "" {
		h.next.ServeHTTP(w, r)
		return
	}
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		host = r.Host
	}
	if net.ParseIP(host) != nil {
		h.next.ServeHTTP(w, r)
		return
	}
	if h.vhosts.Contains("*") || h.vhosts.Contains(strings.ToLower(host)) {
		h.next.ServeHTTP(w, r)
		return
	}
	http.Error(w, "invalid host specified", http.StatusForbidden)
}

// wsHandshakeValidator checks the Origin of websocket upgrade requests.
// Without configured origins only localhost and the machine's own hostname
// are accepted.
func wsHandshakeValidator(allowedOrigins []string) func(*http.Request) bool {
	origins := mapset.NewSet[string]()
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		if origin != "" {
			origins.Add(strings.ToLower(origin))
		}
	}
	if origins.Cardinality() == 0 {
		origins.Add("http://localhost")
		if hostname, err := os.Hostname(); err == nil {
			origins.Add("http://" + strings.ToLower(hostname))
		}
	}
	log.Debug("Allowed websocket origins", "origins", origins.ToSlice())

	return func(r *http.Request) bool {
		// Browsers always send Origin; other clients are not restricted.
		if _, ok := r.Header["Origin"]; !ok {
			return true
		}
		origin := strings.ToLower(r.Header.Get("Origin"))
		if allowAll || originIsAllowed(origins, origin) {
			return true
		}
		log.Warn("Rejected websocket connection", "origin", origin)
		return false
	}
}

func originIsAllowed(allowed mapset.Set[string], browserOrigin string) bool {
	for _, rule := range allowed.ToSlice() {
		if ruleAllowsOrigin(rule, browserOrigin) {
			return true
		}
	}
	return false
}

// ruleAllowsOrigin matches an origin against a rule. Empty rule parts
// (scheme, hostname, port) match anything.
func ruleAllowsOrigin(rule, browserOrigin string) bool {
	ruleScheme, ruleHost, rulePort, err := parseOrigin(rule)
	if err != nil {
		log.Warn("Error parsing allowed origin specification", "spec", rule, "err", err)
		return false
	}
	scheme, host, port, err := parseOrigin(browserOrigin)
	if err != nil {
		log.Warn("Error parsing browser 'Origin' field", "origin", browserOrigin, "err", err)
		return false
	}
	switch {
	case ruleScheme != "" && ruleScheme != scheme:
		return false
	case ruleHost != "" && ruleHost != host:
		return false
	case rulePort != "" && rulePort != port:
		return false
	}
	return true
}

func parseOrigin(origin string) (scheme, hostname, port string, err error) {
	u, err := url.Parse(strings.ToLower(origin))
	if err != nil {
		return "", "", "", err
	}
	if strings.Contains(origin, "://") {
		return u.Scheme, u.Hostname(), u.Port(), nil
	}
	// "host:port" parses as scheme and opaque part, a bare "host" as path.
	hostname, port = u.Scheme, u.Opaque
	if hostname == "" {
		hostname = strings.ToLower(origin)
	}
	return "", hostname, port, nil
}
