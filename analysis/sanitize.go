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

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// newPolicy returns the sanitizer applied to every report. Reports come from a
// remote model and are rendered as markup, so they are handled as untrusted
// user content. Class attributes survive to keep the requested table styling.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	return p
}

var defaultPolicy = newPolicy()

// Sanitize strips scripts, event handlers and other active content from report
// markup. A surrounding markdown code fence, which models like to add, is
// removed first.
func Sanitize(markup string) string {
	return defaultPolicy.Sanitize(stripFence(markup))
}

func stripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	} else {
		t = strings.TrimPrefix(t, "```")
	}
	return strings.TrimSpace(t)
}
