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
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := map[int]Kind{
		429: RateLimited,
		529: Overloaded,
		400: InvalidRequest,
		401: Unauthorized,
		500: ServiceError,
		503: ServiceError,
		599: ServiceError,
		403: UnknownServiceError,
		404: UnknownServiceError,
		413: UnknownServiceError,
	}
	for status, want := range tests {
		if have := classifyStatus(status); have != want {
			t.Errorf("status %d: have %v, want %v", status, have, want)
		}
	}
}

func TestUserMessagesDistinct(t *testing.T) {
	seen := make(map[string]Kind)
	for kind := range kindNames {
		msg := (&Error{Kind: kind, Detail: "boom"}).UserMessage()
		if prev, ok := seen[msg]; ok {
			t.Fatalf("kinds %v and %v share message %q", prev, kind, msg)
		}
		seen[msg] = kind
	}
	assert.Len(t, seen, 7)
}

func TestUnstructuredFailureIsTransport(t *testing.T) {
	err := classifyError(errors.New("dial tcp: lookup api.example: no such host"))
	assert.Equal(t, TransportError, err.Kind)
	assert.Equal(t, msgTransportError, err.UserMessage())
	assert.Contains(t, err.Error(), "no such host")
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: RateLimited, Status: http.StatusTooManyRequests, Detail: "slow down"}
	assert.Equal(t, "contract analysis failed: rate-limited (status 429): slow down", err.Error())
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`<p onclick="steal()">hi</p>`, `<p>hi</p>`},
		{"```html\n<table class=\"w-full\"><tr><td>x</td></tr></table>\n```", `<table class="w-full"><tr><td>x</td></tr></table>`},
		{`<a href="javascript:alert(1)">x</a>`, `x`},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in))
	}
}
