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
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = "contract A {}"

// serve starts a fake analysis service answering every request with the given
// status, body and headers.
func serve(t *testing.T, status int, body string, header http.Header) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, vs := range header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, New(Config{APIKey: "test-key", BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
}

func errorBody(typ, msg string) string {
	return `{"type":"error","error":{"type":"` + typ + `","message":"` + msg + `"}}`
}

func TestAnalyzeSuccess(t *testing.T) {
	var (
		gotPath string
		gotKey  string
		gotReq  map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-sonnet-20240620",
			"content": [{"type": "text", "text": "<table class=\"w-full\"><tr><td>Executive Summary</td></tr></table><script>alert(1)</script>"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 34}
		}`)
	}))
	defer srv.Close()

	client := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	report, err := client.Analyze(context.Background(), testSource)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(gotPath, "/v1/messages"), "path %q", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, DefaultConfig.Model, gotReq["model"])
	assert.EqualValues(t, DefaultConfig.MaxTokens, gotReq["max_tokens"])
	assert.Contains(t, string(mustJSON(t, gotReq["system"])), "Executive Summary")
	assert.Contains(t, string(mustJSON(t, gotReq["messages"])), testSource)

	assert.Equal(t, "msg_01", report.ID)
	assert.EqualValues(t, 12, report.InputTokens)
	assert.EqualValues(t, 34, report.OutputTokens)
	assert.Contains(t, report.Markup, "Executive Summary")
	assert.Contains(t, report.Markup, `class="w-full"`)
	assert.NotContains(t, report.Markup, "<script")
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestAnalyzeClassifiedFailures(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		header  http.Header
		kind    Kind
		message string
	}{
		{
			status:  http.StatusTooManyRequests,
			body:    errorBody("rate_limit_error", "slow down"),
			kind:    RateLimited,
			message: "Rate limit exceeded. Please try again in a few minutes.",
		},
		{
			status:  529,
			body:    errorBody("overloaded_error", "Overloaded"),
			kind:    Overloaded,
			message: msgOverloaded,
		},
		{
			status:  http.StatusBadRequest,
			body:    errorBody("invalid_request_error", "prompt is too long"),
			kind:    InvalidRequest,
			message: msgInvalidRequest,
		},
		{
			status:  http.StatusUnauthorized,
			body:    errorBody("authentication_error", "invalid x-api-key"),
			kind:    Unauthorized,
			message: msgUnauthorized,
		},
		{
			status:  http.StatusBadGateway,
			body:    errorBody("api_error", "upstream"),
			kind:    ServiceError,
			message: msgServiceError,
		},
		{
			status:  http.StatusForbidden,
			body:    errorBody("permission_error", "no access to model"),
			header:  http.Header{"Request-Id": []string{"req_0042"}},
			kind:    UnknownServiceError,
			message: "Error analyzing contract: no access to model (Request ID: req_0042)",
		},
		{
			status:  http.StatusNotFound,
			body:    errorBody("not_found_error", "model not found"),
			kind:    UnknownServiceError,
			message: "Error analyzing contract: model not found",
		},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			_, client := serve(t, tt.status, tt.body, tt.header)
			report, err := client.Analyze(context.Background(), testSource)
			require.Nil(t, report)

			var aerr *Error
			require.True(t, errors.As(err, &aerr), "unexpected error type %T", err)
			assert.Equal(t, tt.kind, aerr.Kind)
			assert.Equal(t, tt.status, aerr.Status)
			assert.Equal(t, tt.message, aerr.UserMessage())
		})
	}
}

func TestAnalyzeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(Config{APIKey: "test-key", BaseURL: url + "/", Timeout: 2 * time.Second})
	_, err := client.Analyze(context.Background(), testSource)

	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, TransportError, aerr.Kind)
	assert.Zero(t, aerr.Status)
	assert.Equal(t, msgTransportError, aerr.UserMessage())
}

func TestAnalyzeLocalLimiter(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, errorBody("rate_limit_error", "slow down"))
	}))
	defer srv.Close()

	client := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/", RequestsPerMinute: 1})
	client.Analyze(context.Background(), testSource)
	_, err := client.Analyze(context.Background(), testSource)

	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, RateLimited, aerr.Kind)
	assert.Equal(t, 1, calls, "throttled call must not reach the service")
}
