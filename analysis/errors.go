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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// Kind classifies why a contract analysis failed.
type Kind int

const (
	// TransportError means no structured response reached the client.
	TransportError Kind = iota
	// RateLimited means the service (or the local request budget) throttled the call.
	RateLimited
	// Overloaded means the service is temporarily out of capacity.
	Overloaded
	// InvalidRequest means the input was rejected, e.g. too large or malformed.
	InvalidRequest
	// Unauthorized means the credentials were refused.
	Unauthorized
	// ServiceError is any server-side fault in the 5xx range.
	ServiceError
	// UnknownServiceError is any other structured failure reported by the service.
	UnknownServiceError
)

// statusOverloaded is the non-standard status the analysis service uses to
// signal transient capacity exhaustion.
const statusOverloaded = 529

var kindNames = map[Kind]string{
	TransportError:      "transport",
	RateLimited:         "rate-limited",
	Overloaded:          "overloaded",
	InvalidRequest:      "invalid-request",
	Unauthorized:        "unauthorized",
	ServiceError:        "service-error",
	UnknownServiceError: "unknown-service-error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// User-facing messages, one per failure kind. UnknownServiceError is built
// from the service message instead.
const (
	msgRateLimited    = "Rate limit exceeded. Please try again in a few minutes."
	msgOverloaded     = "The AI service is currently experiencing high demand. Please try again in a few minutes."
	msgInvalidRequest = "Invalid request. The contract code may be too large or contain invalid characters."
	msgUnauthorized   = "Authentication error. Please check your API key configuration."
	msgServiceError   = "Server error. The AI service is currently experiencing issues. Please try again later."
	msgTransportError = "Error analyzing contract. Please check your network connection and try again."
)

// Error is a classified analysis failure.
type Error struct {
	Kind      Kind
	Status    int    // HTTP status of the service response, zero if none arrived
	RequestID string // service trace identifier, if reported
	Detail    string // service message or transport failure text

	err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("contract analysis failed: ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.err }

// UserMessage returns the message shown to the user for this failure.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case RateLimited:
		return msgRateLimited
	case Overloaded:
		return msgOverloaded
	case InvalidRequest:
		return msgInvalidRequest
	case Unauthorized:
		return msgUnauthorized
	case ServiceError:
		return msgServiceError
	case UnknownServiceError:
		msg := "Error analyzing contract: " + e.Detail
		if e.RequestID != "" {
			msg += " (Request ID: " + e.RequestID + ")"
		}
		return msg
	default:
		return msgTransportError
	}
}

// classifyStatus maps a structured service response status onto a failure kind.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return RateLimited
	case status == statusOverloaded:
		return Overloaded
	case status == http.StatusBadRequest:
		return InvalidRequest
	case status == http.StatusUnauthorized:
		return Unauthorized
	case status >= 500 && status < 600:
		return ServiceError
	default:
		return UnknownServiceError
	}
}

// serviceErrorBody is the error envelope returned by the analysis service.
type serviceErrorBody struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

// classifyError turns an SDK call failure into a classified Error. Failures
// that carry no service response are transport errors.
func classifyError(err error) *Error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode == 0 {
		return &Error{Kind: TransportError, Detail: err.Error(), err: err}
	}
	e := &Error{
		Kind:   classifyStatus(apiErr.StatusCode),
		Status: apiErr.StatusCode,
		err:    err,
	}
	var body serviceErrorBody
	if raw := apiErr.RawJSON(); raw != "" && json.Unmarshal([]byte(raw), &body) == nil {
		e.Detail = body.Error.Message
		e.RequestID = body.RequestID
	}
	if apiErr.Response != nil {
		if id := apiErr.Response.Header.Get("request-id"); id != "" {
			e.RequestID = id
		}
	}
	if e.Detail == "" {
		e.Detail = http.StatusText(apiErr.StatusCode)
	}
	return e
}
