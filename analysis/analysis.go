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

// Package analysis implements the remote security review of contract sources.
//
// The source text is sent verbatim to a hosted language model which answers
// with a report markup. Every failure is classified into one of a fixed set of
// kinds, each carrying a stable user-facing message.
package analysis

import (
	"context"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/time/rate"
)

// Report is the outcome of a successful analysis.
type Report struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Markup       string `json:"markup"` // sanitized report markup
	InputTokens  int64  `json:"inputTokens"`
	OutputTokens int64  `json:"outputTokens"`
}

// Client sends contract sources to the analysis service.
type Client struct {
	cfg     Config
	client  anthropic.Client
	limiter *rate.Limiter
}

// New creates an analysis client. Additional request options are appended
// after the ones derived from the config.
func New(cfg Config, opts ...option.RequestOption) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultConfig.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultConfig.MaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}
	// No automatic retries.
	base := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("ANTHROPIC_API_KEY")
	}
	if key != "" {
		base = append(base, option.WithAPIKey(key))
	}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	c := &Client{
		cfg:    cfg,
		client: anthropic.NewClient(append(base, opts...)...),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c
}

// Analyze requests a security report for the given source. The returned error,
// if any, is always an *Error.
func (c *Client) Analyze(ctx context.Context, source string) (*Report, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		log.Warn("Contract analysis throttled locally", "limit", c.cfg.RequestsPerMinute)
		return nil, &Error{Kind: RateLimited, Detail: "local request budget exhausted"}
	}
	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.cfg.Model),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: anthropic.Float(c.cfg.Temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(source)),
		},
	})
	if err != nil {
		aerr := classifyError(err)
		log.Warn("Contract analysis failed", "kind", aerr.Kind, "status", aerr.Status, "reqid", aerr.RequestID, "err", aerr.Detail, "elapsed", time.Since(start))
		return nil, aerr
	}
	var text string
	if len(msg.Content) > 0 && msg.Content[0].Type == "text" {
		text = msg.Content[0].Text
	}
	report := &Report{
		ID:           msg.ID,
		Model:        string(msg.Model),
		Markup:       Sanitize(text),
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	log.Debug("Contract analysis completed", "id", report.ID, "model", report.Model, "in", report.InputTokens, "out", report.OutputTokens, "elapsed", time.Since(start))
	return report, nil
}
