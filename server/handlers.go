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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/sunyihoo/auditai/params"
	"github.com/sunyihoo/auditai/pipeline"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string             `json:"error"`
	State *pipeline.Snapshot `json:"state,omitempty"`
}

type compileRequest struct {
	Contract string `json:"contract"`
}

type deployRequest struct {
	Args  []interface{} `json:"args"`
	Value string        `json:"value"`
}

type connectRequest struct {
	Chain string `json:"chain"`
	RPC   string `json:"rpc,omitempty"`
}

type connectResponse struct {
	Account string            `json:"account"`
	Chain   params.Chain      `json:"chain"`
	State   pipeline.Snapshot `json:"state"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("Failed to write API response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, snap *pipeline.Snapshot) {
	writeJSON(w, status, errorResponse{Error: msg, State: snap})
}

// decodeBody decodes an optional JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipe.Snapshot())
}

func (s *Server) handleChains(w http.ResponseWriter, r *http.Request) {
	chains := make([]*params.Chain, 0, len(params.Chains))
	for _, name := range params.ChainNames() {
		chain, _ := params.ChainByName(name)
		chains = append(chains, chain)
	}
	writeJSON(w, http.StatusOK, chains)
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxSourceSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("source exceeds %d bytes", s.cfg.MaxSourceSize), nil)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	s.pipe.SetSource(string(body))
	writeJSON(w, http.StatusOK, s.pipe.Snapshot())
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	_, err := s.pipe.TriggerAudit()
	s.respondTrigger(w, err)
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	_, err := s.pipe.TriggerCompile(strings.TrimSpace(req.Contract))
	s.respondTrigger(w, err)
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	var req deployRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	value, err := params.ParseValue(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	_, err = s.pipe.TriggerDeploy(normalizeArgs(req.Args), value)
	s.respondTrigger(w, err)
}

// normalizeArgs turns JSON numbers into their textual form so that they are
// converted to the constructor's integer types without loss.
func normalizeArgs(args []interface{}) []interface{} {
	for i, arg := range args {
		if n, ok := arg.(json.Number); ok {
			args[i] = n.String()
		}
	}
	return args
}

// respondTrigger answers a trigger request: 202 when the operation started,
// 409 when one of its kind is still running and 412 when a deployment
// precondition failed.
func (s *Server) respondTrigger(w http.ResponseWriter, err error) {
	snap := s.pipe.Snapshot()
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, snap)
	case errors.Is(err, pipeline.ErrInFlight):
		writeError(w, http.StatusConflict, err.Error(), &snap)
	case errors.Is(err, pipeline.ErrPrecondition):
		var perr *pipeline.PreconditionError
		msg := err.Error()
		if errors.As(err, &perr) {
			msg = perr.UserMessage()
		}
		writeError(w, http.StatusPreconditionFailed, msg, &snap)
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), &snap)
	}
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if s.wallet == nil {
		writeError(w, http.StatusNotImplemented, "no wallet configured", nil)
		return
	}
	var req connectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	chain, err := params.ChainByName(req.Chain)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.RPC != "" {
		chain.RPC = req.RPC
	}
	sess, err := s.wallet.Connect(r.Context(), chain)
	if err != nil {
		log.Warn("Wallet connection failed", "chain", chain.Name, "err", err)
		writeError(w, http.StatusBadGateway, err.Error(), nil)
		return
	}
	s.pipe.NotifyWallet()
	writeJSON(w, http.StatusOK, connectResponse{
		Account: sess.Account.Hex(),
		Chain:   sess.Chain,
		State:   s.pipe.Snapshot(),
	})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if s.wallet == nil {
		writeError(w, http.StatusNotImplemented, "no wallet configured", nil)
		return
	}
	s.wallet.Disconnect()
	s.pipe.NotifyWallet()
	writeJSON(w, http.StatusOK, s.pipe.Snapshot())
}
