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

// Package server exposes the pipeline over HTTP and streams its snapshots to
// websocket clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/sunyihoo/auditai/params"
	"github.com/sunyihoo/auditai/pipeline"
	"github.com/sunyihoo/auditai/wallet"
)

// Pipeline is the orchestrator served by the API.
type Pipeline interface {
	Snapshot() pipeline.Snapshot
	SetSource(source string)
	TriggerAudit() (*pipeline.Task, error)
	TriggerCompile(name string) (*pipeline.Task, error)
	TriggerDeploy(args []interface{}, value *big.Int) (*pipeline.Task, error)
	SubscribeSnapshots(ch chan<- pipeline.Snapshot) event.Subscription
	NotifyWallet()
}

// Wallet connects and disconnects the signing wallet.
type Wallet interface {
	Connect(ctx context.Context, chain *params.Chain) (*wallet.Session, error)
	Disconnect()
}

// Server is the HTTP front end of a pipeline.
type Server struct {
	cfg    Config
	pipe   Pipeline
	wallet Wallet

	upgrader websocket.Upgrader
	handler  http.Handler

	quit     chan struct{}
	quitOnce sync.Once
}

// New creates a server for pipe. A nil wallet disables the wallet endpoints.
func New(cfg Config, pipe Pipeline, w Wallet) *Server {
	if cfg.MaxSourceSize <= 0 {
		cfg.MaxSourceSize = DefaultConfig.MaxSourceSize
	}
	s := &Server{
		cfg:    cfg,
		pipe:   pipe,
		wallet: w,
		quit:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsReadBuffer,
			WriteBufferSize: wsWriteBuffer,
			CheckOrigin:     wsHandshakeValidator(cfg.WSOrigins),
		},
	}
	s.handler = newVHostHandler(cfg.VirtualHosts, newCorsHandler(s.routes(), cfg.CorsAllowedOrigins))
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/chains", s.handleChains)
		r.Put("/source", s.handleSource)
		r.Post("/audit", s.handleAudit)
		r.Post("/compile", s.handleCompile)
		r.Post("/deploy", s.handleDeploy)
		r.Post("/wallet/connect", s.handleConnect)
		r.Post("/wallet/disconnect", s.handleDisconnect)
		r.Get("/ws", s.handleWS)
	})
	return r
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Endpoint returns the listen address.
func (s *Server) Endpoint() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Serve listens on the configured endpoint and serves the API until ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Endpoint())
	if err != nil {
		return err
	}
	timeouts := s.cfg.Timeouts
	checkTimeouts(&timeouts)
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       timeouts.ReadTimeout,
		ReadHeaderTimeout: timeouts.ReadHeaderTimeout,
		WriteTimeout:      timeouts.WriteTimeout,
		IdleTimeout:       timeouts.IdleTimeout,
	}
	srv.RegisterOnShutdown(s.Close)
	log.Info("HTTP server started", "endpoint", fmt.Sprintf("http://%s/api", listener.Addr()), "cors", s.cfg.CorsAllowedOrigins, "vhosts", s.cfg.VirtualHosts)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(listener) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if serveErr := <-errc; !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
		err = serveErr
	}
	log.Info("HTTP server stopped", "endpoint", listener.Addr())
	return err
}

// Close terminates the websocket streams.
func (s *Server) Close() {
	s.quitOnce.Do(func() { close(s.quit) })
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug("Served API request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"reqid", middleware.GetReqID(r.Context()), "elapsed", time.Since(start))
	})
}
