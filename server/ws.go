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
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/websocket"
	"github.com/sunyihoo/auditai/pipeline"
)

const (
	wsReadBuffer      = 1024
	wsWriteBuffer     = 16 * 1024
	wsPingInterval    = 30 * time.Second
	wsWriteTimeout    = 5 * time.Second
	wsPongTimeout     = 60 * time.Second
	wsReadLimit       = 4 * 1024
	wsSnapshotBacklog = 16
)

// handleWS streams pipeline snapshots to a websocket client, starting with
// the current one. Clients do not send anything except control frames.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("WebSocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	snaps := make(chan pipeline.Snapshot, wsSnapshotBacklog)
	sub := s.pipe.SubscribeSnapshots(snaps)
	defer sub.Unsubscribe()

	// Reader: consumes control frames and notices when the client goes away.
	gone := make(chan struct{})
	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(snap pipeline.Snapshot) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(snap)
	}
	current := s.pipe.Snapshot()
	if err := write(current); err != nil {
		return
	}
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	last := current.Seq
	for {
		select {
		case snap := <-snaps:
			// Snapshots published concurrently may arrive out of order.
			if snap.Seq <= last {
				continue
			}
			last = snap.Seq
			if err := write(snap); err != nil {
				log.Debug("WebSocket write failed", "err", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case err := <-sub.Err():
			if err != nil {
				log.Debug("Snapshot subscription failed", "err", err)
			}
			return
		case <-gone:
			return
		case <-s.quit:
			conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(time.Second))
			return
		}
	}
}
