// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/agentberlin/hounds/internal/app"
)

// clientBuffer is how many events a slow client may fall behind before
// events are dropped for it
const clientBuffer = 64

const writeTimeout = 5 * time.Second

// Message is the JSON frame sent to websocket clients
type Message struct {
	Type app.EventType `json:"type"`
	Data any           `json:"data"`
}

// Hub broadcasts app events to websocket clients. It implements
// app.EventEmitter.
type Hub struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log:     logger,
		clients: make(map[chan []byte]struct{}),
	}
}

// Emit implements app.EventEmitter
func (h *Hub) Emit(eventType app.EventType, data interface{}) {
	msg, err := json.Marshal(Message{Type: eventType, Data: data})
	if err != nil {
		h.log.Warn("failed to encode event", "type", eventType, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for send := range h.clients {
		select {
		case send <- msg:
		default:
			h.log.Debug("dropping event for slow client", "type", eventType)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) subscribe() chan []byte {
	send := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[send] = struct{}{}
	h.mu.Unlock()
	return send
}

func (h *Hub) unsubscribe(send chan []byte) {
	h.mu.Lock()
	delete(h.clients, send)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request to a websocket and streams events to it
// until the client goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	send := h.subscribe()
	defer h.unsubscribe(send)

	// Clients only listen; CloseRead handles their control frames
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case msg := <-send:
			if err := write(ctx, conn, msg); err != nil {
				h.log.Debug("websocket write failed", "error", err)
				return
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}
