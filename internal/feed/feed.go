// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package feed serves the latest fix over HTTP and broadcasts new fixes to
// WebSocket clients.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Thermoquad/ubxstat/internal/fix"
	"github.com/Thermoquad/ubxstat/internal/uplink"
)

// Format selects the WebSocket message encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCBOR:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown feed format %q (use json or cbor)", s)
}

// Frame is the JSON structure sent to WebSocket clients.
type Frame struct {
	Fix   *fix.Fix `json:"fix,omitempty"`
	Stamp int64    `json:"stamp"` // Unix ms
}

// Server keeps the latest fix and pushes every new one to connected clients.
type Server struct {
	store  *fix.Store
	format Format

	clients   map[*wsClient]struct{}
	clientsMu sync.RWMutex

	upgrader websocket.Upgrader
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a feed server backed by store.
func New(store *fix.Store, format Format) *Server {
	return &Server{
		store:   store,
		format:  format,
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP routes: /ws and /api/fix.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/fix", s.handleFix)
	return mux
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	log.Printf("[serve] listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Publish stores f and broadcasts it.
func (s *Server) Publish(f *fix.Fix) {
	s.store.Set(f)

	data, err := s.encode(f)
	if err != nil {
		log.Printf("[serve] encode failed: %v", err)
		return
	}
	s.broadcast(data)
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) encode(f *fix.Fix) ([]byte, error) {
	if s.format == FormatCBOR {
		return uplink.MarshalCBOR(f)
	}
	return json.Marshal(Frame{Fix: f, Stamp: time.Now().UnixMilli()})
}

func (s *Server) messageType() int {
	if s.format == FormatCBOR {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 64),
	}

	// Send the current fix first so new clients do not wait a full epoch.
	if latest, ok := s.store.Latest(); ok {
		if data, err := s.encode(&latest); err == nil {
			client.send <- data
		}
	}

	s.clientsMu.Lock()
	s.clients[client] = struct{}{}
	count := len(s.clients)
	s.clientsMu.Unlock()

	log.Printf("[ws] client connected (%d total)", count)

	msgType := s.messageType()

	// Writer goroutine
	go func() {
		defer conn.Close()
		for msg := range client.send {
			if err := conn.WriteMessage(msgType, msg); err != nil {
				break
			}
		}
	}()

	// Reader goroutine (keep-alive and disconnect detection)
	go func() {
		defer func() {
			s.clientsMu.Lock()
			delete(s.clients, client)
			count := len(s.clients)
			s.clientsMu.Unlock()
			close(client.send)
			log.Printf("[ws] client disconnected (%d total)", count)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

type fixResponse struct {
	Fix   fix.Fix `json:"fix"`
	AgeMs int64   `json:"ageMs"`
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	latest, ok := s.store.Latest()
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no fix yet"}`))
		return
	}

	age, _ := s.store.Age(time.Now())
	data, err := json.Marshal(fixResponse{Fix: latest, AgeMs: age.Milliseconds()})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) broadcast(data []byte) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			// Client too slow, skip
		}
	}
}
