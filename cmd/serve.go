// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ubxstat/internal/feed"
	"github.com/Thermoquad/ubxstat/internal/fix"
)

var (
	serveListen string
	serveFormat string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest fix over HTTP and WebSocket",
	Long: `Decode fixes from the receiver and publish them to network clients.

Endpoints:
  GET /api/fix  Latest fix as JSON, 404 until the first fix
  GET /ws       WebSocket stream, one message per fix

WebSocket messages are JSON text frames by default. With --format cbor they
are binary frames holding the compact CBOR fix encoding.

The receiver connection is reopened with exponential backoff (1s up to 60s)
whenever it drops. The HTTP server keeps running meanwhile and continues to
serve the last known fix.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveFormat, "format", "json", "WebSocket message format: json or cbor")
}

func runServe(cmd *cobra.Command, args []string) error {
	format, err := feed.ParseFormat(serveFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := feed.New(&fix.Store{}, format)

	go func() {
		for {
			conn, connInfo := connectWithRetry(ctx, "receiver")
			if conn == nil {
				return
			}
			log.Printf("[serve] reading from %s", connInfo)

			err := pumpFixes(ctx, conn, srv)
			conn.Close()
			if ctx.Err() != nil {
				return
			}
			log.Printf("[serve] receiver lost: %v", err)
		}
	}()

	log.Printf("[serve] WebSocket format: %s", format)
	if err := srv.Run(ctx, serveListen); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	log.Printf("[serve] shut down")
	return nil
}

// connectWithRetry opens the configured connection, backing off between
// failed attempts. Returns nil once ctx is cancelled.
func connectWithRetry(ctx context.Context, name string) (Connection, string) {
	delay := 1 * time.Second
	maxDelay := 60 * time.Second
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ""
		default:
		}

		conn, connInfo, err := OpenConnection()
		if err == nil {
			log.Printf("[%s] connected successfully (attempt %d)", name, attempt+1)
			return conn, connInfo
		}

		attempt++
		log.Printf("[%s] connect attempt %d failed: %v (retry in %v)", name, attempt, err, delay)

		select {
		case <-ctx.Done():
			return nil, ""
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

// pumpFixes publishes every fix decoded from conn until the connection fails
// or ctx is cancelled.
func pumpFixes(ctx context.Context, conn Connection, srv *feed.Server) error {
	// Unblock a pending read on shutdown
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	decoder := NewDecoder(conn)
	waiting := false

	for {
		f, status, err := fix.Collect(ctx, decoder)
		if errors.Is(err, fix.ErrNoFix) {
			if !waiting {
				log.Printf("[serve] waiting for fix (%s)", status.GPSFix)
				waiting = true
			}
			continue
		}
		if err != nil {
			return err
		}

		if waiting {
			log.Printf("[serve] fix acquired: %s", f)
			waiting = false
		}
		srv.Publish(f)
	}
}
