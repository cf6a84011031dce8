// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

var (
	waitKind    string
	waitTimeout int
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Test connection by waiting for a valid UBX message",
	Long: `Wait for a message of the given kind on the connection until timeout.

This command connects to a serial port or WebSocket and blocks until a
complete, checksum-valid NAV-STATUS, NAV-POSLLH or NAV-DOP frame arrives.
Other message kinds, garbage and corrupted frames are skipped.

Exit codes:
  0 - Message received before timeout
  1 - Timeout reached without receiving the message
  2 - Connection error

Useful for checking that a receiver is wired up and configured.`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().StringVarP(&waitKind, "kind", "k", "status", "Message kind: status, position or dop")
	waitCmd.Flags().IntVar(&waitTimeout, "timeout", 10, "Timeout in seconds to wait for a message")
}

func runWait(cmd *cobra.Command, args []string) error {
	kind, err := ubx.ParseKind(waitKind)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("ubxstat - Wait\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", waitTimeout)
	fmt.Printf("Waiting for %s...\n\n", kind)

	skipped := 0
	decoder := NewDecoder(conn, ubx.WithReporter(func(err error) { skipped++ }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgChan := make(chan ubx.Message, 1)
	errChan := make(chan error, 1)

	go func() {
		msg, err := ubx.WaitKind(ctx, decoder, kind)
		if err != nil {
			errChan <- err
			return
		}
		msgChan <- msg
	}()

	select {
	case msg := <-msgChan:
		if skipped > 0 {
			fmt.Printf("(skipped %d bad or unregistered frames)\n", skipped)
		}
		fmt.Printf("SUCCESS: Received %s\n", msg.Kind())
		fmt.Print(ubx.FormatMessage(msg, time.Now()))
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(waitTimeout) * time.Second):
		cancel()
		fmt.Fprintf(os.Stderr, "TIMEOUT: No %s received within %d seconds\n", kind, waitTimeout)
		os.Exit(1)
	}

	return nil
}
