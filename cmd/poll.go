// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

var (
	pollKind    string
	pollTimeout int
	pollCount   int
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll the receiver for a NAV message and measure the response time",
	Long: `Send UBX poll requests (a frame with the message's class and id and an
empty payload) and wait for the receiver to answer with that message.

This is useful for verifying:
  - The link works in both directions
  - The receiver accepts UBX input on this port
  - Round-trip latency through a WebSocket bridge

Periodic output of the same message also satisfies a poll, so the measured
time is an upper bound when the message is already enabled.

Exit codes:
  0 - All polls answered
  1 - One or more polls failed/timed out
  2 - Connection error`,
	RunE: runPoll,
}

func init() {
	rootCmd.AddCommand(pollCmd)
	pollCmd.Flags().StringVarP(&pollKind, "kind", "k", "position", "Message kind: status, position or dop")
	pollCmd.Flags().IntVar(&pollTimeout, "timeout", 3, "Timeout in seconds for each poll")
	pollCmd.Flags().IntVar(&pollCount, "count", 3, "Number of polls to send")
}

func runPoll(cmd *cobra.Command, args []string) error {
	kind, err := ubx.ParseKind(pollKind)
	if err != nil {
		return err
	}
	request, err := ubx.PollKind(kind)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("ubxstat - Poll Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Message: %s\n", kind)
	fmt.Printf("Timeout: %d seconds per poll\n", pollTimeout)
	fmt.Printf("Count: %d polls\n\n", pollCount)

	// One reader for the whole run; each poll takes the next matching message.
	msgChan := make(chan ubx.Message, 16)
	errChan := make(chan error, 1)
	go func() {
		decoder := NewDecoder(conn)
		for {
			msg, err := decoder.Next()
			if err != nil {
				errChan <- err
				return
			}
			if msg.Kind() == kind {
				select {
				case msgChan <- msg:
				default:
				}
			}
		}
	}()

	successCount := 0
	failCount := 0

polls:
	for i := 1; i <= pollCount; i++ {
		fmt.Printf("Poll %d/%d: ", i, pollCount)

		// Drop answers to earlier polls that arrived late
	drain:
		for {
			select {
			case <-msgChan:
			default:
				break drain
			}
		}

		startTime := time.Now()
		if _, err := conn.Write(request); err != nil {
			fmt.Printf("SEND FAILED: %v\n", err)
			failCount++
			continue
		}

		select {
		case msg := <-msgChan:
			rtt := time.Since(startTime)
			fmt.Printf("%s received, rtt=%v\n", msg.Kind(), rtt.Round(time.Millisecond))
			successCount++

		case err := <-errChan:
			fmt.Printf("READ FAILED: %v\n", err)
			failCount += pollCount - i + 1
			break polls

		case <-time.After(time.Duration(pollTimeout) * time.Second):
			fmt.Printf("TIMEOUT (no response in %ds)\n", pollTimeout)
			failCount++
		}

		// Small delay between polls
		if i < pollCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	fmt.Printf("\n--- Poll statistics ---\n")
	fmt.Printf("%d polls sent, %d responses received, %.0f%% loss\n",
		pollCount, successCount, float64(failCount)/float64(pollCount)*100)

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
