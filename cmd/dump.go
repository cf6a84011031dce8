// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var dumpDuration int

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Hex dump raw bytes from the connection",
	Long: `Print every chunk of bytes read from the connection in hex, without decoding.

Useful for checking baud rate and wiring (NMEA text and UBX frames are both
recognizable in the dump) and for testing the stability of a WebSocket bridge.

Exit codes:
  0 - Connection stayed up for the whole duration
  1 - Connection dropped
  2 - Connection error`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().IntVar(&dumpDuration, "duration", 30, "Dump duration in seconds")
}

func runDump(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("ubxstat - Raw Dump\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Duration: %d seconds\n\n", dumpDuration)

	readChan := make(chan []byte, 100)
	errChan := make(chan error, 1)

	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				readChan <- data
			}
		}
	}()

	startTime := time.Now()
	endTime := startTime.Add(time.Duration(dumpDuration) * time.Second)
	bytesReceived := 0
	chunksReceived := 0

	summary := func(result string) {
		fmt.Printf("\n--- Dump summary ---\n")
		fmt.Printf("Duration: %v\n", time.Since(startTime).Round(time.Millisecond))
		fmt.Printf("Chunks received: %d\n", chunksReceived)
		fmt.Printf("Bytes received: %d\n", bytesReceived)
		fmt.Printf("Result: %s\n", result)
	}

	for time.Now().Before(endTime) {
		select {
		case data := <-readChan:
			bytesReceived += len(data)
			chunksReceived++
			fmt.Printf("[%s] %d bytes: %x\n", time.Now().Format("15:04:05.000"), len(data), data)

		case err := <-errChan:
			fmt.Printf("\n[%s] Connection error: %v\n", time.Now().Format("15:04:05.000"), err)
			summary("FAILED (connection error)")
			os.Exit(1)

		case <-time.After(1 * time.Second):
			remaining := time.Until(endTime).Seconds()
			fmt.Printf("[%s] No data... (%.0fs remaining)\n", time.Now().Format("15:04:05.000"), remaining)
		}
	}

	summary("PASSED (connection stable)")
	return nil
}
