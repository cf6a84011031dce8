// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

var (
	rawLogHex     bool
	rawLogUnknown bool
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display decoded messages in human-readable format",
	Long: `Continuously decode and display UBX navigation messages as they arrive.

Each NAV-STATUS, NAV-POSLLH and NAV-DOP message is shown with a timestamp and
its decoded fields. Checksum failures are printed as errors; frames of other
UBX types are skipped silently unless --unknown is given.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().BoolVar(&rawLogHex, "hex", false, "Also print the raw record bytes")
	rawLogCmd.Flags().BoolVar(&rawLogUnknown, "unknown", false, "Report frames of unregistered types")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("ubxstat - Raw Message Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := NewDecoder(conn, ubx.WithReporter(func(err error) {
		if errors.Is(err, ubx.ErrUnknownType) && !rawLogUnknown {
			return
		}
		fmt.Printf("[ERROR] %v\n", err)
	}))

	for {
		msg, err := decoder.Next()
		if err != nil {
			if isClosedErr(err) {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}

		fmt.Print(ubx.FormatMessage(msg, time.Now()))
		if rawLogHex {
			fmt.Println(ubx.FormatHex(decoder.Record()))
		}
	}
}
