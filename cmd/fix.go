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
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ubxstat/internal/fix"
	"github.com/Thermoquad/ubxstat/internal/uplink"
	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

var (
	fixCount    int
	fixInterval int
	fixUplink   bool
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Read complete position fixes from the receiver",
	Long: `Collect fixes the way a telemetry node does: wait for NAV-STATUS, and if
the receiver reports a valid fix, read the following NAV-POSLLH and NAV-DOP.

Each fix is printed as a single line. With --uplink, the 31-byte radio
payload built from the fix is printed too.

Examples:
  # Print fixes until Ctrl+C
  ubxstat fix --port /dev/ttyUSB0

  # One fix with its uplink payload
  ubxstat fix --port /dev/ttyUSB0 --count 1 --uplink

  # One fix every 30 seconds
  ubxstat fix --port /dev/ttyUSB0 --interval 30`,
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)
	fixCmd.Flags().IntVarP(&fixCount, "count", "n", 0, "Stop after this many fixes (0 = unlimited)")
	fixCmd.Flags().IntVar(&fixInterval, "interval", 0, "Seconds to wait between fixes")
	fixCmd.Flags().BoolVar(&fixUplink, "uplink", false, "Print the packed uplink payload for each fix")
}

func runFix(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	fmt.Printf("ubxstat - Fix\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := NewDecoder(conn)
	got := 0
	lastType := ubx.FixType(0xFF)

	for fixCount == 0 || got < fixCount {
		f, status, err := fix.Collect(ctx, decoder)
		if errors.Is(err, fix.ErrNoFix) {
			// Only report changes to keep a 1 Hz receiver from flooding
			if status.GPSFix != lastType {
				fmt.Printf("[%s] No fix (%s, fixOk=%t)\n", time.Now().Format("15:04:05.000"), status.GPSFix, status.FixOK())
				lastType = status.GPSFix
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil || isClosedErr(err) {
				log.Printf("Connection closed")
				return nil
			}
			return err
		}
		lastType = f.Type
		got++

		fmt.Printf("[%s] %s\n", f.Captured.Format("15:04:05.000"), f)
		if fixUplink {
			fmt.Println(ubx.FormatHex(uplink.Pack(f)))
		}

		if fixInterval > 0 && (fixCount == 0 || got < fixCount) {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Duration(fixInterval) * time.Second):
			}
		}
	}

	return nil
}
