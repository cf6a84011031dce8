// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

var (
	configureRateMs  int
	configureTimeout int
	configureDryRun  bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure the receiver to output UBX navigation messages",
	Long: `Send the initialization sequence to a u-blox receiver on UART1.

The sequence:
  - Disables the default NMEA sentences (GGA, GLL, GSA, GSV, RMC, VTG)
  - Enables NAV-POSLLH, NAV-STATUS and NAV-DOP on every navigation solution
  - Sets the measurement period when --rate is given

After sending, the command waits for a NAV-STATUS message to confirm the
receiver is producing UBX output. ACK-ACK and ACK-NAK replies are counted.

Settings are not saved to the receiver's flash; repeat after a power cycle.

Examples:
  # Enable UBX output at the receiver's current rate
  ubxstat configure --port /dev/ttyUSB0

  # 5 Hz navigation
  ubxstat configure --port /dev/ttyUSB0 --rate 200

  # Show the bytes without sending
  ubxstat configure --rate 1000 --dry-run

Exit codes:
  0 - Receiver confirmed UBX output
  1 - No NAV-STATUS within the timeout
  2 - Connection error`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.Flags().IntVar(&configureRateMs, "rate", 0, "Measurement period in milliseconds (0 keeps the receiver's setting)")
	configureCmd.Flags().IntVar(&configureTimeout, "timeout", 5, "Timeout in seconds to wait for confirmation")
	configureCmd.Flags().BoolVar(&configureDryRun, "dry-run", false, "Print the command frames without connecting")
}

// splitFrames cuts a concatenation of encoded UBX frames at each frame's
// length field.
func splitFrames(seq []byte) [][]byte {
	var frames [][]byte
	for len(seq) >= 8 {
		n := 8 + int(binary.LittleEndian.Uint16(seq[4:6]))
		if n > len(seq) {
			break
		}
		frames = append(frames, seq[:n])
		seq = seq[n:]
	}
	return frames
}

func printInitSequence(seq []byte) {
	for i, frame := range splitFrames(seq) {
		name := ubx.FormatTag(frame[2], frame[3])
		if frame[2] == ubx.ClassCFG && frame[3] == ubx.IDCfgMsg {
			name = fmt.Sprintf("%s %s", name, ubx.FormatTag(frame[6], frame[7]))
		}
		fmt.Printf("%2d. %-20s %s\n", i+1, name, ubx.FormatHex(frame))
	}
}

func runConfigure(cmd *cobra.Command, args []string) error {
	if configureRateMs < 0 || configureRateMs > 0xFFFF {
		return fmt.Errorf("rate %d ms out of range", configureRateMs)
	}
	seq := ubx.InitSequence(uint16(configureRateMs))

	if configureDryRun {
		fmt.Printf("ubxstat - Configure (dry run)\n\n")
		printInitSequence(seq)
		return nil
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("ubxstat - Configure\n")
	fmt.Printf("Connection: %s\n", connInfo)
	if configureRateMs > 0 {
		fmt.Printf("Measurement period: %d ms\n", configureRateMs)
	}
	fmt.Printf("Timeout: %d seconds\n\n", configureTimeout)

	printInitSequence(seq)

	fmt.Printf("\nSending %d bytes...\n", len(seq))
	if _, err := conn.Write(seq); err != nil {
		fmt.Printf("SEND FAILED: %v\n", err)
		os.Exit(2)
	}

	// ACK frames are not registered, so they surface as unknown-type reports
	acks, naks := 0, 0
	decoder := NewDecoder(conn, ubx.WithReporter(func(err error) {
		var fe *ubx.FrameError
		if !errors.As(err, &fe) || !errors.Is(err, ubx.ErrUnknownType) || fe.Tag[0] != ubx.ClassACK {
			return
		}
		if fe.Tag[1] == 0x01 {
			acks++
		} else {
			naks++
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configureTimeout)*time.Second)
	defer cancel()

	statusChan := make(chan *ubx.NavStatus, 1)
	errChan := make(chan error, 1)
	go func() {
		st, err := ubx.WaitStatusContext(ctx, decoder)
		if err != nil {
			errChan <- err
			return
		}
		statusChan <- st
	}()

	select {
	case st := <-statusChan:
		fmt.Printf("\nACK-ACK: %d, ACK-NAK: %d\n", acks, naks)
		fmt.Printf("SUCCESS: receiver reports %s (fixOk=%t)\n", st.GPSFix, st.FixOK())
		return nil

	case err := <-errChan:
		if ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "\nTIMEOUT: No NAV-STATUS received within %d seconds\n", configureTimeout)
		os.Exit(1)

	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "\nTIMEOUT: No NAV-STATUS received within %d seconds\n", configureTimeout)
		os.Exit(1)
	}

	return nil
}
