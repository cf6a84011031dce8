// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Detect and analyze corrupted frames and anomalous values",
	Long: `Track frame errors and anomalous navigation values with statistics.

This command validates each decoded message and detects:
  - Checksum failures (first or second byte)
  - Frames of unregistered message types
  - Length fields that disagree with the registered size
  - Out-of-range positions, invalid fix types, implausible DOP and accuracy
  - Statistics and trends (frame rate, error rate, success rate)

By default, only errors are displayed. Use --show-all to display valid messages too.

Messages are validated in real-time, with errors highlighted immediately and
periodic statistics summaries displayed at configurable intervals.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all messages (not just errors)")
	monitorCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	monitorCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

// monitorEvent is one result of the decode loop.
type monitorEvent struct {
	msg              ubx.Message
	frameErr         error
	validationErrors []ubx.ValidationError
	readErr          error
}

// decodeLoop runs the decoder until the connection closes and hands every
// message and frame error to emit. Frame errors seen before the first valid
// message are counted instead: they are the tail of a frame cut off when the
// link came up.
func decodeLoop(conn Connection, emit func(monitorEvent), onSync func(skipped int)) {
	synchronized := false
	skipped := 0

	decoder := NewDecoder(conn, ubx.WithReporter(func(err error) {
		if !synchronized {
			skipped++
			return
		}
		emit(monitorEvent{frameErr: err})
	}))

	for {
		msg, err := decoder.Next()
		if err != nil {
			if isClosedErr(err) {
				emit(monitorEvent{readErr: err})
				return
			}
			log.Printf("Read error: %v", err)
			continue
		}

		if !synchronized {
			synchronized = true
			onSync(skipped)
		}
		emit(monitorEvent{msg: msg, validationErrors: ubx.ValidateMessage(msg)})
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if useTUI {
		return runTUIMode(conn, connInfo)
	}
	return runTextMode(conn, connInfo)
}

// printFrameError prints a frame error in highlighted format
func printFrameError(err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mFRAME ERROR:\033[0m %v\n", timestamp, err)
	fmt.Printf("  >>> FRAME DROPPED <<<\n\n")
}

// printValidationErrors prints validation errors for a message
func printValidationErrors(msg ubx.Message, errors []ubx.ValidationError) {
	timestamp := time.Now().Format("15:04:05.000")

	fmt.Printf("[%s] \033[1;33mVALIDATION ERROR:\033[0m %s\n", timestamp, msg.Kind())
	fmt.Printf("  Checksum: \033[1;32mOK\033[0m\n")

	for i, err := range errors {
		switch err.Type {
		case ubx.AnomalyLengthMismatch:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
			if received, ok := err.Details["received"].(int); ok {
				if expected, ok := err.Details["expected"].(int); ok {
					fmt.Printf("    Length: received=%d, expected=%d\n", received, expected)
				}
			}

		case ubx.AnomalyInvalidFix:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)

		case ubx.AnomalyInvalidPosition, ubx.AnomalyHighDOP, ubx.AnomalyLowAccuracy:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)

		default:
			fmt.Printf("  Issue %d: %s\n", i+1, err.Message)
		}
	}

	fmt.Printf("  >>> MESSAGE FLAGGED <<<\n\n")
}

// runTUIMode runs the monitor in TUI mode
func runTUIMode(conn Connection, connInfo string) error {
	m := initialModel(connInfo, statsInterval, showAll)
	p := tea.NewProgram(m)

	go decodeLoop(conn,
		func(ev monitorEvent) { p.Send(ev) },
		func(skipped int) { p.Send(syncMsg{skippedFrames: skipped}) },
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// runTextMode runs the monitor in text mode
func runTextMode(conn Connection, connInfo string) error {
	fmt.Printf("ubxstat - Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All messages\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := ubx.NewStatistics()

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	events := make(chan monitorEvent, 64)
	go decodeLoop(conn,
		func(ev monitorEvent) { events <- ev },
		func(skipped int) {
			if skipped > 0 {
				fmt.Printf("[SYNC] Synchronized after skipping %d partial frames\n\n", skipped)
			} else {
				fmt.Printf("[SYNC] Synchronized\n\n")
			}
		},
	)

	for {
		select {
		case ev := <-events:
			switch {
			case ev.readErr != nil:
				log.Printf("Connection closed")
				fmt.Print(stats.String())
				return nil

			case ev.frameErr != nil:
				stats.Update(nil, ev.frameErr, nil)
				printFrameError(ev.frameErr)

			case ev.msg != nil:
				stats.Update(ev.msg, nil, ev.validationErrors)
				if len(ev.validationErrors) > 0 {
					printValidationErrors(ev.msg, ev.validationErrors)
				} else if showAll {
					fmt.Print(ubx.FormatMessage(ev.msg, time.Now()))
				}
			}

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}
