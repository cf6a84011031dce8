// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ubxstat/internal/sim"
)

var (
	simHz     float64
	simNoise  float64
	simOutput string
	simSeed   int64
	simNoFix  int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate a synthetic UBX stream",
	Long: `Emit NAV-STATUS, NAV-POSLLH and NAV-DOP frames for a receiver driving in a
circle. The first epochs report no fix, then a 3D fix is held.

With --noise, each epoch may also carry leading garbage bytes, a corrupted
checksum or an unregistered NAV-SOL frame, which exercises the decoder's
resynchronization.

Output goes to stdout by default, or to a serial port with --output. Pair two
ports with a null-modem cable (or socat) to feed another ubxstat command.

Examples:
  # Pipe into a hex viewer
  ubxstat simulate --hz 5 | xxd

  # Drive a virtual port at 10% noise
  ubxstat simulate --output /dev/pts/3 --noise 0.1`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Float64Var(&simHz, "hz", 1, "Navigation epochs per second")
	simulateCmd.Flags().Float64Var(&simNoise, "noise", 0, "Probability of each impairment per epoch (0..1)")
	simulateCmd.Flags().StringVarP(&simOutput, "output", "o", "", "Serial port to write to (default stdout)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Random seed (0 = time based)")
	simulateCmd.Flags().IntVar(&simNoFix, "no-fix", 3, "Epochs reported without a fix at startup")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simHz <= 0 {
		return fmt.Errorf("--hz must be positive")
	}
	if simNoise < 0 || simNoise > 1 {
		return fmt.Errorf("--noise must be between 0 and 1")
	}

	opts := sim.DefaultOptions()
	opts.Period = time.Duration(float64(time.Second) / simHz)
	opts.Noise = simNoise
	opts.NoFixEpochs = simNoFix
	if simSeed != 0 {
		opts.Seed = simSeed
	}

	var out io.Writer = os.Stdout
	if simOutput != "" {
		conn, err := OpenSerialConnection(simOutput, baudRate)
		if err != nil {
			return err
		}
		defer conn.Close()
		out = conn
		log.Printf("[sim] writing to %s @ %d baud, %.1f Hz, noise %.2f", simOutput, baudRate, simHz, simNoise)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := sim.New(opts).Run(ctx, out)
	log.Printf("[sim] %d epochs written", n)
	return err
}
