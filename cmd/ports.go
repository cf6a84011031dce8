// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

// USB vendor id of u-blox AG.
const ubloxVID = "1546"

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long: `List the serial ports on this machine. USB ports are shown with their
vendor and product ids; receivers with the u-blox vendor id are marked.`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("failed to list ports: %w", err)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}

	for _, p := range ports {
		if !p.IsUSB {
			fmt.Printf("%s\n", p.Name)
			continue
		}
		mark := ""
		if strings.EqualFold(p.VID, ubloxVID) {
			mark = "  [u-blox]"
		}
		fmt.Printf("%s  USB %s:%s %s%s\n", p.Name, p.VID, p.PID, p.Product, mark)
	}
	return nil
}
