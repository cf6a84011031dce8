// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Optional YAML config file
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ubxstat",
	Short: "u-blox UBX Protocol Analyzer",
	Long: `ubxstat - A CLI tool for monitoring and analyzing u-blox UBX navigation messages.

Decodes NAV-STATUS, NAV-POSLLH and NAV-DOP from a GNSS receiver, reports
checksum failures and anomalies, configures the receiver, and serves the
latest fix over WebSocket.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

Settings may also come from a YAML file given with --config; flags set on the
command line take precedence.

For WebSocket authentication, the password is read from the UBXSTAT_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.0.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return nil
		}
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg.Apply(cmd)
		return nil
	},
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 9600, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
