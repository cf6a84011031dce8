// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// ubxstat - u-blox UBX Protocol Analyzer
//
// A CLI tool for decoding, monitoring and serving u-blox UBX navigation
// messages from a GNSS receiver.

package main

import (
	"log"
	"os"

	"github.com/Thermoquad/ubxstat/cmd"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
