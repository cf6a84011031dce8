// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config mirrors the command line flags for use from a YAML file.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Receiver  ReceiverConfig  `yaml:"receiver"`
	Serve     ServeConfig     `yaml:"serve"`
}

type SerialConfig struct {
	Port string `yaml:"port"` // e.g. /dev/ttyACM0
	Baud int    `yaml:"baud"`
}

type WebSocketConfig struct {
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
}

type ReceiverConfig struct {
	RateMs int `yaml:"rate_ms"` // navigation period sent by configure, 0 keeps the receiver's
}

type ServeConfig struct {
	Listen string `yaml:"listen"` // e.g. :8080
	Format string `yaml:"format"` // "json" or "cbor"
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	log.Printf("[config] loaded from %s", path)
	return cfg, nil
}

// Apply copies file values into flags the user did not set explicitly.
// Empty file values leave the flag defaults alone.
func (c *Config) Apply(cmd *cobra.Command) {
	flags := cmd.Flags()
	unset := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && !f.Changed
	}

	if c.Serial.Port != "" && unset("port") {
		portName = c.Serial.Port
	}
	if c.Serial.Baud > 0 && unset("baud") {
		baudRate = c.Serial.Baud
	}
	if c.WebSocket.URL != "" && unset("url") {
		wsURL = c.WebSocket.URL
	}
	if c.WebSocket.Username != "" && unset("username") {
		wsUsername = c.WebSocket.Username
	}
	if c.WebSocket.NoSSLVerify && unset("no-ssl-verify") {
		wsNoSSLVerify = true
	}
	if c.Receiver.RateMs > 0 && unset("rate") {
		configureRateMs = c.Receiver.RateMs
	}
	if c.Serve.Listen != "" && unset("listen") {
		serveListen = c.Serve.Listen
	}
	if c.Serve.Format != "" && unset("format") {
		serveFormat = c.Serve.Format
	}
}
