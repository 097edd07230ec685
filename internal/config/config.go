// Package config defines the CLI surface parsed by kong.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/padkit/padkit/internal/cmd"
)

// LogConfig holds the shared logging flags.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"PADKIT_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"PADKIT_LOG_FILE"`
	RawFile string `help:"Write raw HID report traffic to this file" env:"PADKIT_LOG_RAW_FILE"`
}

// CLI is the root command tree.
type CLI struct {
	Config string    `help:"Path to a config file (JSON, YAML or TOML)" env:"PADKIT_CONFIG"`
	Log    LogConfig `embed:"" prefix:"log."`

	Monitor   cmd.Monitor       `cmd:"" help:"Decode events from a connected controller and print them"`
	Serve     cmd.Serve         `cmd:"" help:"Run the event hub and stream decoded events over TCP"`
	List      cmd.List          `cmd:"" help:"List drivers and connected hid devices"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`

	Version kong.VersionFlag `help:"Print version and exit"`
}
