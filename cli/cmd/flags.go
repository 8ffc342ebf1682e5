// Package cmd provides CLI commands for the docqa binary.
package cmd

import "github.com/urfave/cli/v2"

// Global flags, accepted before the command name. Each overrides the
// matching config file value.
var (
	// ConfigFlag points at a docqa.yaml file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config file (default: ./docqa.yaml when present)",
		EnvVars: []string{"DOCQA_CONFIG"},
	}

	// BaseURLFlag selects the backend.
	BaseURLFlag = &cli.StringFlag{
		Name:    "base-url",
		Usage:   "Backend base URL (default: http://localhost:8000)",
		EnvVars: []string{"DOCQA_BASE_URL"},
	}

	// TimeoutFlag bounds each backend request.
	TimeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "Per-request timeout (default: 5m)",
	}

	// StubFlag swaps the HTTP backend for the in-memory one.
	StubFlag = &cli.BoolFlag{
		Name:  "stub",
		Usage: "Use the in-memory backend instead of the HTTP API",
	}

	LogLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warn, error (default: warn)",
	}

	LogFileFlag = &cli.StringFlag{
		Name:  "log-file",
		Usage: "Write logs to a rotated file instead of stderr",
	}
)

// Output flags for commands that render a result.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}
)

// GlobalFlags returns the app-level flags.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		BaseURLFlag,
		TimeoutFlag,
		StubFlag,
		LogLevelFlag,
		LogFileFlag,
	}
}

// OutputFlags returns the shared flags for rendering commands.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
	}
}
