package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/docqa/types"
)

// NewApp builds the docqa CLI. The caller installs the exit handler.
func NewApp(commit string) *cli.App {
	return &cli.App{
		Name:    "docqa",
		Usage:   "Upload a document, index it, and ask questions about it",
		Version: fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		Flags:   GlobalFlags(),
		Commands: []*cli.Command{
			ChatCommand(),
			UploadCommand(),
			AskCommand(),
			ClearCommand(),
			HealthCommand(),
			VersionCommand(commit),
		},
	}
}
