package cmd

import (
	"io"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/docqa/cli/tui"
	"github.com/pithecene-io/docqa/iox"
)

// ChatCommand returns the interactive chat command.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Start an interactive session: select, upload, index, then ask",
		ArgsUsage: "[file]",
		Action:    chatAction,
	}
}

func chatAction(c *cli.Context) error {
	// The alternate screen owns the terminal; logs go to --log-file or nowhere.
	e, err := setup(c, io.Discard)
	if err != nil {
		return err
	}
	defer iox.DiscardErr(e.Close)

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	if err := tui.Run(ctx, e.sess, c.Args().First()); err != nil {
		return cli.Exit(err.Error(), exitOperation)
	}
	return nil
}
