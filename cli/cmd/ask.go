package cmd

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/docqa/cli/render"
	"github.com/pithecene-io/docqa/iox"
)

// AskCommand returns the ask command.
// Each argument is one question, asked in order against whatever document
// the backend currently holds. The transcript is rendered even when a
// question fails.
func AskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask questions about the indexed document",
		ArgsUsage: "<question>...",
		Flags:     OutputFlags(),
		Action:    askAction,
	}
}

func askAction(c *cli.Context) error {
	questions := c.Args().Slice()
	if len(questions) == 0 {
		return cli.Exit("question required", exitOperation)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	e, err := setup(c, errWriter(c))
	if err != nil {
		return err
	}
	defer iox.DiscardErr(e.Close)

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	var askErr error
	for _, q := range questions {
		if strings.TrimSpace(q) == "" {
			continue
		}
		// The engine, not the session, is used here: a one-shot process never
		// indexed anything itself, but the backend may still hold a document.
		if _, askErr = e.sess.Chat.Submit(ctx, q); askErr != nil {
			break
		}
	}

	if err := r.Render(e.sess.Chat.Snapshot().Transcript); err != nil {
		return err
	}
	if askErr != nil {
		return fail(askErr, "")
	}
	return nil
}
