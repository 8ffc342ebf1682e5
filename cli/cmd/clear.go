package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/docqa/cli/render"
	"github.com/pithecene-io/docqa/ingest"
	"github.com/pithecene-io/docqa/iox"
)

// ClearResponse is the response for the clear command.
type ClearResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ClearCommand returns the clear command.
func ClearCommand() *cli.Command {
	return &cli.Command{
		Name:   "clear",
		Usage:  "Delete every uploaded file and the index on the backend",
		Flags:  OutputFlags(),
		Action: clearAction,
	}
}

func clearAction(c *cli.Context) error {
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

	if err := e.sess.Reset(ctx); err != nil {
		return fail(err, ingest.MsgClearFailed)
	}
	return r.Render(ClearResponse{Status: "cleared", Message: ingest.MsgCleared})
}
