package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/docqa/cli/render"
	"github.com/pithecene-io/docqa/iox"
)

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Show backend health",
		Flags:  OutputFlags(),
		Action: healthAction,
	}
}

func healthAction(c *cli.Context) error {
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

	status, err := e.sess.Health(ctx)
	if err != nil {
		return fail(err, "")
	}
	return r.Render(status)
}
