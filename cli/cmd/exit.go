package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/docqa/gateway"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitOperation = 1
	exitTransport = 2
	exitConfig    = 3
)

// exitCode classifies err: transport failures exit 2, everything else
// that reached the backend or failed validation exits 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, gateway.ErrTransport):
		return exitTransport
	default:
		return exitOperation
	}
}

// fail converts err into a cli exit error. msg is shown instead of the
// error text when non-empty.
func fail(err error, msg string) error {
	if err == nil {
		return nil
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return err
	}
	if msg == "" {
		msg = describe(err)
	}
	return cli.Exit(msg, exitCode(err))
}

// describe prefers the backend's explanation for server failures and the
// raw error otherwise, so transport problems stay diagnosable.
func describe(err error) string {
	if errors.Is(err, gateway.ErrServer) {
		return gateway.Describe(err)
	}
	return err.Error()
}

func configError(err error) error {
	return cli.Exit(fmt.Sprintf("config: %v", err), exitConfig)
}
