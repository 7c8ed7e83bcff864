package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-pnl/internal/version"
	"github.com/urfave/cli/v3"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

			return nil
		},
	}
}
