package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-pnl/internal/config"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
	"github.com/urfave/cli/v3"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Create, check or describe the config file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the default config to the --config path",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: configInitAction,
			},
			{
				Name:   "validate",
				Usage:  "Load and validate the config file",
				Action: configValidateAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the config file",
				Action: configSchemaAction,
			},
		},
	}
}

func configInitAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return errors.Newf(errors.ErrCodeInvalidParameter, "%s already exists, use --force to overwrite", path)
	}

	if err := config.Default().SaveToFile(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "wrote %s\n", path)

	return nil
}

func configValidateAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "%s is valid (source: %s, week starts on %s)\n",
		path, cfg.Source.Type, cfg.Calendar.WeekStartsOn)

	return nil
}

func configSchemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, schema)

	return nil
}
