package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/omarshaarawi/draftbot/internal/draft"
	"github.com/omarshaarawi/draftbot/internal/schema"
	"github.com/omarshaarawi/draftbot/internal/solver/branchbound"
	"github.com/omarshaarawi/draftbot/internal/tables"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Error running fantop", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "fantop",
		Usage: "plan a fantasy football draft",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log solver progress"},
		},
		Before: func(c *cli.Context) error {
			level := slog.LevelInfo
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Commands: []*cli.Command{
			newSolveCommand(),
			newValidateCommand(),
		},
	}
}

func inputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "input tables: a CSV directory or a .json, .yaml, .xlsx or .db file",
		Required: true,
	}
}

func newSolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "solve",
		Usage: "find the best draft and write it out",
		Flags: []cli.Flag{
			inputFlag(),
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "output tables, same formats as the input",
				Required: true,
			},
			&cli.IntFlag{Name: "node-limit", Usage: "stop branch and bound after this many nodes (0 for no limit)"},
		},
		Action: func(c *cli.Context) error {
			d, err := tables.Read(c.String("input"), draft.InputSchema)
			if err != nil {
				return err
			}

			factory := branchbound.Factory(
				branchbound.WithNodeLimit(c.Int("node-limit")),
				branchbound.WithLogger(slog.Default()),
			)
			optimizer := draft.NewOptimizer(factory)

			out, err := optimizer.Solve(c.Context, d)
			if err != nil {
				return reportFailure(c, err)
			}

			if err := tables.Write(c.String("output"), draft.SolutionSchema, out); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Draft written to %s\n", c.String("output"))
			return nil
		},
	}
}

func newValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check input tables without solving",
		Flags: []cli.Flag{inputFlag()},
		Action: func(c *cli.Context) error {
			d, err := tables.Read(c.String("input"), draft.InputSchema)
			if err != nil {
				return err
			}
			if err := draft.InputSchema.Validate(d); err != nil {
				return reportFailure(c, err)
			}
			fmt.Fprintln(c.App.Writer, "Input is valid.")
			return nil
		},
	}
}

// reportFailure prints what the user needs to fix and turns it into an exit code.
func reportFailure(c *cli.Context, err error) error {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Failures {
			fmt.Fprintln(c.App.ErrWriter, f.String())
		}
		return cli.Exit(fmt.Sprintf("%d validation failure(s)", len(verr.Failures)), 1)
	case errors.Is(err, draft.ErrNoDraftPossible):
		return cli.Exit("No draft at all is possible!", 2)
	default:
		return err
	}
}
