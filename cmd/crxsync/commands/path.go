package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/crxsync/internal/app/path"
)

type PathCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	from   string
	to     string
	format string
}

// NewPathCommand returns the path command.
func NewPathCommand(rootCmd *RootCommand, app *kingpin.Application) *PathCommand {
	c := &PathCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("path", "Show the shortest workflow transition path between two states.")
	c.Cmd.Arg("from", "Source state name.").Required().StringVar(&c.from)
	c.Cmd.Arg("to", "Target state name.").Required().StringVar(&c.to)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c PathCommand) Name() string { return c.Cmd.FullCommand() }

func (c PathCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := loadConfig(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	rem, err := newRemote(cfg, logger)
	if err != nil {
		return err
	}

	svc, err := path.NewService(path.ServiceConfig{
		Remote:      rem,
		ProcessName: cfg.ProcessName,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	transitions, err := svc.Run(ctx, path.Request{From: c.from, To: c.to})
	if err != nil {
		return fmt.Errorf("could not find path: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintPath(transitions); err != nil {
		return fmt.Errorf("could not print path: %w", err)
	}

	return nil
}
