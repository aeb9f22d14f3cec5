package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	appsync "github.com/slok/crxsync/internal/app/sync"
)

type SyncCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewSyncCommand returns the sync command.
func NewSyncCommand(rootCmd *RootCommand, app *kingpin.Application) *SyncCommand {
	c := &SyncCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("sync", "Run a single sync pass between the local tasks and the CRM.")
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c SyncCommand) Name() string { return c.Cmd.FullCommand() }

func (c SyncCommand) Run(ctx context.Context) error {
	deps, err := newSyncDeps(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer deps.Close()

	res, err := deps.service.Run(ctx, appsync.Request{})
	if err != nil {
		return fmt.Errorf("could not sync: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintSyncResult(*res); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	return nil
}
