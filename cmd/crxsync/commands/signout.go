package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/crxsync/internal/app/signout"
	"github.com/slok/crxsync/internal/storage/sqlite"
)

type SignoutCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewSignoutCommand returns the signout command.
func NewSignoutCommand(rootCmd *RootCommand, app *kingpin.Application) *SignoutCommand {
	c := &SignoutCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("signout", "Forget the CRM account, local tasks are kept but unlinked.")
	return c
}

func (c SignoutCommand) Name() string { return c.Cmd.FullCommand() }

func (c SignoutCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := signout.NewService(signout.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if err := svc.Run(ctx, signout.Request{}); err != nil {
		return fmt.Errorf("could not sign out: %w", err)
	}

	return newPrinter(formatTable, c.rootCmd.Stdout).PrintMessage("Signed out")
}
