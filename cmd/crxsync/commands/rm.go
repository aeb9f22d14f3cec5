package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/crxsync/internal/app/remove"
	"github.com/slok/crxsync/internal/storage/sqlite"
)

type RmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	titleOrID string
	force     bool
}

// NewRmCommand returns the rm command.
func NewRmCommand(rootCmd *RootCommand, app *kingpin.Application) *RmCommand {
	c := &RmCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("rm", "Remove a task, the next sync closes its CRM activity.")
	c.Cmd.Arg("title-or-id", "Task title or ID.").Required().StringVar(&c.titleOrID)
	c.Cmd.Flag("force", "Remove the task only from the local store.").Short('f').BoolVar(&c.force)

	return c
}

func (c RmCommand) Name() string { return c.Cmd.FullCommand() }

func (c RmCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := remove.NewService(remove.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, remove.Request{
		TitleOrID: c.titleOrID,
		Force:     c.force,
	})
	if err != nil {
		return fmt.Errorf("could not remove task: %w", err)
	}

	return newPrinter(formatTable, c.rootCmd.Stdout).PrintMessage(fmt.Sprintf("Removed %s", task.Task.Title))
}
