package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/crxsync/internal/app/complete"
	"github.com/slok/crxsync/internal/storage/sqlite"
)

type DoneCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	titleOrID string
	reopen    bool
}

// NewDoneCommand returns the done command.
func NewDoneCommand(rootCmd *RootCommand, app *kingpin.Application) *DoneCommand {
	c := &DoneCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("done", "Mark a task as completed.")
	c.Cmd.Arg("title-or-id", "Task title or ID.").Required().StringVar(&c.titleOrID)
	c.Cmd.Flag("reopen", "Mark a completed task as open again.").BoolVar(&c.reopen)

	return c
}

func (c DoneCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoneCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := complete.NewService(complete.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, complete.Request{
		TitleOrID: c.titleOrID,
		Reopen:    c.reopen,
	})
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	return newPrinter(formatTable, c.rootCmd.Stdout).PrintMessage(fmt.Sprintf("%s is %s", task.Task.Title, task.LifecycleState()))
}
