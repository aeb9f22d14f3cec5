package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/crxsync/internal/app/create"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage/sqlite"
)

var importanceByName = map[string]int{
	"do-or-die": model.ImportanceDoOrDie,
	"must-do":   model.ImportanceMustDo,
	"should":    model.ImportanceShould,
	"none":      model.ImportanceNone,
}

type AddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	title      string
	notes      string
	importance string
	due        string
	estimate   time.Duration
	tags       []string
	noSync     bool
	format     string
}

// NewAddCommand returns the add command.
func NewAddCommand(rootCmd *RootCommand, app *kingpin.Application) *AddCommand {
	c := &AddCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("add", "Add a local task, it is sent to the CRM on the next sync.")
	c.Cmd.Arg("title", "Task title.").Required().StringVar(&c.title)
	c.Cmd.Flag("notes", "Task notes.").StringVar(&c.notes)
	c.Cmd.Flag("importance", "Task importance.").Default("none").EnumVar(&c.importance, "do-or-die", "must-do", "should", "none")
	c.Cmd.Flag("due", "Due date (YYYY-MM-DD or RFC3339).").StringVar(&c.due)
	c.Cmd.Flag("estimate", "Estimated duration (e.g. 1h30m).").DurationVar(&c.estimate)
	c.Cmd.Flag("tag", "Task tag (repeatable).").StringsVar(&c.tags)
	c.Cmd.Flag("no-sync", "Keep the task local, never send it to the CRM.").BoolVar(&c.noSync)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c AddCommand) Name() string { return c.Cmd.FullCommand() }

func (c AddCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	due, err := parseDue(c.due)
	if err != nil {
		return err
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := create.NewService(create.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, create.Request{
		Title:            c.title,
		Notes:            c.notes,
		Importance:       importanceByName[c.importance],
		DueAt:            due,
		EstimatedSeconds: int(c.estimate.Seconds()),
		Tags:             c.tags,
		NoSync:           c.noSync,
	})
	if err != nil {
		return fmt.Errorf("could not add task: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTasks([]model.TaskContainer{*task}); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}

func parseDue(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: %w", s, model.ErrNotValid)
	}
	return t, nil
}
