package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	appsync "github.com/slok/crxsync/internal/app/sync"
	"github.com/slok/crxsync/internal/log"
)

type DaemonCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	interval time.Duration
}

// NewDaemonCommand returns the daemon command.
func NewDaemonCommand(rootCmd *RootCommand, app *kingpin.Application) *DaemonCommand {
	c := &DaemonCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("daemon", "Run sync passes periodically until stopped.")
	c.Cmd.Flag("interval", "Time between sync passes, overrides the configured interval.").DurationVar(&c.interval)

	return c
}

func (c DaemonCommand) Name() string { return c.Cmd.FullCommand() }

func (c DaemonCommand) Run(ctx context.Context) error {
	deps, err := newSyncDeps(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer deps.Close()

	interval := deps.config.SyncInterval
	if c.interval > 0 {
		interval = c.interval
	}

	c.rootCmd.Logger.WithValues(log.Kv{"interval": interval}).Infof("Starting sync daemon")

	// Pass failures are logged by the service, the daemon only stops when signaled.
	_, err = deps.service.Run(ctx, appsync.Request{Interval: interval})
	if err != nil {
		return fmt.Errorf("could not run sync daemon: %w", err)
	}

	c.rootCmd.Logger.Infof("Sync daemon stopped")
	return nil
}
