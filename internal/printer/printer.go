package printer

import (
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/syncer"
	"github.com/slok/crxsync/internal/workflow"
)

// Printer knows how to print task and sync information in different formats.
type Printer interface {
	PrintTasks(tasks []model.TaskContainer) error
	PrintStatus(report model.StatusReport) error
	PrintSyncResult(res syncer.Result) error
	PrintPath(path []workflow.Transition) error
	PrintMessage(msg string) error
}
