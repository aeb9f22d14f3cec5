package status_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/crxsync/internal/app/status"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage/storagemock"
)

func TestService_Run(t *testing.T) {
	lastSync := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	prefs := &model.Preferences{
		Status:            model.SyncStatus{LastSuccessAt: lastSync, LastError: "boom"},
		UserContactID:     "contact-1",
		PendingResourceID: "resource-1",
	}

	tests := map[string]struct {
		mock      func(m *storagemock.MockRepository)
		expReport *model.StatusReport
		expErr    bool
	}{
		"status should count tasks by sync state": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetPreferences", mock.Anything).Once().Return(prefs, nil)
				m.On("ListTasks", mock.Anything).Once().Return([]model.TaskContainer{
					{Task: model.Task{ID: "t1"}, Remote: model.RemoteMetadata{ActivityID: "a1", ActivityKey: 10}},
					{Task: model.Task{ID: "t2"}, Remote: model.RemoteMetadata{ActivityID: "a2", ActivityKey: 11}},
					{Task: model.Task{ID: "t3"}, Remote: model.RemoteMetadata{ActivityKey: model.UnsyncedActivityKey}},
					{Task: model.Task{ID: "t4"}},
				}, nil)
			},
			expReport: &model.StatusReport{
				Status:            prefs.Status,
				UserContactID:     "contact-1",
				PendingResourceID: "resource-1",
				Tasks:             4,
				Synced:            2,
				Unsynced:          1,
				Pending:           1,
			},
		},
		"preferences error should fail": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetPreferences", mock.Anything).Once().Return(nil, fmt.Errorf("db error"))
			},
			expErr: true,
		},
		"tasks error should fail": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetPreferences", mock.Anything).Once().Return(prefs, nil)
				m.On("ListTasks", mock.Anything).Once().Return(nil, fmt.Errorf("db error"))
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := storagemock.NewMockRepository(t)
			test.mock(repo)

			svc, err := status.NewService(status.ServiceConfig{Repository: repo})
			require.NoError(err)

			report, err := svc.Run(context.Background(), status.Request{})
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(test.expReport, report)
		})
	}
}
