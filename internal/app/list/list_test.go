package list_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/crxsync/internal/app/list"
	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config list.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: list.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Logger:     log.Noop,
			},
			expErr: false,
		},
		"missing repository should fail": {
			config: list.ServiceConfig{
				Logger: log.Noop,
			},
			expErr: true,
		},
		"nil logger should default to noop": {
			config: list.ServiceConfig{
				Repository: &storagemock.MockRepository{},
			},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := list.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	at := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)

	tasks := []model.TaskContainer{
		{Task: model.Task{ID: "t1", Title: "open"}, Tags: []string{"work/backend", "home"}},
		{Task: model.Task{ID: "t2", Title: "done", CompletedAt: at}, Tags: []string{"work/frontend"}},
		{Task: model.Task{ID: "t3", Title: "deleted", DeletedAt: at}},
		{Task: model.Task{ID: "t4", Title: "untagged"}},
	}

	tests := map[string]struct {
		mock   func(m *storagemock.MockRepository)
		req    list.Request
		expIDs []string
		expErr bool
	}{
		"list open tasks by default": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return(tasks, nil)
			},
			req:    list.Request{},
			expIDs: []string{"t1", "t4"},
		},
		"list all tasks": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return(tasks, nil)
			},
			req:    list.Request{All: true},
			expIDs: []string{"t1", "t2", "t3", "t4"},
		},
		"filter by tag glob": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return(tasks, nil)
			},
			req:    list.Request{All: true, TagPattern: "work/*"},
			expIDs: []string{"t1", "t2"},
		},
		"filter by exact tag": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return(tasks, nil)
			},
			req:    list.Request{TagPattern: "home"},
			expIDs: []string{"t1"},
		},
		"invalid tag pattern should fail": {
			mock:   func(m *storagemock.MockRepository) {},
			req:    list.Request{TagPattern: "work/[a"},
			expErr: true,
		},
		"repository error should fail": {
			mock: func(m *storagemock.MockRepository) {
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

			svc, err := list.NewService(list.ServiceConfig{Repository: repo})
			require.NoError(err)

			res, err := svc.Run(context.Background(), test.req)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)

			ids := []string{}
			for _, r := range res {
				ids = append(ids, r.Task.ID)
			}
			assert.Equal(test.expIDs, ids)
		})
	}
}
