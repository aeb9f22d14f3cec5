package remove_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/crxsync/internal/app/remove"
	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config remove.ServiceConfig
		expErr bool
	}{
		"valid config": {
			config: remove.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Logger:     log.Noop,
			},
			expErr: false,
		},
		"missing repository": {
			config: remove.ServiceConfig{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			svc, err := remove.NewService(test.config)
			if test.expErr {
				require.Error(err)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	now := time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	const id = "01H2QWERTYASDFGZXCVBNMLKJH"

	synced := model.TaskContainer{
		Task:   model.Task{ID: id, Title: "my-task", CreatedAt: createdAt, ModifiedAt: createdAt, Fields: model.FieldTitle},
		Remote: model.RemoteMetadata{ActivityID: "act-1", ActivityKey: 42},
	}
	local := model.TaskContainer{
		Task: model.Task{ID: id, Title: "my-task", CreatedAt: createdAt, ModifiedAt: createdAt},
	}

	tests := map[string]struct {
		mockRepo func(m *storagemock.MockRepository)
		req      remove.Request
		expErr   bool
	}{
		"remove synced task by title should mark it as deleted": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return([]model.TaskContainer{synced}, nil)
				exp := synced
				exp.Task.DeletedAt = now
				exp.Task.ModifiedAt = now
				exp.Task.Fields = model.FieldTitle | model.FieldDeletedAt | model.FieldModifiedAt
				m.On("SaveTask", mock.Anything, exp).Once().Return(nil)
			},
			req: remove.Request{TitleOrID: "my-task"},
		},
		"remove synced task by ID with force should delete it": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("GetTask", mock.Anything, id).Once().Return(&synced, nil)
				m.On("DeleteTask", mock.Anything, id).Once().Return(nil)
			},
			req: remove.Request{TitleOrID: id, Force: true},
		},
		"remove never synced task should delete it": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return([]model.TaskContainer{local}, nil)
				m.On("DeleteTask", mock.Anything, id).Once().Return(nil)
			},
			req: remove.Request{TitleOrID: "my-task"},
		},
		"remove already deleted task by ID should fail": {
			mockRepo: func(m *storagemock.MockRepository) {
				deleted := synced
				deleted.Task.DeletedAt = createdAt
				m.On("GetTask", mock.Anything, id).Once().Return(&deleted, nil)
			},
			req:    remove.Request{TitleOrID: id},
			expErr: true,
		},
		"ambiguous title should fail": {
			mockRepo: func(m *storagemock.MockRepository) {
				other := local
				other.Task.ID = "other"
				m.On("ListTasks", mock.Anything).Once().Return([]model.TaskContainer{local, other}, nil)
			},
			req:    remove.Request{TitleOrID: "my-task"},
			expErr: true,
		},
		"task not found": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("GetTask", mock.Anything, id).Once().Return(nil, fmt.Errorf("not found: %w", model.ErrNotFound))
				m.On("ListTasks", mock.Anything).Once().Return(nil, nil)
			},
			req:    remove.Request{TitleOrID: id},
			expErr: true,
		},
		"repository delete error": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return([]model.TaskContainer{local}, nil)
				m.On("DeleteTask", mock.Anything, id).Once().Return(fmt.Errorf("db error"))
			},
			req:    remove.Request{TitleOrID: "my-task"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRepo := storagemock.NewMockRepository(t)
			test.mockRepo(mRepo)

			svc, err := remove.NewService(remove.ServiceConfig{
				Repository: mRepo,
				Now:        func() time.Time { return now },
				Logger:     log.Noop,
			})
			require.NoError(err)

			c, err := svc.Run(context.Background(), test.req)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(id, c.Task.ID)
		})
	}
}
