package path_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/crxsync/internal/app/path"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/remote/remotemock"
	"github.com/slok/crxsync/internal/workflow"
)

func TestService_Run(t *testing.T) {
	states := []workflow.State{
		{ID: "s1", Name: "New"},
		{ID: "s2", Name: "In Progress"},
		{ID: "s3", Name: "Complete"},
		{ID: "s4", Name: "Archived"},
	}
	transitions := []workflow.Transition{
		{ID: "t1", Name: "Assign", FromStateID: "s1", ToStateID: "s2"},
		{ID: "t2", Name: "Complete", FromStateID: "s2", ToStateID: "s3"},
	}
	okWorkflow := func(m *remotemock.MockGateway) {
		m.On("FetchProcessID", mock.Anything, "process").Once().Return("p1", nil)
		m.On("FetchStates", mock.Anything, "p1").Once().Return(states, nil)
		m.On("FetchTransitions", mock.Anything, "p1").Once().Return(transitions, nil)
	}

	tests := map[string]struct {
		mock    func(m *remotemock.MockGateway)
		req     path.Request
		expPath []string
		expErr  error
	}{
		"path between reachable states": {
			mock:    okWorkflow,
			req:     path.Request{From: "New", To: "Complete"},
			expPath: []string{"t1", "t2"},
		},
		"path to the same state is empty": {
			mock:    okWorkflow,
			req:     path.Request{From: "Complete", To: "Complete"},
			expPath: []string{},
		},
		"unreachable state should fail": {
			mock:   okWorkflow,
			req:    path.Request{From: "Complete", To: "New"},
			expErr: model.ErrNotFound,
		},
		"unknown state should fail": {
			mock:   okWorkflow,
			req:    path.Request{From: "New", To: "Missing"},
			expErr: model.ErrNotFound,
		},
		"remote error should fail": {
			mock: func(m *remotemock.MockGateway) {
				m.On("FetchProcessID", mock.Anything, "process").Once().Return("", fmt.Errorf("401: %w", model.ErrAuthRequired))
			},
			req:    path.Request{From: "New", To: "Complete"},
			expErr: model.ErrAuthRequired,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			gw := remotemock.NewMockGateway(t)
			test.mock(gw)

			svc, err := path.NewService(path.ServiceConfig{Remote: gw, ProcessName: "process"})
			require.NoError(err)

			res, err := svc.Run(context.Background(), test.req)
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)

			ids := []string{}
			for _, tr := range res {
				ids = append(ids, tr.ID)
			}
			assert.Equal(test.expPath, ids)
		})
	}
}
