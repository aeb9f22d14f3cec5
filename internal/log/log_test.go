package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/crxsync/internal/log"
)

func TestCtxValues(t *testing.T) {
	tests := map[string]struct {
		ctx   func() context.Context
		expKv log.Kv
	}{
		"A context without values should return empty values.": {
			ctx:   context.Background,
			expKv: log.Kv{},
		},
		"Values should be merged and overwritten by the newest.": {
			ctx: func() context.Context {
				ctx := log.CtxWithValues(context.Background(), log.Kv{"a": 1, "b": 2})
				return log.CtxWithValues(ctx, log.Kv{"b": 3, "c": 4})
			},
			expKv: log.Kv{"a": 1, "b": 3, "c": 4},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			gotKv := log.ValuesFromCtx(test.ctx())
			assert.Equal(test.expKv, gotKv)
		})
	}
}

func TestNoopLoggerSetValuesOnCtx(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, log.Noop.SetValuesOnCtx(ctx, log.Kv{"a": 1}))
}
