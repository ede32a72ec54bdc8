package app

import (
	"context"
	"testing"

	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/idatest"
	"github.com/iov-one/ida/idatest/assert"
	"github.com/iov-one/ida/store"
)

func TestRouterDispatch(t *testing.T) {
	good := &idatest.Handler{}
	bad := &idatest.Handler{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrUnauthorized,
	}

	r := NewRouter()
	r.Handle("distribution/claim", good)
	r.Handle("cash/send", bad)

	ctx := context.Background()
	db := store.MemStore()

	cases := map[string]struct {
		tx      *idatest.Tx
		wantErr *errors.Error
	}{
		"registered handler": {
			tx: txWithPath("distribution/claim"),
		},
		"handler error is returned": {
			tx:      txWithPath("cash/send"),
			wantErr: errors.ErrUnauthorized,
		},
		"unknown path": {
			tx:      txWithPath("distribution/unknown"),
			wantErr: errors.ErrNotFound,
		},
		"message cannot be loaded": {
			tx:      &idatest.Tx{Err: errors.ErrMsg},
			wantErr: errors.ErrMsg,
		},
		"no message": {
			tx:      &idatest.Tx{},
			wantErr: errors.ErrMsg,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := r.Check(ctx, db, tc.tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("check: unexpected error: %+v", err)
			}
			_, err = r.Deliver(ctx, db, tc.tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("deliver: unexpected error: %+v", err)
			}
		})
	}

	assert.Equal(t, 1, good.CheckCallCount())
	assert.Equal(t, 1, good.DeliverCallCount())
	assert.Equal(t, 2, bad.CallCount())
}

func TestRouterRegistration(t *testing.T) {
	r := NewRouter()
	r.Handle("distribution/createIndex", &idatest.Handler{})

	assert.Panics(t, func() { r.Handle("distribution/createIndex", &idatest.Handler{}) })
	assert.Panics(t, func() { r.Handle("l:7", &idatest.Handler{}) })
	assert.Panics(t, func() { r.Handle("", &idatest.Handler{}) })
	assert.Equal(t, []string{"distribution/createIndex"}, r.Paths())
}
