package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/idatest"
	"github.com/iov-one/ida/idatest/assert"
	"github.com/iov-one/ida/store"
	"github.com/tendermint/tendermint/libs/log"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	ctx := ida.WithLogger(context.Background(), log.NewTMLogger(&buf))
	db := store.MemStore()
	tx := txWithPath("distribution/distribute")

	l := NewLogging()
	_, err := l.Deliver(ctx, db, tx, &idatest.Handler{DeliverResult: ida.DeliverResult{Log: "distributed"}})
	assert.Nil(t, err)
	_, err = l.Deliver(ctx, db, tx, &idatest.Handler{DeliverErr: errors.ErrUnauthorized})
	assert.IsErr(t, errors.ErrUnauthorized, err)

	out := buf.String()
	for _, want := range []string{"distributed", "path=distribution/distribute", "duration=", "err=", "unauthorized"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output does not contain %q: %s", want, out)
		}
	}
}

func TestRecovery(t *testing.T) {
	h := idatest.PanicHandler{Value: "check panic"}
	r := NewRecovery()

	ctx := context.Background()
	db := store.MemStore()

	// Panic handler panics. Test the test tool.
	assert.Panics(t, func() { _, _ = h.Check(ctx, db, nil) })
	assert.Panics(t, func() { _, _ = h.Deliver(ctx, db, nil) })

	// Recovery wrapped handler returns an error.
	_, err := r.Check(ctx, db, nil, h)
	assert.IsErr(t, errors.ErrPanic, err)
	_, err = r.Deliver(ctx, db, nil, h)
	assert.IsErr(t, errors.ErrPanic, err)
}

func TestSavepoint(t *testing.T) {
	// always written before calling the decorator
	ok, ov := []byte("demo"), []byte("data")
	// written by the handler
	nk, nv := []byte{1, 2, 3}, []byte{4, 5, 6}

	cases := map[string]struct {
		save    Savepoint
		handler *idatest.Handler
		check   bool
		wantErr bool
		written [][]byte
		missing [][]byte
	}{
		"savepoint not active, error keeps writes": {
			save:    NewSavepoint(),
			handler: &idatest.Handler{Key: nk, Value: nv, CheckErr: errors.ErrState},
			check:   true,
			wantErr: true,
			written: [][]byte{ok, nk},
		},
		"savepoint on check rolls back": {
			save:    NewSavepoint().OnCheck(),
			handler: &idatest.Handler{Key: nk, Value: nv, CheckErr: errors.ErrState},
			check:   true,
			wantErr: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"savepoint on deliver rolls back": {
			save:    NewSavepoint().OnDeliver(),
			handler: &idatest.Handler{Key: nk, Value: nv, DeliverErr: errors.ErrState},
			wantErr: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"savepoint on check does not affect deliver": {
			save:    NewSavepoint().OnCheck(),
			handler: &idatest.Handler{Key: nk, Value: nv, DeliverErr: errors.ErrState},
			wantErr: true,
			written: [][]byte{ok, nk},
		},
		"success is written": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			handler: &idatest.Handler{Key: nk, Value: nv},
			written: [][]byte{ok, nk},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			db := store.MemStore()
			assert.Nil(t, db.Set(ok, ov))

			var err error
			if tc.check {
				_, err = tc.save.Check(ctx, db, nil, tc.handler)
			} else {
				_, err = tc.save.Deliver(ctx, db, nil, tc.handler)
			}
			assert.Equal(t, tc.wantErr, err != nil)

			for _, k := range tc.written {
				has, err := db.Has(k)
				assert.Nil(t, err)
				assert.Equal(t, true, has)
			}
			for _, k := range tc.missing {
				has, err := db.Has(k)
				assert.Nil(t, err)
				assert.Equal(t, false, has)
			}
		})
	}
}
