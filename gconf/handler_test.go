package gconf

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/idatest"
	"github.com/iov-one/ida/idatest/assert"
	"github.com/iov-one/ida/store"
)

func TestUpdateConfigurationHandler(t *testing.T) {
	cond := idatest.NewCondition()
	admin := idatest.NewCondition()

	cases := map[string]struct {
		// Init is the initial configuration state. Use nil to not
		// store any configuration.
		Init           ValidMarshaler
		InitAdmin      func(ida.ReadOnlyKVStore) (ida.Address, error)
		Msg            ida.Msg
		MsgConditions  []ida.Condition
		WantCheckErr   *errors.Error
		WantDeliverErr *errors.Error
		WantConfig     *myconfig
	}{
		"success": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Num: 333, Str: "boing!"},
			},
			MsgConditions: []ida.Condition{cond},
			WantConfig:    &myconfig{Owner: cond.Address(), Num: 333, Str: "boing!"},
		},
		"message must be signed by the configuration owner": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Num: 333},
			},
			MsgConditions:  []ida.Condition{idatest.NewCondition()},
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
		"zero values are not updating the configuration": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Str: "changed"},
			},
			MsgConditions: []ida.Condition{cond},
			WantConfig:    &myconfig{Owner: cond.Address(), Num: 5125, Str: "changed"},
		},
		"invalid patch is not accepted": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: ida.Address("short"), Num: 1},
			},
			MsgConditions:  []ida.Condition{cond},
			WantCheckErr:   errors.ErrInput,
			WantDeliverErr: errors.ErrInput,
		},
		"missing configuration without init admin": {
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Num: 1},
			},
			MsgConditions:  []ida.Condition{cond},
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
		"missing configuration created by init admin": {
			InitAdmin: func(ida.ReadOnlyKVStore) (ida.Address, error) { return admin.Address(), nil },
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Num: 1},
			},
			MsgConditions: []ida.Condition{admin},
			WantConfig:    &myconfig{Owner: cond.Address(), Num: 1},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()

			if tc.Init != nil {
				if err := Save(db, "mypkg", tc.Init); err != nil {
					t.Fatalf("cannot save initial configuration: %s", err)
				}
			}

			auth := &idatest.CtxAuth{Key: "auth"}
			handler := NewUpdateConfigurationHandler("mypkg", &myconfig{}, auth, tc.InitAdmin)

			ctx := ida.WithHeight(context.Background(), 999)
			ctx = auth.SetConditions(ctx, tc.MsgConditions...)

			tx := &idatest.Tx{Msg: tc.Msg}

			cache := db.CacheWrap()
			if _, err := handler.Check(ctx, cache, tx); !tc.WantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			cache.Discard()

			if _, err := handler.Deliver(ctx, db, tx); !tc.WantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}

			if tc.WantConfig != nil {
				var got myconfig
				if err := Load(db, "mypkg", &got); err != nil {
					t.Fatalf("cannot load configuration from the database: %s", err)
				}
				assert.Equal(t, tc.WantConfig, &got)
			}
		})
	}
}

type myconfig struct {
	Owner ida.Address
	Num   int64
	Str   string
}

func (c *myconfig) GetOwner() ida.Address      { return c.Owner }
func (c *myconfig) Marshal() ([]byte, error)   { return json.Marshal(c) }
func (c *myconfig) Unmarshal(raw []byte) error { return json.Unmarshal(raw, c) }

func (c *myconfig) Validate() error {
	if err := c.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return nil
}

type myconfigMsg struct {
	Patch *myconfig
}

var _ ida.Msg = (*myconfigMsg)(nil)

func (msg *myconfigMsg) Marshal() ([]byte, error)   { return json.Marshal(msg) }
func (msg *myconfigMsg) Unmarshal(raw []byte) error { return json.Unmarshal(raw, msg) }
func (msg *myconfigMsg) Path() string               { return "myconfig" }
func (msg *myconfigMsg) Validate() error            { return msg.Patch.Validate() }
