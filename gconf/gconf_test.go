package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/idatest"
	"github.com/iov-one/ida/idatest/assert"
	"github.com/iov-one/ida/store"
)

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		conf        *myconfig
		wantSaveErr *errors.Error
	}{
		"valid": {
			conf: &myconfig{Owner: idatest.NewAddress(), Num: 852151421, Str: "foobar"},
		},
		"invalid owner cannot be saved": {
			conf:        &myconfig{Owner: ida.Address("too short")},
			wantSaveErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "mypkg", tc.conf); !tc.wantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			if tc.wantSaveErr != nil {
				return
			}
			var got myconfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.conf, &got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	var got myconfig
	err := Load(store.MemStore(), "mypkg", &got)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestInitConfig(t *testing.T) {
	owner := idatest.NewAddress()

	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
	}{
		"configuration present": {
			genesis: `{"conf": {"mypkg": {"Owner": "` + owner.String() + `", "Num": 7}}}`,
		},
		"package configuration missing": {
			genesis: `{"conf": {"otherpkg": {}}}`,
			wantErr: errors.ErrNotFound,
		},
		"invalid configuration": {
			genesis: `{"conf": {"mypkg": {"Num": 7}}}`,
			wantErr: errors.ErrInput,
		},
		"malformed json": {
			genesis: `{"conf": {"mypkg": {"Num": "seven"}}}`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts ida.Options
			if err := json.Unmarshal([]byte(tc.genesis), &opts); err != nil {
				t.Fatalf("cannot read genesis: %s", err)
			}
			db := store.MemStore()
			var conf myconfig
			if err := InitConfig(db, opts, "mypkg", &conf); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			var got myconfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, owner, got.Owner)
			assert.Equal(t, int64(7), got.Num)
		})
	}
}
