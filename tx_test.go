package ida

import (
	"testing"

	"github.com/iov-one/ida/errors"
	"github.com/stretchr/testify/assert"
)

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		Tx      Tx
		Dest    interface{}
		WantMsg Msg
		WantErr *errors.Error
	}{
		"success, msgmock type message": {
			Tx:      &TxMock{Msg: &MsgMock{ID: 4219}},
			Dest:    &MsgMock{},
			WantMsg: &MsgMock{ID: 4219},
		},
		"success, other type message": {
			Tx:      &TxMock{Msg: &OtherMsgMock{Num: 102}},
			Dest:    &OtherMsgMock{},
			WantMsg: &OtherMsgMock{Num: 102},
		},
		"transaction contains a nil message": {
			Tx:      &TxMock{Msg: nil},
			WantErr: errors.ErrState,
		},
		"invalid destination message, not a pointer": {
			Tx:      &TxMock{Msg: &OtherMsgMock{Num: 81421}},
			Dest:    MsgMock{},
			WantErr: errors.ErrType,
		},
		"invalid destination message, wrong message type": {
			Tx:      &TxMock{Msg: &OtherMsgMock{Num: 94151}},
			Dest:    &MsgMock{},
			WantErr: errors.ErrType,
		},
		"invalid destination message, nil interface": {
			Tx:      &TxMock{Msg: &MsgMock{ID: 45192}},
			Dest:    Msg(nil),
			WantErr: errors.ErrType,
		},
		"invalid destination message, unaddressable": {
			Tx:      &TxMock{Msg: &MsgMock{ID: 91841231}},
			Dest:    (*MsgMock)(nil),
			WantErr: errors.ErrType,
		},
		"invalid destination message type, random value": {
			Tx:      &TxMock{Msg: &MsgMock{ID: 2914}},
			Dest:    "foobar",
			WantErr: errors.ErrType,
		},
		"invalid message in transaction, failed validation": {
			Tx:      &TxMock{Msg: &MsgMock{ID: 5, Err: errors.ErrAmount}},
			Dest:    &MsgMock{},
			WantErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := LoadMsg(tc.Tx, tc.Dest); !tc.WantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.WantErr, err)
			}

			if tc.WantErr == nil {
				assert.Equal(t, tc.WantMsg, tc.Dest)
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, "(missing)", GetPath(&TxMock{}))
	assert.Equal(t, "mock", GetPath(&TxMock{Msg: &MsgMock{}}))
}

type TxMock struct {
	Msg Msg
}

func (tx *TxMock) GetMsg() (Msg, error) {
	return tx.Msg, nil
}

type MsgMock struct {
	Msg
	// ID is used only to compare instances if the content is the same.
	ID  int64
	Err error
}

func (mock *MsgMock) Validate() error {
	return mock.Err
}

func (mock *MsgMock) Path() string {
	return "mock"
}

type OtherMsgMock struct {
	Msg
	Num int64
}

func (mock *OtherMsgMock) Validate() error {
	return nil
}
