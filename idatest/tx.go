package idatest

import (
	"github.com/iov-one/ida"
)

// Tx represents a transaction carrying a single message.
type Tx struct {
	Msg ida.Msg
	// Err is returned by GetMsg when set.
	Err error
}

var _ ida.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (ida.Msg, error) {
	return tx.Msg, tx.Err
}
