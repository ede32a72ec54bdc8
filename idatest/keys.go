package idatest

import (
	"encoding/binary"
	"sync/atomic"
	"testing"

	"github.com/iov-one/ida"
)

var condSeq uint64

// NewCondition returns a unique condition. Each call returns a different
// value.
func NewCondition() ida.Condition {
	n := atomic.AddUint64(&condSeq, 1)
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, n)
	return ida.NewCondition("test", "seq", data)
}

// NewAddress returns a unique address.
func NewAddress() ida.Address {
	return NewCondition().Address()
}

// ParseAddress takes an address in a human readable format and returns its
// binary representation.
func ParseAddress(t testing.TB, encodedAddress string) ida.Address {
	t.Helper()

	addr, err := ida.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
