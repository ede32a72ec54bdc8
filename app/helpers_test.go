package app

import "github.com/iov-one/ida/idatest"

type testMsg struct {
	path string
	err  error
}

func (m *testMsg) Path() string               { return m.path }
func (m *testMsg) Validate() error            { return m.err }
func (m *testMsg) Marshal() ([]byte, error)   { return []byte(m.path), nil }
func (m *testMsg) Unmarshal(raw []byte) error { m.path = string(raw); return nil }

func txWithPath(path string) *idatest.Tx {
	return &idatest.Tx{Msg: &testMsg{path: path}}
}
