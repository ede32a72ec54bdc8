package idatest

import "github.com/iov-one/ida"

// Handler is a mock implementation of the ida.Handler interface.
//
// Set CheckErr or DeliverErr to force an error response. When Key is set,
// each call writes Key and Value to the store before returning, which
// allows to test rollback behaviour of the callers.
type Handler struct {
	checkCall   int
	CheckResult ida.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult ida.DeliverResult
	DeliverErr    error

	Key   []byte
	Value []byte
}

var _ ida.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	h.checkCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	h.deliverCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) write(db ida.KVStore) error {
	if h.Key == nil {
		return nil
	}
	return db.Set(h.Key, h.Value)
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// PanicHandler panics with the given value on every call.
type PanicHandler struct {
	Value interface{}
}

var _ ida.Handler = PanicHandler{}

func (p PanicHandler) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	panic(p.Value)
}

func (p PanicHandler) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	panic(p.Value)
}
