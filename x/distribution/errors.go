package distribution

import "github.com/iov-one/ida/errors"

var (
	ErrIndexExists            = errors.Register(1500, "index exists")
	ErrIndexNotFound          = errors.Register(1501, "index not found")
	ErrIndexValueMustIncrease = errors.Register(1502, "index value must increase")
	ErrInsufficientBalance    = errors.Register(1503, "insufficient balance")
	ErrInvalidSubscriber      = errors.Register(1504, "invalid subscriber")
	ErrAlreadyApproved        = errors.Register(1505, "subscription already approved")
	ErrNotApproved            = errors.Register(1506, "subscription not approved")
	ErrSubscriptionNotFound   = errors.Register(1507, "subscription not found")
	ErrNotAllowed             = errors.Register(1508, "operation not allowed")
	ErrSubscriptionLimit      = errors.Register(1509, "subscription limit reached")
)
