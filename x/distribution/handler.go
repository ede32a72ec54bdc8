package distribution

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/gconf"
	"github.com/iov-one/ida/x"
)

// RegisterRoutes registers handlers for all distribution messages.
func RegisterRoutes(r ida.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(pathCreateIndexMsg, NewCreateIndexHandler(auth, ctrl))
	r.Handle(pathUpdateIndexMsg, NewUpdateIndexHandler(auth, ctrl))
	r.Handle(pathDistributeMsg, NewDistributeHandler(auth, ctrl))
	r.Handle(pathUpdateSubscriptionMsg, NewUpdateSubscriptionHandler(auth, ctrl))
	r.Handle(pathApproveSubscriptionMsg, NewApproveSubscriptionHandler(auth, ctrl))
	r.Handle(pathRevokeSubscriptionMsg, NewRevokeSubscriptionHandler(auth, ctrl))
	r.Handle(pathDeleteSubscriptionMsg, NewDeleteSubscriptionHandler(auth, ctrl))
	r.Handle(pathClaimMsg, NewClaimHandler(auth, ctrl))
	r.Handle(pathUpdateConfigurationMsg, NewConfigHandler(auth))
}

// NewConfigHandler returns a handler for UpdateConfigurationMsg.
func NewConfigHandler(auth x.Authenticator) ida.Handler {
	return gconf.NewUpdateConfigurationHandler(confPkg, &Configuration{}, auth, nil)
}

func requireSigner(ctx ida.Context, auth x.Authenticator, addr ida.Address, who string) error {
	if !auth.HasAddress(ctx, addr) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s signature missing", who)
	}
	return nil
}

// CreateIndexHandler creates indexes. The publisher must sign.
type CreateIndexHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ida.Handler = CreateIndexHandler{}

func NewCreateIndexHandler(auth x.Authenticator, ctrl *Controller) CreateIndexHandler {
	return CreateIndexHandler{auth: auth, ctrl: ctrl}
}

func (h CreateIndexHandler) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ida.CheckResult{}, nil
}

func (h CreateIndexHandler) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.CreateIndex(ctx, db, msg.Publisher, msg.IndexID); err != nil {
		return nil, err
	}
	return &ida.DeliverResult{}, nil
}

func (h CreateIndexHandler) validate(ctx ida.Context, tx ida.Tx) (*CreateIndexMsg, error) {
	var msg CreateIndexMsg
	if err := ida.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireSigner(ctx, h.auth, msg.Publisher, "publisher"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateIndexHandler sets index values. The publisher must sign.
type UpdateIndexHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ida.Handler = UpdateIndexHandler{}

func NewUpdateIndexHandler(auth x.Authenticator, ctrl *Controller) UpdateIndexHandler {
	return UpdateIndexHandler{auth: auth, ctrl: ctrl}
}

func (h UpdateIndexHandler) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ida.CheckResult{}, nil
}

func (h UpdateIndexHandler) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	value, err := msg.Value()
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.UpdateIndex(ctx, db, msg.Publisher, msg.IndexID, value); err != nil {
		return nil, err
	}
	return &ida.DeliverResult{}, nil
}

func (h UpdateIndexHandler) validate(ctx ida.Context, tx ida.Tx) (*UpdateIndexMsg, error) {
	var msg UpdateIndexMsg
	if err := ida.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireSigner(ctx, h.auth, msg.Publisher, "publisher"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DistributeHandler distributes an amount over an index. The publisher
// must sign. The distributed amount of atomic units is returned as the
// result data.
type DistributeHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ida.Handler = DistributeHandler{}

func NewDistributeHandler(auth x.Authenticator, ctrl *Controller) DistributeHandler {
	return DistributeHandler{auth: auth, ctrl: ctrl}
}

func (h DistributeHandler) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ida.CheckResult{}, nil
}

func (h DistributeHandler) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	amount, err := msg.Value()
	if err != nil {
		return nil, err
	}
	_, actual, err := h.ctrl.Distribute(ctx, db, msg.Publisher, msg.IndexID, amount)
	if err != nil {
		return nil, err
	}
	return &ida.DeliverResult{Data: []byte(actual.String())}, nil
}

func (h DistributeHandler) validate(ctx ida.Context, tx ida.Tx) (*DistributeMsg, error) {
	var msg DistributeMsg
	if err := ida.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireSigner(ctx, h.auth, msg.Publisher, "publisher"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateSubscriptionHandler sets subscription units. The publisher must
// sign.
type UpdateSubscriptionHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ida.Handler = UpdateSubscriptionHandler{}

func NewUpdateSubscriptionHandler(auth x.Authenticator, ctrl *Controller) UpdateSubscriptionHandler {
	return UpdateSubscriptionHandler{auth: auth, ctrl: ctrl}
}

func (h UpdateSubscriptionHandler) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ida.CheckResult{}, nil
}

func (h UpdateSubscriptionHandler) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	units, err := msg.Value()
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.UpdateSubscription(ctx, db, msg.Publisher, msg.IndexID, msg.Subscriber, units); err != nil {
		return nil, err
	}
	return &ida.DeliverResult{}, nil
}

func (h UpdateSubscriptionHandler) validate(ctx ida.Context, tx ida.Tx) (*UpdateSubscriptionMsg, error) {
	var msg UpdateSubscriptionMsg
	if err := ida.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireSigner(ctx, h.auth, msg.Publisher, "publisher"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ApproveSubscriptionHandler approves a subscription. The subscriber must
// sign.
type ApproveSubscriptionHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ida.Handler = ApproveSubscriptionHandler{}

func NewApproveSubscriptionHandler(auth x.Authenticator, ctrl *Controller) ApproveSubscriptionHandler {
	return ApproveSubscriptionHandler{auth: auth, ctrl: ctrl}
}

func (h ApproveSubscriptionHandler) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ida.CheckResult{}, nil
}

func (h ApproveSubscriptionHandler) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.ApproveSubscription(ctx, db, msg.Publisher, msg.IndexID, msg.Subscriber); err != nil {
		return nil, err
	}
	return &ida.DeliverResult{}, nil
}

func (h ApproveSubscriptionHandler) validate(ctx ida.Context, tx ida.Tx) (*ApproveSubscriptionMsg, error) {
	var msg ApproveSubscriptionMsg
	if err := ida.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireSigner(ctx, h.auth, msg.Subscriber, "subscriber"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// RevokeSubscriptionHandler revokes an approval. The subscriber must sign.
type RevokeSubscriptionHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ida.Handler = RevokeSubscriptionHandler{}

func NewRevokeSubscriptionHandler(auth x.Authenticator, ctrl *Controller) RevokeSubscriptionHandler {
	return RevokeSubscriptionHandler{auth: auth, ctrl: ctrl}
}

func (h RevokeSubscriptionHandler) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ida.CheckResult{}, nil
}

func (h RevokeSubscriptionHandler) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.RevokeSubscription(ctx, db, msg.Publisher, msg.IndexID, msg.Subscriber); err != nil {
		return nil, err
	}
	return &ida.DeliverResult{}, nil
}

func (h RevokeSubscriptionHandler) validate(ctx ida.Context, tx ida.Tx) (*RevokeSubscriptionMsg, error) {
	var msg RevokeSubscriptionMsg
	if err := ida.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireSigner(ctx, h.auth, msg.Subscriber, "subscriber"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteSubscriptionHandler deletes a subscription. The caller must sign,
// and the controller makes sure it is the publisher or the subscriber.
type DeleteSubscriptionHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ida.Handler = DeleteSubscriptionHandler{}

func NewDeleteSubscriptionHandler(auth x.Authenticator, ctrl *Controller) DeleteSubscriptionHandler {
	return DeleteSubscriptionHandler{auth: auth, ctrl: ctrl}
}

func (h DeleteSubscriptionHandler) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ida.CheckResult{}, nil
}

func (h DeleteSubscriptionHandler) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.DeleteSubscription(ctx, db, msg.Publisher, msg.IndexID, msg.Subscriber, msg.Caller); err != nil {
		return nil, err
	}
	return &ida.DeliverResult{}, nil
}

func (h DeleteSubscriptionHandler) validate(ctx ida.Context, tx ida.Tx) (*DeleteSubscriptionMsg, error) {
	var msg DeleteSubscriptionMsg
	if err := ida.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireSigner(ctx, h.auth, msg.Caller, "caller"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ClaimHandler pays pending distributions. Anyone can claim, but the
// declared caller must sign.
type ClaimHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ida.Handler = ClaimHandler{}

func NewClaimHandler(auth x.Authenticator, ctrl *Controller) ClaimHandler {
	return ClaimHandler{auth: auth, ctrl: ctrl}
}

func (h ClaimHandler) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ida.CheckResult{}, nil
}

func (h ClaimHandler) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.Claim(ctx, db, msg.Publisher, msg.IndexID, msg.Subscriber, msg.Caller); err != nil {
		return nil, err
	}
	return &ida.DeliverResult{}, nil
}

func (h ClaimHandler) validate(ctx ida.Context, tx ida.Tx) (*ClaimMsg, error) {
	var msg ClaimMsg
	if err := ida.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireSigner(ctx, h.auth, msg.Caller, "caller"); err != nil {
		return nil, err
	}
	return &msg, nil
}
