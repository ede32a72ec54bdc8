package cash

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/gconf"
	"github.com/iov-one/ida/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r ida.Registry, auth x.Authenticator, control Controller) {
	r.Handle(SendMsg{}.Path(), NewSendHandler(auth, control))
	r.Handle(MintMsg{}.Path(), NewMintHandler(auth, control))
	r.Handle((&UpdateConfigurationMsg{}).Path(), NewConfigHandler(auth))
}

// SendHandler will handle sending coins
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ ida.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed
func (h SendHandler) Check(ctx ida.Context, store ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ida.CheckResult{}, nil
}

// Deliver moves the tokens from source to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx ida.Context, store ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(store, msg.Source, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	return &ida.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx ida.Context, tx ida.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := ida.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &msg, nil
}

// MintHandler issues new coins. Only the configuration owner can mint.
type MintHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ ida.Handler = MintHandler{}

func NewMintHandler(auth x.Authenticator, control Controller) MintHandler {
	return MintHandler{
		auth:    auth,
		control: control,
	}
}

func (h MintHandler) Check(ctx ida.Context, store ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	if _, err := h.validate(ctx, store, tx); err != nil {
		return nil, err
	}
	return &ida.CheckResult{}, nil
}

func (h MintHandler) Deliver(ctx ida.Context, store ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := h.validate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.CoinMint(store, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	return &ida.DeliverResult{}, nil
}

func (h MintHandler) validate(ctx ida.Context, store ida.KVStore, tx ida.Tx) (*MintMsg, error) {
	var msg MintMsg
	if err := ida.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(store)
	if err != nil {
		return nil, err
	}
	if len(conf.Owner) == 0 || !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	return &msg, nil
}

// NewConfigHandler returns a handler for UpdateConfigurationMsg.
func NewConfigHandler(auth x.Authenticator) ida.Handler {
	return gconf.NewUpdateConfigurationHandler(confPkg, &Configuration{}, auth, nil)
}
