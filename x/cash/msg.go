package cash

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
)

const maxMemoSize int = 128

// SendMsg moves coins between two wallets. It must be signed by the
// source.
type SendMsg struct {
	Source      ida.Address `json:"source"`
	Destination ida.Address `json:"destination"`
	Amount      *coin.Coin  `json:"amount"`
	Memo        string      `json:"memo,omitempty"`
}

var _ ida.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	err := validAmount(m.Amount)
	err = errors.Append(err, errors.Field("Source", m.Source.Validate(), "source"))
	err = errors.Append(err, errors.Field("Destination", m.Destination.Validate(), "destination"))
	if len(m.Memo) > maxMemoSize {
		err = errors.Append(err, errors.Field("Memo", errors.ErrInput, "memo too long"))
	}
	return err
}

// MintMsg creates new coins. It must be signed by the configuration owner.
type MintMsg struct {
	Destination ida.Address `json:"destination"`
	Amount      *coin.Coin  `json:"amount"`
}

var _ ida.Msg = (*MintMsg)(nil)

func (MintMsg) Path() string {
	return "cash/mint"
}

func (m *MintMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *MintMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

func (m *MintMsg) Validate() error {
	err := validAmount(m.Amount)
	return errors.Append(err, errors.Field("Destination", m.Destination.Validate(), "destination"))
}

// UpdateConfigurationMsg patches the ledger configuration.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

var _ ida.Msg = (*UpdateConfigurationMsg)(nil)

func (*UpdateConfigurationMsg) Path() string {
	return "cash/update_configuration"
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "patch required")
	}
	return m.Patch.Validate()
}

func validAmount(c *coin.Coin) error {
	if coin.IsEmpty(c) || !c.IsPositive() {
		return errors.Field("Amount", errors.ErrAmount, "non-positive amount: %v", c)
	}
	return errors.Field("Amount", c.Validate(), "amount")
}

func unmarshalMsg(raw []byte, dst interface{}) error {
	if err := cdc.UnmarshalBinaryBare(raw, dst); err != nil {
		return errors.Wrap(errors.ErrMsg, err.Error())
	}
	return nil
}
