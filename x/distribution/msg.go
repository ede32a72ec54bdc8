package distribution

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
)

const (
	pathCreateIndexMsg         = "distribution/createIndex"
	pathUpdateIndexMsg         = "distribution/updateIndex"
	pathDistributeMsg          = "distribution/distribute"
	pathUpdateSubscriptionMsg  = "distribution/updateSubscription"
	pathApproveSubscriptionMsg = "distribution/approveSubscription"
	pathRevokeSubscriptionMsg  = "distribution/revokeSubscription"
	pathDeleteSubscriptionMsg  = "distribution/deleteSubscription"
	pathClaimMsg               = "distribution/claim"
	pathUpdateConfigurationMsg = "distribution/updateConfiguration"
)

// CreateIndexMsg creates a new index. It must be signed by the publisher.
type CreateIndexMsg struct {
	Publisher ida.Address `json:"publisher"`
	IndexID   uint32      `json:"index_id"`
}

var _ ida.Msg = (*CreateIndexMsg)(nil)

func (CreateIndexMsg) Path() string {
	return pathCreateIndexMsg
}

func (m *CreateIndexMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *CreateIndexMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

func (m *CreateIndexMsg) Validate() error {
	return errors.Field("Publisher", m.Publisher.Validate(), "publisher")
}

// UpdateIndexMsg sets the index value. IndexValue is a base 10 integer of
// atomic units per unit.
type UpdateIndexMsg struct {
	Publisher  ida.Address `json:"publisher"`
	IndexID    uint32      `json:"index_id"`
	IndexValue string      `json:"index_value"`
}

var _ ida.Msg = (*UpdateIndexMsg)(nil)

func (UpdateIndexMsg) Path() string {
	return pathUpdateIndexMsg
}

func (m *UpdateIndexMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *UpdateIndexMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

func (m *UpdateIndexMsg) Validate() error {
	_, err := m.Value()
	return errors.Append(
		errors.Field("Publisher", m.Publisher.Validate(), "publisher"),
		errors.Field("IndexValue", err, "index value"),
	)
}

// Value returns the parsed index value.
func (m *UpdateIndexMsg) Value() (coin.Amount, error) {
	return coin.ParseAmount(m.IndexValue)
}

// DistributeMsg distributes an amount, given in whole coins, over all
// units of the index.
type DistributeMsg struct {
	Publisher ida.Address `json:"publisher"`
	IndexID   uint32      `json:"index_id"`
	Amount    string      `json:"amount"`
}

var _ ida.Msg = (*DistributeMsg)(nil)

func (DistributeMsg) Path() string {
	return pathDistributeMsg
}

func (m *DistributeMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *DistributeMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

func (m *DistributeMsg) Validate() error {
	_, err := m.Value()
	return errors.Append(
		errors.Field("Publisher", m.Publisher.Validate(), "publisher"),
		errors.Field("Amount", err, "amount"),
	)
}

// Value returns the amount in atomic units.
func (m *DistributeMsg) Value() (coin.Amount, error) {
	return coin.ParseHumanAmount(m.Amount)
}

// UpdateSubscriptionMsg sets the units of a subscriber. Units are given in
// the same decimal format as coins. It must be signed by the publisher.
type UpdateSubscriptionMsg struct {
	Publisher  ida.Address `json:"publisher"`
	IndexID    uint32      `json:"index_id"`
	Subscriber ida.Address `json:"subscriber"`
	Units      string      `json:"units"`
}

var _ ida.Msg = (*UpdateSubscriptionMsg)(nil)

func (UpdateSubscriptionMsg) Path() string {
	return pathUpdateSubscriptionMsg
}

func (m *UpdateSubscriptionMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *UpdateSubscriptionMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

func (m *UpdateSubscriptionMsg) Validate() error {
	_, err := m.Value()
	return errors.Append(
		errors.Field("Publisher", m.Publisher.Validate(), "publisher"),
		errors.Field("Subscriber", validSubscriber(m.Subscriber), "subscriber"),
		errors.Field("Units", err, "units"),
	)
}

// Value returns the units in atomic units.
func (m *UpdateSubscriptionMsg) Value() (coin.Amount, error) {
	return coin.ParseHumanAmount(m.Units)
}

// ApproveSubscriptionMsg must be signed by the subscriber.
type ApproveSubscriptionMsg struct {
	Publisher  ida.Address `json:"publisher"`
	IndexID    uint32      `json:"index_id"`
	Subscriber ida.Address `json:"subscriber"`
}

var _ ida.Msg = (*ApproveSubscriptionMsg)(nil)

func (ApproveSubscriptionMsg) Path() string {
	return pathApproveSubscriptionMsg
}

func (m *ApproveSubscriptionMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *ApproveSubscriptionMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

func (m *ApproveSubscriptionMsg) Validate() error {
	return validateSubscriptionRef(m.Publisher, m.Subscriber)
}

// RevokeSubscriptionMsg must be signed by the subscriber.
type RevokeSubscriptionMsg struct {
	Publisher  ida.Address `json:"publisher"`
	IndexID    uint32      `json:"index_id"`
	Subscriber ida.Address `json:"subscriber"`
}

var _ ida.Msg = (*RevokeSubscriptionMsg)(nil)

func (RevokeSubscriptionMsg) Path() string {
	return pathRevokeSubscriptionMsg
}

func (m *RevokeSubscriptionMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *RevokeSubscriptionMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

func (m *RevokeSubscriptionMsg) Validate() error {
	return validateSubscriptionRef(m.Publisher, m.Subscriber)
}

// DeleteSubscriptionMsg must be signed by the caller, who must be either
// the publisher or the subscriber.
type DeleteSubscriptionMsg struct {
	Publisher  ida.Address `json:"publisher"`
	IndexID    uint32      `json:"index_id"`
	Subscriber ida.Address `json:"subscriber"`
	Caller     ida.Address `json:"caller"`
}

var _ ida.Msg = (*DeleteSubscriptionMsg)(nil)

func (DeleteSubscriptionMsg) Path() string {
	return pathDeleteSubscriptionMsg
}

func (m *DeleteSubscriptionMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *DeleteSubscriptionMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

func (m *DeleteSubscriptionMsg) Validate() error {
	return errors.Append(
		validateSubscriptionRef(m.Publisher, m.Subscriber),
		errors.Field("Caller", m.Caller.Validate(), "caller"),
	)
}

// ClaimMsg can be signed by anyone. Caller is the signer claiming on
// behalf of the subscriber.
type ClaimMsg struct {
	Publisher  ida.Address `json:"publisher"`
	IndexID    uint32      `json:"index_id"`
	Subscriber ida.Address `json:"subscriber"`
	Caller     ida.Address `json:"caller"`
}

var _ ida.Msg = (*ClaimMsg)(nil)

func (ClaimMsg) Path() string {
	return pathClaimMsg
}

func (m *ClaimMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*m)
}

func (m *ClaimMsg) Unmarshal(raw []byte) error {
	return unmarshalMsg(raw, m)
}

func (m *ClaimMsg) Validate() error {
	return errors.Append(
		validateSubscriptionRef(m.Publisher, m.Subscriber),
		errors.Field("Caller", m.Caller.Validate(), "caller"),
	)
}

// UpdateConfigurationMsg patches the distribution configuration.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

var _ ida.Msg = (*UpdateConfigurationMsg)(nil)

func (*UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
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

func validateSubscriptionRef(publisher, subscriber ida.Address) error {
	return errors.Append(
		errors.Field("Publisher", publisher.Validate(), "publisher"),
		errors.Field("Subscriber", validSubscriber(subscriber), "subscriber"),
	)
}

func unmarshalMsg(raw []byte, dst interface{}) error {
	if err := cdc.UnmarshalBinaryBare(raw, dst); err != nil {
		return errors.Wrap(errors.ErrMsg, err.Error())
	}
	return nil
}
