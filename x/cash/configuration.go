package cash

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/gconf"
)

const confPkg = "cash"

// Configuration of the ledger. Owner is allowed to mint new coins and to
// update the configuration.
type Configuration struct {
	Schema uint32      `json:"schema"`
	Owner  ida.Address `json:"owner"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() ida.Address {
	return c.Owner
}

func (c *Configuration) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	var res Configuration
	if err := cdc.UnmarshalBinaryBare(raw, &res); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*c = res
	return nil
}

func (c *Configuration) Validate() error {
	if c.Schema == 0 {
		return errors.Field("Schema", errors.ErrModel, "missing schema")
	}
	// owner field is optional
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Field("Owner", err, "owner address")
		}
	}
	return nil
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
