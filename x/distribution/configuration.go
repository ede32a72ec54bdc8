package distribution

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/gconf"
)

const confPkg = "distribution"

// Configuration of the distribution extension.
type Configuration struct {
	Schema uint32      `json:"schema"`
	Owner  ida.Address `json:"owner"`
	// Ticker is the currency distributed by all indexes.
	Ticker string `json:"ticker"`
	// MaxSubscriptions limits the number of live subscriptions a single
	// subscriber can hold. Zero means no limit.
	MaxSubscriptions uint32 `json:"max_subscriptions"`
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
	var err error
	if c.Schema == 0 {
		err = errors.Append(err, errors.Field("Schema", errors.ErrModel, "missing schema"))
	}
	if len(c.Owner) != 0 {
		err = errors.Append(err, errors.Field("Owner", c.Owner.Validate(), "owner address"))
	}
	if !coin.IsCC(c.Ticker) {
		err = errors.Append(err, errors.Field("Ticker", errors.ErrCurrency, "invalid ticker %q", c.Ticker))
	}
	return err
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
