package cash

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/gconf"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use ida.Address, so address in hex, not base64
type GenesisAccount struct {
	Address ida.Address `json:"address"`
	Coins   coin.Coins  `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ ida.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts ida.Options, kv ida.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	bucket := NewBucket()
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		wallet, err := WalletWith(acct.Address, acct.Coins...)
		if err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := bucket.Save(kv, wallet); err != nil {
			return err
		}
	}

	var conf Configuration
	switch err := gconf.InitConfig(kv, opts, confPkg, &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
		// Configuration is optional.
	default:
		return errors.Wrap(err, "init configuration")
	}
	return nil
}
