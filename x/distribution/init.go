package distribution

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/gconf"
)

const optKey = "distribution"

// GenesisIndex declares an index created at genesis.
type GenesisIndex struct {
	Publisher ida.Address `json:"publisher"`
	IndexID   uint32      `json:"index_id"`
}

// Initializer loads the configuration and the genesis indexes.
type Initializer struct{}

var _ ida.Initializer = Initializer{}

func (Initializer) FromGenesis(opts ida.Options, kv ida.KVStore) error {
	var conf Configuration
	switch err := gconf.InitConfig(kv, opts, confPkg, &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
	default:
		return errors.Wrap(err, "init configuration")
	}

	var genesis []GenesisIndex
	if err := opts.ReadOptions(optKey, &genesis); err != nil {
		return err
	}
	bucket := NewIndexBucket()
	for i, g := range genesis {
		if err := g.Publisher.Validate(); err != nil {
			return errors.Wrapf(err, "index %d publisher", i)
		}
		existing, err := bucket.GetIndex(kv, g.Publisher, g.IndexID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.Wrapf(ErrIndexExists, "index %d of %s", g.IndexID, g.Publisher)
		}
		idx := &Index{Schema: 1, Publisher: g.Publisher, ID: g.IndexID}
		if err := bucket.SaveIndex(kv, idx); err != nil {
			return errors.Wrapf(err, "index %d", i)
		}
	}
	return nil
}
