package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/gconf"
	"github.com/iov-one/ida/x/cash"
	"github.com/iov-one/ida/x/distribution"
	"gopkg.in/yaml.v3"
)

// Scenario is a genesis state followed by a list of transactions, each
// signed by a named account.
type Scenario struct {
	Genesis Genesis `yaml:"genesis"`
	Steps   []Step  `yaml:"steps"`
}

// Genesis describes the initial ledger state. Accounts are referenced by
// name or by an encoded address.
type Genesis struct {
	Ticker           string            `yaml:"ticker"`
	Owner            string            `yaml:"owner"`
	MaxSubscriptions uint32            `yaml:"max_subscriptions"`
	Balances         map[string]string `yaml:"balances"`
}

// Step is a single transaction.
type Step struct {
	Signer string `yaml:"signer"`
	Action string `yaml:"action"`
	// Publisher defaults to the signer.
	Publisher  string `yaml:"publisher"`
	Index      uint32 `yaml:"index"`
	Subscriber string `yaml:"subscriber"`
	// Value is the index value, the distributed amount, the units or the
	// amount of coins, depending on the action.
	Value string `yaml:"value"`
	// ExpectError is a part of the error message the step must fail
	// with.
	ExpectError string `yaml:"expect_error"`
}

func loadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read scenario: %s", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "parse scenario %s: %s", path, err)
	}
	return &s, s.Validate()
}

func (s *Scenario) Validate() error {
	var err error
	if !coin.IsCC(s.Genesis.Ticker) {
		err = errors.Append(err, errors.Field("Ticker", errors.ErrCurrency, "invalid ticker %q", s.Genesis.Ticker))
	}
	if s.Genesis.Owner == "" {
		err = errors.Append(err, errors.Field("Owner", errors.ErrEmpty, "owner required"))
	}
	for i, st := range s.Steps {
		if st.Signer == "" {
			err = errors.Append(err, errors.Field(fmt.Sprintf("Steps.%d.Signer", i), errors.ErrEmpty, "signer required"))
		}
		if _, ok := actions[st.Action]; !ok {
			err = errors.Append(err, errors.Field(fmt.Sprintf("Steps.%d.Action", i), errors.ErrInput, "unknown action %q", st.Action))
		}
	}
	return err
}

// Options returns the genesis options of both extensions.
func (g Genesis) Options() (ida.Options, error) {
	owner, err := resolveAccount(g.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	conf := map[string]interface{}{
		"cash": cash.Configuration{Schema: 1, Owner: owner},
		"distribution": distribution.Configuration{
			Schema:           1,
			Owner:            owner,
			Ticker:           g.Ticker,
			MaxSubscriptions: g.MaxSubscriptions,
		},
	}
	accounts := make([]map[string]interface{}, 0, len(g.Balances))
	for _, name := range sortedKeys(g.Balances) {
		addr, err := resolveAccount(name)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, map[string]interface{}{
			"address": addr,
			"coins":   []string{g.Balances[name] + " " + g.Ticker},
		})
	}

	opts := make(ida.Options)
	for key, val := range map[string]interface{}{"conf": conf, "cash": accounts} {
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		opts[key] = raw
	}
	return opts, nil
}

type msgBuilder func(st Step, ticker string, signer, publisher, subscriber ida.Address) (ida.Msg, error)

var actions = map[string]msgBuilder{
	"createIndex": func(st Step, _ string, _, pub, _ ida.Address) (ida.Msg, error) {
		return &distribution.CreateIndexMsg{Publisher: pub, IndexID: st.Index}, nil
	},
	"updateIndex": func(st Step, _ string, _, pub, _ ida.Address) (ida.Msg, error) {
		return &distribution.UpdateIndexMsg{Publisher: pub, IndexID: st.Index, IndexValue: st.Value}, nil
	},
	"distribute": func(st Step, _ string, _, pub, _ ida.Address) (ida.Msg, error) {
		return &distribution.DistributeMsg{Publisher: pub, IndexID: st.Index, Amount: st.Value}, nil
	},
	"updateSubscription": func(st Step, _ string, _, pub, sub ida.Address) (ida.Msg, error) {
		return &distribution.UpdateSubscriptionMsg{Publisher: pub, IndexID: st.Index, Subscriber: sub, Units: st.Value}, nil
	},
	"approve": func(st Step, _ string, _, pub, sub ida.Address) (ida.Msg, error) {
		return &distribution.ApproveSubscriptionMsg{Publisher: pub, IndexID: st.Index, Subscriber: sub}, nil
	},
	"revoke": func(st Step, _ string, _, pub, sub ida.Address) (ida.Msg, error) {
		return &distribution.RevokeSubscriptionMsg{Publisher: pub, IndexID: st.Index, Subscriber: sub}, nil
	},
	"delete": func(st Step, _ string, signer, pub, sub ida.Address) (ida.Msg, error) {
		return &distribution.DeleteSubscriptionMsg{Publisher: pub, IndexID: st.Index, Subscriber: sub, Caller: signer}, nil
	},
	"claim": func(st Step, _ string, signer, pub, sub ida.Address) (ida.Msg, error) {
		return &distribution.ClaimMsg{Publisher: pub, IndexID: st.Index, Subscriber: sub, Caller: signer}, nil
	},
	"mint": func(st Step, ticker string, _, _, sub ida.Address) (ida.Msg, error) {
		amount, err := coin.ParseHumanFormat(st.Value + " " + ticker)
		if err != nil {
			return nil, err
		}
		return &cash.MintMsg{Destination: sub, Amount: &amount}, nil
	},
	"send": func(st Step, ticker string, signer, _, sub ida.Address) (ida.Msg, error) {
		amount, err := coin.ParseHumanFormat(st.Value + " " + ticker)
		if err != nil {
			return nil, err
		}
		return &cash.SendMsg{Source: signer, Destination: sub, Amount: &amount}, nil
	},
}

// StepResult is the outcome of a single step.
type StepResult struct {
	Step   int                  `json:"step"`
	Action string               `json:"action"`
	Data   string               `json:"data,omitempty"`
	Error  string               `json:"error,omitempty"`
	Events []distribution.Event `json:"events,omitempty"`
}

// AccountBalance is the final state of an account.
type AccountBalance struct {
	Name     string      `json:"name"`
	Address  ida.Address `json:"address"`
	Wallet   string      `json:"wallet"`
	Realtime string      `json:"realtime"`
}

// Report is the result of a scenario run.
type Report struct {
	Height   int64            `json:"height"`
	Steps    []StepResult     `json:"steps"`
	Balances []AccountBalance `json:"balances"`
}

// Run executes all steps. A step failing differently than expected stops
// the run.
func (s *Scenario) Run(ctx context.Context, n *node) (*Report, error) {
	report := &Report{}
	accounts := make(map[string]struct{})
	for name := range s.Genesis.Balances {
		accounts[name] = struct{}{}
	}

	for i, st := range s.Steps {
		signer, err := resolveAccount(st.Signer)
		if err != nil {
			return report, errors.Wrapf(err, "step %d", i)
		}
		pubName := st.Publisher
		if pubName == "" {
			pubName = st.Signer
		}
		publisher, err := resolveAccount(pubName)
		if err != nil {
			return report, errors.Wrapf(err, "step %d", i)
		}
		subName := st.Subscriber
		if subName == "" {
			subName = st.Signer
		}
		subscriber, err := resolveAccount(subName)
		if err != nil {
			return report, errors.Wrapf(err, "step %d", i)
		}
		accounts[st.Signer] = struct{}{}
		accounts[subName] = struct{}{}

		msg, err := actions[st.Action](st, s.Genesis.Ticker, signer, publisher, subscriber)
		if err != nil {
			return report, errors.Wrapf(err, "step %d", i)
		}

		n.events.Reset()
		res, err := n.deliver(ctx, msg, st.Signer)
		result := StepResult{Step: i, Action: st.Action, Events: n.events.Events()}
		switch {
		case err != nil:
			result.Error = err.Error()
			if st.ExpectError == "" || !strings.Contains(result.Error, st.ExpectError) {
				report.Steps = append(report.Steps, result)
				return report, errors.Wrapf(err, "step %d %s", i, st.Action)
			}
		case st.ExpectError != "":
			report.Steps = append(report.Steps, result)
			return report, errors.Wrapf(errors.ErrState, "step %d %s: expected error %q", i, st.Action, st.ExpectError)
		case res != nil:
			result.Data = string(res.Data)
		}
		report.Steps = append(report.Steps, result)
	}

	report.Height = n.ledger.Height()
	err := n.ledger.View(func(db ida.ReadOnlyKVStore) error {
		for _, name := range sortedKeys(accounts) {
			b, err := accountBalance(n, db, name)
			if err != nil {
				return err
			}
			report.Balances = append(report.Balances, b)
		}
		return nil
	})
	return report, err
}

// accountBalance reports the balances in the distributed currency.
func accountBalance(n *node, db ida.ReadOnlyKVStore, name string) (AccountBalance, error) {
	addr, err := resolveAccount(name)
	if err != nil {
		return AccountBalance{}, err
	}
	var conf distribution.Configuration
	if err := gconf.Load(db, "distribution", &conf); err != nil {
		return AccountBalance{}, errors.Wrap(err, "distribution configuration")
	}
	coins, err := n.cash.Balance(db, addr)
	if err != nil {
		return AccountBalance{}, err
	}
	wallet, err := coin.AmountOf(coins.Get(conf.Ticker))
	if err != nil {
		return AccountBalance{}, err
	}
	realtime, err := n.ctrl.RealtimeBalance(db, addr)
	if err != nil {
		return AccountBalance{}, err
	}
	return AccountBalance{
		Name:     name,
		Address:  addr,
		Wallet:   wallet.Human(),
		Realtime: realtime.Human(),
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseIndexID parses a command line index ID.
func parseIndexID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "index id %q", s)
	}
	return uint32(id), nil
}
