package distribution

import (
	"testing"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/app"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/gconf"
	"github.com/iov-one/ida/idatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlers(t *testing.T) {
	publisher := idatest.NewCondition()
	subscriber := idatest.NewCondition()
	proxy := idatest.NewCondition()
	pub, sub := publisher.Address(), subscriber.Address()

	cases := map[string]struct {
		signer         ida.Condition
		msg            ida.Msg
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
		wantData       string
	}{
		"create index": {
			signer: publisher,
			msg:    &CreateIndexMsg{Publisher: pub, IndexID: 2},
		},
		"create index not signed by the publisher": {
			signer:         subscriber,
			msg:            &CreateIndexMsg{Publisher: pub, IndexID: 2},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"create existing index": {
			signer:         publisher,
			msg:            &CreateIndexMsg{Publisher: pub, IndexID: 1},
			wantDeliverErr: ErrIndexExists,
		},
		"update index": {
			signer: publisher,
			msg:    &UpdateIndexMsg{Publisher: pub, IndexID: 1, IndexValue: "3"},
		},
		"decrease index": {
			signer:         publisher,
			msg:            &UpdateIndexMsg{Publisher: pub, IndexID: 1, IndexValue: "0"},
			wantDeliverErr: ErrIndexValueMustIncrease,
		},
		"distribute": {
			signer:   publisher,
			msg:      &DistributeMsg{Publisher: pub, IndexID: 1, Amount: "2.5"},
			wantData: "2400000000",
		},
		"distribute too much": {
			signer:         publisher,
			msg:            &DistributeMsg{Publisher: pub, IndexID: 1, Amount: "1000"},
			wantDeliverErr: ErrInsufficientBalance,
		},
		"subscribe": {
			signer: publisher,
			msg:    &UpdateSubscriptionMsg{Publisher: pub, IndexID: 1, Subscriber: proxy.Address(), Units: "1"},
		},
		"subscribe signed by the subscriber": {
			signer:         subscriber,
			msg:            &UpdateSubscriptionMsg{Publisher: pub, IndexID: 1, Subscriber: sub, Units: "1"},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"approve": {
			signer: subscriber,
			msg:    &ApproveSubscriptionMsg{Publisher: pub, IndexID: 1, Subscriber: sub},
		},
		"approve signed by the publisher": {
			signer:         publisher,
			msg:            &ApproveSubscriptionMsg{Publisher: pub, IndexID: 1, Subscriber: sub},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"revoke pending": {
			signer:         subscriber,
			msg:            &RevokeSubscriptionMsg{Publisher: pub, IndexID: 1, Subscriber: sub},
			wantDeliverErr: ErrNotApproved,
		},
		"claim by proxy": {
			signer: proxy,
			msg:    &ClaimMsg{Publisher: pub, IndexID: 1, Subscriber: sub, Caller: proxy.Address()},
		},
		"claim with a caller that did not sign": {
			signer:         proxy,
			msg:            &ClaimMsg{Publisher: pub, IndexID: 1, Subscriber: sub, Caller: pub},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"delete by the subscriber": {
			signer: subscriber,
			msg:    &DeleteSubscriptionMsg{Publisher: pub, IndexID: 1, Subscriber: sub, Caller: sub},
		},
		"delete by a stranger": {
			signer:         proxy,
			msg:            &DeleteSubscriptionMsg{Publisher: pub, IndexID: 1, Subscriber: sub, Caller: proxy.Address()},
			wantDeliverErr: ErrNotAllowed,
		},
		"invalid message": {
			signer:         publisher,
			msg:            &UpdateSubscriptionMsg{Publisher: pub, IndexID: 1, Subscriber: sub, Units: "x"},
			wantCheckErr:   errors.ErrInput,
			wantDeliverErr: errors.ErrInput,
		},
		"configuration by the owner": {
			signer: publisher,
			msg:    &UpdateConfigurationMsg{Patch: &Configuration{Schema: 1, Ticker: "ETH"}},
		},
		"configuration by someone else": {
			signer:         subscriber,
			msg:            &UpdateConfigurationMsg{Patch: &Configuration{Schema: 1, Ticker: "ETH"}},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)
			e.publisher = pub
			require.NoError(t, gconf.Save(e.db, confPkg, &Configuration{Schema: 1, Owner: pub, Ticker: ticker}))
			e.mint(pub, "10")
			e.createIndex(1)
			_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, pub, 1, sub, human(t, "0.8"))
			require.NoError(t, err)
			_, err = e.ctrl.UpdateIndex(e.ctx, e.db, pub, 1, coin.NewAmount(1))
			require.NoError(t, err)

			rt := app.NewRouter()
			RegisterRoutes(rt, &idatest.Auth{Signer: tc.signer}, e.ctrl)
			tx := &idatest.Tx{Msg: tc.msg}

			if _, err := rt.Check(e.ctx, e.db, tx); !tc.wantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			res, err := rt.Deliver(e.ctx, e.db, tx)
			if !tc.wantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if err == nil && tc.wantData != "" {
				assert.Equal(t, tc.wantData, string(res.Data))
			}
		})
	}
}

func TestRegisterRoutes(t *testing.T) {
	rt := app.NewRouter()
	RegisterRoutes(rt, &idatest.Auth{}, NewController(nil))
	assert.ElementsMatch(t, []string{
		pathCreateIndexMsg,
		pathUpdateIndexMsg,
		pathDistributeMsg,
		pathUpdateSubscriptionMsg,
		pathApproveSubscriptionMsg,
		pathRevokeSubscriptionMsg,
		pathDeleteSubscriptionMsg,
		pathClaimMsg,
		pathUpdateConfigurationMsg,
	}, rt.Paths())
}
