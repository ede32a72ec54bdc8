package distribution

import (
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
)

// Accrued returns the value owed to a subscription holding units since it
// was settled at the synced index value.
func Accrued(indexValue, synced, units coin.Amount) (coin.Amount, error) {
	growth, err := indexValue.Sub(synced)
	if err != nil {
		return coin.Amount{}, errors.Wrap(errors.ErrState, "subscription synced ahead of its index")
	}
	return growth.Mul(units)
}

// Settle brings the subscription up to given index value. The value
// accrued by an approved subscription is returned as payout. The value
// accrued by a pending subscription is added to its pending distribution
// and the payout is zero. The subscription is modified in place.
func Settle(sub *Subscription, indexValue coin.Amount) (coin.Amount, error) {
	delta, err := Accrued(indexValue, sub.IndexValue, sub.Units)
	if err != nil {
		return coin.Amount{}, err
	}
	sub.IndexValue = indexValue
	if sub.Approved {
		return delta, nil
	}
	pending, err := sub.PendingDistribution.Add(delta)
	if err != nil {
		return coin.Amount{}, err
	}
	sub.PendingDistribution = pending
	return coin.Amount{}, nil
}

// DistributionOf splits amount over all units of the index. It returns the
// index value growth per unit and the amount actually distributed, which
// is never greater than the requested amount. Nothing is distributed when
// there are no units.
func DistributionOf(amount, totalUnits coin.Amount) (indexDelta, actual coin.Amount, err error) {
	if totalUnits.IsZero() {
		return coin.Amount{}, coin.Amount{}, nil
	}
	if indexDelta, err = amount.Div(totalUnits); err != nil {
		return coin.Amount{}, coin.Amount{}, err
	}
	if actual, err = indexDelta.Mul(totalUnits); err != nil {
		return coin.Amount{}, coin.Amount{}, err
	}
	return indexDelta, actual, nil
}

// Outflow returns the amount a publisher pays when the index value grows
// from oldValue to newValue.
func Outflow(oldValue, newValue, totalUnits coin.Amount) (coin.Amount, error) {
	growth, err := newValue.Sub(oldValue)
	if err != nil {
		return coin.Amount{}, errors.Wrapf(ErrIndexValueMustIncrease, "%s is lower than %s", newValue, oldValue)
	}
	return growth.Mul(totalUnits)
}

// MoveUnits updates the index totals for a subscription changing from
// (oldUnits, wasApproved) to (newUnits, approved).
func MoveUnits(idx *Index, oldUnits coin.Amount, wasApproved bool, newUnits coin.Amount, approved bool) error {
	var err error
	if wasApproved {
		idx.TotalUnitsApproved, err = idx.TotalUnitsApproved.Sub(oldUnits)
	} else {
		idx.TotalUnitsPending, err = idx.TotalUnitsPending.Sub(oldUnits)
	}
	if err != nil {
		return errors.Wrap(errors.ErrState, "index units total below subscription units")
	}
	if approved {
		idx.TotalUnitsApproved, err = idx.TotalUnitsApproved.Add(newUnits)
	} else {
		idx.TotalUnitsPending, err = idx.TotalUnitsPending.Add(newUnits)
	}
	return err
}

// PendingTotal returns the value owed to all pending subscriptions of the
// index, both settled and accrued since their last settlement.
func PendingTotal(indexValue coin.Amount, subs []*Subscription) (coin.Amount, error) {
	var total coin.Amount
	for _, s := range subs {
		if s.Approved {
			continue
		}
		delta, err := Accrued(indexValue, s.IndexValue, s.Units)
		if err != nil {
			return coin.Amount{}, err
		}
		if total, err = total.Add(delta); err != nil {
			return coin.Amount{}, err
		}
		if total, err = total.Add(s.PendingDistribution); err != nil {
			return coin.Amount{}, err
		}
	}
	return total, nil
}
