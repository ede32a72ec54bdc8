/*
Package cash defines a simple token ledger used to fund and settle
distributions.

There is no logic in the coins (tokens), except that the balance
of any coin may not go below zero. Thus, this implementation is
referred to as cash. Simple and safe.

A wallet may reserve part of its balance for outbound commitments. Reserved
value cannot be moved until it is released, so the available balance of a
wallet is its balance reduced by all reservations.
*/
package cash
