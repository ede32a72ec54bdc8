/*
Package distribution implements the instant distribution agreement.

A publisher creates an index and assigns units of it to subscribers. Each
time the publisher distributes value, the index value grows by the amount
per unit and the publisher pays the whole distributed amount into the
index account. Subscribers are not paid eagerly. Every subscription keeps
the index value it was last settled at, and the value owed to it is the
index growth since then multiplied by its units.

An approved subscription sees the owed value as part of its realtime
balance and is paid whenever a write touches it. A pending subscription
accrues the owed value until it is claimed or approved.

All operations are atomic. Any failure, including a failing counterparty
callback, leaves the store unchanged.
*/
package distribution
