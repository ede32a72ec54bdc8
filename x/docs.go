/*
Package x contains the extensions of the ledger.

Extensions implement common functionality (Handler, Decorator,
Initializer, etc.) and are combined together by the app package.
x/cash is the token ledger, x/distribution is the instant distribution
agreement built on top of it.
*/
package x
