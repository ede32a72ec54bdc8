/*
Package ida defines the common interfaces that tie together the packages of
the instant distribution ledger, as well as implementations of some of the
simpler components (when interfaces would be too much overhead).

The ledger is embedded by a host that dispatches authenticated calls. The host
passes a context.Context between the router, decorators and handlers. To do
so, this package defines common keys to store info in the context, such as
the logger and the call height. Each extension may add its own keys to enrich
the context with specific data.

There should exist two functions for every XYZ of type T that we want to
support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. height).
*/
package ida
