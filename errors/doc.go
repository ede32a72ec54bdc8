/*
Package errors implements the error kinds used by the ledger.

Every error returned by the ledger should wrap one of the root errors
registered with Register. A root error carries a unique code and a short
description. Packages declare their own root errors when none of the common
ones fits, for example x/distribution declares ErrIndexExists.

Use Wrap or Wrapf to add context to an error at the point it is returned. The
first wrap attaches a stack trace. Test the kind of an error with the Is
method of the root error:

	if errors.ErrNotFound.Is(err) {
		...
	}

Once you have an error, fmt verbs expose more context:
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
