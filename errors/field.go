package errors

import "fmt"

// Field returns an error instance that wraps the original error with
// additional information. It also annotate the error with a field name.
// Use this function when a value of a single field is invalid, for example
// during a message validation.
func Field(fieldName string, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &fieldError{
		Field: fieldName,
		Err:   Wrapf(err, format, args...),
	}
}

type fieldError struct {
	Field string
	Err   error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Err.Error())
}

func (e *fieldError) Cause() error {
	return e.Err
}

// FieldErrors returns all errors that were created for given field name.
// Multi errors are inspected.
func FieldErrors(err error, fieldName string) []error {
	if err == nil {
		return nil
	}
	if m, ok := err.(*multiErr); ok {
		var res []error
		for _, e := range m.errs {
			res = append(res, FieldErrors(e, fieldName)...)
		}
		return res
	}
	for {
		if f, ok := err.(*fieldError); ok && f.Field == fieldName {
			return []error{f}
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		if err = c.Cause(); err == nil {
			return nil
		}
	}
}
