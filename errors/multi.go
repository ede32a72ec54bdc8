package errors

import (
	"fmt"
	"strings"
)

// Append joins errors together into a single error. Nil values are ignored.
// When only one non nil error is given it is returned unchanged.
//
// The resulting error matches a root error kind if any of the joined errors
// does.
func Append(errs ...error) error {
	var all []error
	for _, e := range errs {
		if e == nil {
			continue
		}
		if m, ok := e.(*multiErr); ok {
			all = append(all, m.errs...)
			continue
		}
		all = append(all, e)
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	default:
		return &multiErr{errs: all}
	}
}

// multiErr is the result of joining several errors together.
type multiErr struct {
	errs []error
}

func (m *multiErr) Error() string {
	points := make([]string, len(m.errs))
	for i, err := range m.errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m.errs), strings.Join(points, "\n\t"))
}
