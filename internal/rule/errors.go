package rule

import (
	"errors"
	"fmt"

	"github.com/pictomat/pictomat/internal/grid"
)

// MalformedRuleError reports a before/after pair that cannot be compiled
// into a rule. Rule names the offending rule, Cell the first pixel involved
// when one is known.
type MalformedRuleError struct {
	Rule   string
	Cell   *grid.Point
	Detail string
}

func (e *MalformedRuleError) Error() string {
	if e.Cell != nil {
		return fmt.Sprintf("malformed rule %q at %v: %s", e.Rule, *e.Cell, e.Detail)
	}
	return fmt.Sprintf("malformed rule %q: %s", e.Rule, e.Detail)
}

// IsMalformedRule reports whether err is a rule compilation failure.
func IsMalformedRule(err error) bool {
	var m *MalformedRuleError
	return errors.As(err, &m)
}

func malformed(rule, format string, args ...any) error {
	return &MalformedRuleError{Rule: rule, Detail: fmt.Sprintf(format, args...)}
}

func malformedAt(rule string, cell grid.Point, format string, args ...any) error {
	return &MalformedRuleError{Rule: rule, Cell: &cell, Detail: fmt.Sprintf(format, args...)}
}
