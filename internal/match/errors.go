package match

import (
	"errors"
	"fmt"
)

// BudgetError reports that a search examined more candidate pairings than
// its budget allows. The world is untouched when this is returned; the
// caller decides whether to abort the tick or the whole run.
type BudgetError struct {
	Rule  string
	Limit int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("match budget of %d exhausted searching rule %q", e.Limit, e.Rule)
}

// IsBudgetExceeded reports whether err is a match budget failure.
func IsBudgetExceeded(err error) bool {
	var b *BudgetError
	return errors.As(err, &b)
}
