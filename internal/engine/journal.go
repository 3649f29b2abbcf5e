package engine

// Journal receives the engine's event stream: one row per tick and one per
// applied rewrite. The engine never reads it back; it exists for post-run
// inspection. Implementations live outside this package; NopJournal is the
// default.
type Journal interface {
	RunStarted(run string, rules int) error
	RewriteApplied(run string, tick int, ruleName string, cellsTouched int) error
	TickFinished(run string, tick int, applications, woken int) error
	RunFinished(run string, ticks int) error
}

// NopJournal discards everything.
type NopJournal struct{}

func (NopJournal) RunStarted(string, int) error                  { return nil }
func (NopJournal) RewriteApplied(string, int, string, int) error { return nil }
func (NopJournal) TickFinished(string, int, int, int) error      { return nil }
func (NopJournal) RunFinished(string, int) error                 { return nil }
