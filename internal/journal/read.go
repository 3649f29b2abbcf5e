package journal

import (
	"context"
)

// RunSummary is one row of the runs table.
type RunSummary struct {
	Token    string
	Rules    int
	Ticks    int
	Finished bool
}

// Runs lists recorded runs, newest token first. UUIDv7 tokens sort by
// creation time, so token order is creation order.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token, rules, COALESCE(ticks, 0), finished_at IS NOT NULL
		 FROM runs ORDER BY token DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.Token, &r.Rules, &r.Ticks, &r.Finished); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TickRow is one row of the ticks table.
type TickRow struct {
	Tick         int
	Applications int
	Woken        int
}

// Ticks lists a run's ticks in order.
func (s *Store) Ticks(ctx context.Context, run string) ([]TickRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, applications, woken FROM ticks
		 WHERE run_token = ? ORDER BY tick`, run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TickRow
	for rows.Next() {
		var t TickRow
		if err := rows.Scan(&t.Tick, &t.Applications, &t.Woken); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RewriteRow is one row of the rewrites table.
type RewriteRow struct {
	Tick         int
	Rule         string
	CellsTouched int
}

// Rewrites lists a run's applied rewrites in application order.
func (s *Store) Rewrites(ctx context.Context, run string) ([]RewriteRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, rule, cells_touched FROM rewrites
		 WHERE run_token = ? ORDER BY id`, run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RewriteRow
	for rows.Next() {
		var r RewriteRow
		if err := rows.Scan(&r.Tick, &r.Rule, &r.CellsTouched); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
