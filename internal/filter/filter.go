// Package filter selects transactions matching report predicates.
package filter

import (
	"fmt"
	"regexp"
	"time"

	"finreport/internal/core"
)

// Window is an inclusive range of payment dates.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether day falls inside the window.
func (w Window) Contains(day time.Time) bool {
	d := core.Day(day)
	return !d.Before(core.Day(w.From)) && !d.After(core.Day(w.To))
}

// MonthWindow spans from the first day of ref's month to ref.
func MonthWindow(ref time.Time) Window {
	y, m, _ := ref.Date()
	return Window{
		From: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
		To:   core.Day(ref),
	}
}

// MonthsBackWindow spans the n months ending at ref. A start day missing
// from the shorter month is clamped to that month's last day.
func MonthsBackWindow(ref time.Time, n int) Window {
	to := core.Day(ref)
	y, m, d := to.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return Window{
		From: time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC),
		To:   to,
	}
}

// Criteria is the predicate set of a report. Zero fields do not filter,
// except Status which defaults to core.StatusOK.
type Criteria struct {
	Status      string
	Window      *Window
	Category    string
	DebitsOnly  bool
	Description *regexp.Regexp
}

// Apply returns the transactions matching c. The input is not modified.
//
// When a window is set every payment date is parsed before anything is
// selected; one malformed date fails the whole call with core.ErrInvalidDate
// instead of being skipped.
func Apply(txs []core.Transaction, c Criteria) ([]core.Transaction, error) {
	status := c.Status
	if status == "" {
		status = core.StatusOK
	}

	var days []time.Time
	if c.Window != nil {
		days = make([]time.Time, len(txs))
		for i, tx := range txs {
			d, err := core.ParseDate(tx.PaymentDate)
			if err != nil {
				return nil, fmt.Errorf("row %d payment date: %w", i+1, err)
			}
			days[i] = d
		}
	}

	out := make([]core.Transaction, 0, len(txs))
	for i, tx := range txs {
		if tx.Status != status {
			continue
		}
		if c.Window != nil && !c.Window.Contains(days[i]) {
			continue
		}
		if c.Category != "" && tx.Category != c.Category {
			continue
		}
		if c.DebitsOnly && !tx.IsDebit() {
			continue
		}
		if c.Description != nil && !matchesPrefix(c.Description, tx.Description) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// matchesPrefix reports whether re matches at the start of s.
func matchesPrefix(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}
