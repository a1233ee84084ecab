package report

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate   = errors.New("report: invalid date, want YYYY-MM-DD")
	ErrRangeReversed = errors.New("report: end date before start date")
)

// Range is an inclusive span of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange parses two YYYY-MM-DD dates.
func ParseRange(start, end string) (Range, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return Range{}, ErrInvalidDate
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return Range{}, ErrInvalidDate
	}
	if e.Before(s) {
		return Range{}, ErrRangeReversed
	}
	return Range{Start: s, End: e}, nil
}

// Contains reports whether t falls on a day within the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// StartKey and EndKey are the YYYY-MM-DD forms used in file names.
func (r Range) StartKey() string { return r.Start.Format(dateLayout) }
func (r Range) EndKey() string   { return r.End.Format(dateLayout) }

// Heading renders the range as "January 02, 2006 to February 03, 2006".
func (r Range) Heading() string {
	return fmt.Sprintf("%s to %s", r.Start.Format("January 02, 2006"), r.End.Format("January 02, 2006"))
}

// Filter returns the transactions that fall within r.
func (r Range) Filter(txs []Transaction) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if r.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}
