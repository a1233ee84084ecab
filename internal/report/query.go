package report

import (
	"strings"
	"time"
)

// Query selects transactions for the sales data feed. Every field is
// optional; a zero date leaves that side of the range open.
type Query struct {
	Start    time.Time
	End      time.Time
	Product  string
	Customer string
}

// ParseQuery builds a Query from raw request values. Empty dates are open
// bounds, unlike ParseRange.
func ParseQuery(start, end, product, customer string) (Query, error) {
	q := Query{
		Product:  strings.ToLower(strings.TrimSpace(product)),
		Customer: strings.ToLower(strings.TrimSpace(customer)),
	}
	var err error
	if start != "" {
		if q.Start, err = time.Parse(dateLayout, start); err != nil {
			return Query{}, ErrInvalidDate
		}
	}
	if end != "" {
		if q.End, err = time.Parse(dateLayout, end); err != nil {
			return Query{}, ErrInvalidDate
		}
	}
	return q, nil
}

// Match reports whether tx passes every filter. Product and customer match
// case-insensitively on substrings.
func (q Query) Match(tx Transaction) bool {
	if !q.Start.IsZero() && tx.Date.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && tx.Date.After(q.End) {
		return false
	}
	if q.Product != "" && !strings.Contains(strings.ToLower(tx.Product), q.Product) {
		return false
	}
	if q.Customer != "" && !strings.Contains(strings.ToLower(tx.Customer), q.Customer) {
		return false
	}
	return true
}

// Apply returns the transactions matching q, in input order.
func (q Query) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if q.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}
