// Package report turns an uploaded sales CSV into a plain-text summary for a
// date range.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Transaction is one normalised sales row.
type Transaction struct {
	Date        time.Time
	Product     string
	Customer    string
	Region      string
	PaymentMode string
	Quantity    int
	Amount      float64
}

// ErrNoDateColumn is returned when no header matches a known date alias.
var ErrNoDateColumn = errors.New("report: no date column found")

// Header aliases, compared case-insensitively after trimming.
var columnAliases = map[string][]string{
	"date":     {"date", "order date", "order_date", "created_at"},
	"product":  {"product", "item", "sku", "product name", "product_name"},
	"customer": {"customer", "client", "buyer", "customer name", "customer_name"},
	"region":   {"region", "region name", "area", "zone"},
	"payment":  {"payment mode", "payment_mode", "paymentmethod", "payment method", "payment"},
	"quantity": {"quantity", "qty", "units"},
	"amount":   {"amount", "sales", "total", "revenue", "price", "grand total", "grand_total"},
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// ReadTransactions parses CSV data with a header row. Rows whose date cannot
// be parsed are skipped. A missing quantity counts as one unit and a missing
// or malformed amount as zero.
func ReadTransactions(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := mapColumns(header)
	if _, ok := cols["date"]; !ok {
		return nil, ErrNoDateColumn
	}

	var txs []Transaction
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		date, ok := parseDate(field(rec, cols, "date"))
		if !ok {
			continue
		}
		txs = append(txs, Transaction{
			Date:        date,
			Product:     field(rec, cols, "product"),
			Customer:    field(rec, cols, "customer"),
			Region:      field(rec, cols, "region"),
			PaymentMode: field(rec, cols, "payment"),
			Quantity:    parseQuantity(field(rec, cols, "quantity"), cols),
			Amount:      parseAmount(field(rec, cols, "amount")),
		})
	}
	return txs, nil
}

// mapColumns resolves each logical column to the first matching header index.
func mapColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	cols := make(map[string]int)
	for name, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				cols[name] = i
				break
			}
		}
	}
	return cols
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseQuantity(s string, cols map[string]int) int {
	if _, ok := cols["quantity"]; !ok {
		return 1
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 1
}

func parseAmount(s string) float64 {
	s = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", "₹", "").Replace(s)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
