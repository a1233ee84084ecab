package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

const topN = 5

type total struct {
	name   string
	amount float64
	units  int
}

// Summarize renders the plain-text report for the transactions in rng.
// txs must already be filtered; an empty slice yields the "no transactions"
// sentence.
func Summarize(rng Range, txs []Transaction) string {
	if len(txs) == 0 {
		return fmt.Sprintf("No transactions found between %s and %s.", rng.StartKey(), rng.EndKey())
	}

	var revenue float64
	var units int
	for _, tx := range txs {
		revenue += tx.Amount
		units += tx.Quantity
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Sales Summary: %s\n\n", rng.Heading())

	sb.WriteString("Sales Performance\n")
	fmt.Fprintf(&sb, "Total revenue: %s\n", money(revenue))
	fmt.Fprintf(&sb, "Transactions: %s\n", humanize.Comma(int64(len(txs))))
	fmt.Fprintf(&sb, "Units sold: %s\n", humanize.Comma(int64(units)))
	fmt.Fprintf(&sb, "Average transaction: %s\n", money(revenue/float64(len(txs))))

	writeSection(&sb, "Top products by revenue", groupBy(txs, func(tx Transaction) string { return tx.Product }), topN, true)
	writeSection(&sb, "Top customers by revenue", groupBy(txs, func(tx Transaction) string { return tx.Customer }), topN, false)
	writeSection(&sb, "Revenue by region", groupBy(txs, func(tx Transaction) string { return tx.Region }), 0, false)
	writeSection(&sb, "Revenue by payment mode", groupBy(txs, func(tx Transaction) string { return tx.PaymentMode }), 0, false)

	return strings.TrimRight(sb.String(), "\n")
}

// Save writes text to <dir>/report_<start>_to_<end>.txt, replacing any
// earlier report for the same range in dir, and returns the path. Callers
// give each upload its own dir.
func Save(dir string, rng Range, text string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("report_%s_to_%s.txt", rng.StartKey(), rng.EndKey()))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// groupBy sums revenue and units per key, ignoring blank keys, sorted by
// revenue descending then name.
func groupBy(txs []Transaction, key func(Transaction) string) []total {
	idx := make(map[string]int)
	var totals []total
	for _, tx := range txs {
		k := key(tx)
		if k == "" {
			continue
		}
		i, ok := idx[k]
		if !ok {
			i = len(totals)
			idx[k] = i
			totals = append(totals, total{name: k})
		}
		totals[i].amount += tx.Amount
		totals[i].units += tx.Quantity
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].amount != totals[j].amount {
			return totals[i].amount > totals[j].amount
		}
		return totals[i].name < totals[j].name
	})
	return totals
}

func writeSection(sb *strings.Builder, title string, totals []total, limit int, withUnits bool) {
	if len(totals) == 0 {
		return
	}
	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	fmt.Fprintf(sb, "\n%s\n", title)
	for i, t := range totals {
		if withUnits {
			fmt.Fprintf(sb, "%d. %s: %s (%s units)\n", i+1, t.name, money(t.amount), humanize.Comma(int64(t.units)))
			continue
		}
		fmt.Fprintf(sb, "%d. %s: %s\n", i+1, t.name, money(t.amount))
	}
}

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// Generate reads transactions from r and summarises those within rng. It
// also returns how many transactions the summary covers.
func Generate(r io.Reader, rng Range) (string, int, error) {
	txs, err := ReadTransactions(r)
	if err != nil {
		return "", 0, err
	}
	txs = rng.Filter(txs)
	return Summarize(rng, txs), len(txs), nil
}
