// Package export renders transactions as CSV text.
package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"time"

	"hamanets/internal/core"
)

const dateLayout = "02.01.2006"

// Labels holds the localizable strings of the export.
type Labels struct {
	Header  [6]string
	Income  string
	Expense string
}

var (
	EnglishLabels = Labels{
		Header:  [6]string{"Date", "Type", "Category", "Description", "Amount", "Currency"},
		Income:  "Income",
		Expense: "Expense",
	}
	UkrainianLabels = Labels{
		Header:  [6]string{"Дата", "Тип", "Категорія", "Опис", "Сума", "Валюта"},
		Income:  "Дохід",
		Expense: "Витрата",
	}
)

// LabelsFor picks labels by language code, falling back to English.
func LabelsFor(lang string) Labels {
	if strings.HasPrefix(strings.ToLower(lang), "uk") {
		return UkrainianLabels
	}
	return EnglishLabels
}

type options struct {
	labels Labels
	quote  bool
	loc    *time.Location
}

func newOptions(opts []Option) options {
	o := options{labels: EnglishLabels}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type Option func(*options)

// WithLabels replaces the header and type labels.
func WithLabels(l Labels) Option { return func(o *options) { o.labels = l } }

// WithQuoting encodes fields per RFC 4180 so descriptions may contain
// commas, quotes and newlines.
func WithQuoting() Option { return func(o *options) { o.quote = true } }

// WithLocation renders dates in loc, the location day windows are cut in.
// Without it each date keeps its own location.
func WithLocation(loc *time.Location) Option { return func(o *options) { o.loc = loc } }

// ToCSV renders a header line plus one line per transaction, in input
// order. Lines are joined by "\n" with no trailing newline. Without
// WithQuoting fields are joined as-is, so a comma inside a description
// shifts the remaining columns of that row.
func ToCSV(txns []core.Transaction, categories []core.Category, opts ...Option) string {
	o := newOptions(opts)
	rows := o.rows(txns, categories)
	if o.quote {
		return quoted(rows)
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = strings.Join(r, ",")
	}
	return strings.Join(lines, "\n")
}

// Rows returns the header and data rows as fields, before joining.
// WithQuoting has no effect here.
func Rows(txns []core.Transaction, categories []core.Category, opts ...Option) [][]string {
	o := newOptions(opts)
	return o.rows(txns, categories)
}

func (o options) rows(txns []core.Transaction, categories []core.Category) [][]string {
	l := o.labels
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	rows := make([][]string, 0, len(txns)+1)
	rows = append(rows, l.Header[:])
	for _, tx := range txns {
		typ := l.Expense
		if tx.Type == core.Income {
			typ = l.Income
		}
		cat, ok := names[tx.CategoryID]
		if !ok || cat == "" {
			cat = tx.CategoryID
		}
		at := tx.Date
		if o.loc != nil {
			at = at.In(o.loc)
		}
		rows = append(rows, []string{
			at.Format(dateLayout),
			typ,
			cat,
			tx.Description,
			tx.Amount.StringFixed(),
			string(tx.Currency),
		})
	}
	return rows
}

func quoted(rows [][]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// WriteAll only fails on writer errors, which a bytes.Buffer never returns.
	_ = w.WriteAll(rows)
	return strings.TrimSuffix(buf.String(), "\n")
}
