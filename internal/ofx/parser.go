// Package ofx converts OFX/QFX bank and credit card statements into
// ledger transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"hamanets/internal/core"
	"hamanets/internal/log"
)

// TagPrefix marks the tag carrying the bank's transaction id.
const TagPrefix = "fitid:"

const maxDescription = 200

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser reads OFX statements.
type Parser struct {
	// CategoryID is assigned to every imported transaction.
	CategoryID string
	logger     *log.Logger
}

func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Discard()
	}
	return &Parser{
		CategoryID: core.FallbackCategoryID,
		logger:     logger.WithComponent(log.ComponentImport),
	}
}

// preprocess fixes formatting issues that real bank exports carry.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRe.ReplaceAllString(content, "$1>")
}

// Parse returns the transactions of every bank and credit card statement
// in r, in file order. Zero-amount entries are skipped.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]core.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse OFX file: %v", core.ErrInvalidInput, err)
	}

	var (
		out                []core.Transaction
		bankStmts, ccStmts int
	)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			out = append(out, p.convertList(stmt.BankTranList, stmt.CurDef)...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			out = append(out, p.convertList(stmt.BankTranList, stmt.CurDef)...)
		}
	}

	p.logger.InfoContext(ctx, "Parsed OFX file",
		log.FieldCount, len(out),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)
	return out, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, cur ofxgo.CurrSymbol) []core.Transaction {
	if list == nil {
		return nil
	}
	// an unset CURDEF reads as XXX; the ledger then applies its default
	currency := core.Currency(strings.ToUpper(cur.String()))
	if currency == "XXX" {
		currency = ""
	}
	out := make([]core.Transaction, 0, len(list.Transactions))
	for _, t := range list.Transactions {
		tx, ok := p.convert(t, currency)
		if ok {
			out = append(out, tx)
		}
	}
	return out
}

func (p *Parser) convert(t ofxgo.Transaction, currency core.Currency) (core.Transaction, bool) {
	d, err := decimal.NewFromString(t.TrnAmt.FloatString(2))
	if err != nil || d.IsZero() {
		return core.Transaction{}, false
	}
	amount := core.NewMoney(d)
	typ := core.Income
	if amount.IsNegative() {
		typ = core.Expense
		amount = core.Money{}.Sub(amount)
	}
	tx := core.Transaction{
		Type:        typ,
		Amount:      amount,
		Currency:    currency,
		CategoryID:  p.CategoryID,
		Description: description(t),
		Date:        t.DtPosted.Time,
	}
	if id := strings.TrimSpace(string(t.FiTID)); id != "" {
		tx.Tags = []string{TagPrefix + id}
	}
	return tx, true
}

// description prefers the payee, then NAME, then MEMO.
func description(t ofxgo.Transaction) string {
	var s string
	switch {
	case t.Payee != nil && t.Payee.Name != "":
		s = string(t.Payee.Name)
	case t.Name != "":
		s = string(t.Name)
	default:
		s = string(t.Memo)
	}
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxDescription {
		s = s[:maxDescription]
		for !utf8.ValidString(s) {
			s = s[:len(s)-1]
		}
	}
	return s
}

// FITID returns the bank transaction id recorded on tx, if any.
func FITID(tx core.Transaction) (string, bool) {
	for _, tag := range tx.Tags {
		if id, ok := strings.CutPrefix(tag, TagPrefix); ok {
			return id, true
		}
	}
	return "", false
}

// Dedupe drops incoming transactions whose FITID is already present in
// existing or earlier in incoming. Transactions without a FITID are kept.
func Dedupe(existing, incoming []core.Transaction) (fresh []core.Transaction, skipped int) {
	seen := make(map[string]struct{}, len(existing))
	for _, tx := range existing {
		if id, ok := FITID(tx); ok {
			seen[id] = struct{}{}
		}
	}
	for _, tx := range incoming {
		id, ok := FITID(tx)
		if ok {
			if _, dup := seen[id]; dup {
				skipped++
				continue
			}
			seen[id] = struct{}{}
		}
		fresh = append(fresh, tx)
	}
	return fresh, skipped
}
