package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hamanets/internal/core"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>Corner   Bakery
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>1500.00
<FITID>2024012001
<NAME>ACME PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>OTHER
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>0.00
<FITID>2024012501
<NAME>Zero adjustment
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-42.10
<FITID>CC0001
<NAME>Bookshop
<MEMO>paperbacks
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-42.10
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseBankStatement(t *testing.T) {
	txns, err := NewParser(nil).Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, txns, 2, "zero amount entry is skipped")

	debit := txns[0]
	assert.Equal(t, core.Expense, debit.Type)
	assert.Equal(t, "25.50", debit.Amount.StringFixed())
	assert.Equal(t, core.EUR, debit.Currency)
	assert.Equal(t, core.FallbackCategoryID, debit.CategoryID)
	assert.Equal(t, "Corner Bakery", debit.Description)
	assert.Equal(t, []string{"fitid:2024011501"}, debit.Tags)
	assert.True(t, debit.Date.Equal(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)))

	credit := txns[1]
	assert.Equal(t, core.Income, credit.Type)
	assert.Equal(t, "1500.00", credit.Amount.StringFixed())
}

func TestParseCreditCardStatement(t *testing.T) {
	p := NewParser(nil)
	p.CategoryID = "shopping"

	txns, err := p.Parse(context.Background(), strings.NewReader("\n\n"+sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, core.Expense, txns[0].Type)
	assert.Equal(t, core.USD, txns[0].Currency)
	assert.Equal(t, "shopping", txns[0].CategoryID)
	assert.Equal(t, "Bookshop", txns[0].Description)
}

func TestParseInvalid(t *testing.T) {
	_, err := NewParser(nil).Parse(context.Background(), strings.NewReader("not an ofx file"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestFITID(t *testing.T) {
	id, ok := FITID(core.Transaction{Tags: []string{"trip", "fitid:abc"}})
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = FITID(core.Transaction{Tags: []string{"trip"}})
	assert.False(t, ok)
}

func TestDedupe(t *testing.T) {
	existing := []core.Transaction{
		{ID: "1", Tags: []string{"fitid:a"}},
		{ID: "2"},
	}
	incoming := []core.Transaction{
		{Description: "dup", Tags: []string{"fitid:a"}},
		{Description: "new", Tags: []string{"fitid:b"}},
		{Description: "repeat in file", Tags: []string{"fitid:b"}},
		{Description: "manual"},
	}

	fresh, skipped := Dedupe(existing, incoming)
	assert.Equal(t, 2, skipped)
	require.Len(t, fresh, 2)
	assert.Equal(t, "new", fresh[0].Description)
	assert.Equal(t, "manual", fresh[1].Description)
}

func TestDescriptionTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("ї", 150) // 300 bytes
	got := description(ofxgoTransactionNamed(long))
	assert.LessOrEqual(t, len(got), maxDescription)
	assert.True(t, strings.HasPrefix(long, got))
}

func ofxgoTransactionNamed(name string) ofxgo.Transaction {
	return ofxgo.Transaction{Name: ofxgo.String(name)}
}
