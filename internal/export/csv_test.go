package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bix-dev/bixdash/internal/model"
)

func testTransactions() []model.Transaction {
	return []model.Transaction{
		{Date: 1682698259192, Amount: "5565", Type: model.TypeDeposit, Currency: model.CurrencyBRL, Account: "Baker Hughes", Industry: "Oil and Gas Equipment", State: "TX"},
		{Date: 1673216606378, Amount: "3716", Type: model.TypeWithdraw, Currency: model.CurrencyBRL, Account: "General Mills, Inc.", Industry: "Food Consumer Products", State: "MN"},
	}
}

func TestRoundTrip(t *testing.T) {
	ts := testTransactions()

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, ts))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	assert.Equal(t, ts, got)
}

func TestWriteTransactions_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, testTransactions()[:1]))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, "2023-04-28T16:10:59.192Z,5565,deposit,brl,Baker Hughes,Oil and Gas Equipment,TX", lines[1])
}

func TestWriteTransactions_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, nil))
	assert.Equal(t, Header+"\n", buf.String())

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadTransactions_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"bad date", Header + "\nyesterday,1,deposit,brl,a,b,c\n", "parsing date"},
		{"bad amount", Header + "\n2023-04-28T16:10:59.192Z,ten,deposit,brl,a,b,c\n", "parsing amount"},
		{"short row", Header + "\n2023-04-28T16:10:59.192Z,1\n", "reading transactions CSV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTransactions(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnmarshalTransaction_FieldCount(t *testing.T) {
	_, err := UnmarshalTransaction([]string{"a"})
	assert.ErrorContains(t, err, "expected 7 fields")
}
