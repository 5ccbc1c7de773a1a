package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoneyNormalization(t *testing.T) {
	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"1.234,56", "1234.56", true},
		{"1234.56", "1234.56", true},
		{"1500,00", "1500.00", true},
		{"150,00", "150.00", true},
		{"0,00", "0.00", true},
		{"1.500", "1500.00", true}, // thousands grouping only
		{"123456789,99", "123456789.99", true},
		{"1.000.000.000,00", "", false}, // implausible as currency
		{"9999999999.00", "", false},
		{"", "", false},
		{"abc", "", false},
		{"12,34,56", "", false},
	}

	for _, tt := range tests {
		got, ok := parseMoney(tt.token)
		require.Equal(t, tt.ok, ok, "token %q", tt.token)
		if ok {
			assert.Equal(t, tt.want, got.StringFixed(2), "token %q", tt.token)
		}
	}
}

func TestParseCurrencyRequiresTwoDecimals(t *testing.T) {
	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"1.234,56", "1234.56", true},
		{"1234.56", "1234.56", true},
		{"1.500", "", false},      // no explicit fraction
		{"1500", "", false},       // integer, could be an ID
		{"20123456789", "", false}, // CUIT-shaped
	}

	for _, tt := range tests {
		got, ok := parseCurrency(tt.token)
		require.Equal(t, tt.ok, ok, "token %q", tt.token)
		if ok {
			assert.Equal(t, tt.want, got.StringFixed(2), "token %q", tt.token)
		}
	}
}

func TestParseDate(t *testing.T) {
	require.Nil(t, parseDate("31/02/2024")) // not a real calendar date
	require.Nil(t, parseDate("2024-03-01"))

	d := parseDate("01/03/2024")
	require.NotNil(t, d)
	assert.Equal(t, "2024-03-01", d.Format("2006-01-02"))
}
