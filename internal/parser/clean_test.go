package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		fixes map[string]string
		want  string
	}{
		{
			name: "strips leading OCR junk",
			line: "|= 07/25  2,301.24  DEPOSIT",
			want: "07/25  2,301.24  DEPOSIT",
		},
		{
			name: "collapses runs of whitespace",
			line: "07/25      DEPOSIT        2,301.24",
			want: "07/25  DEPOSIT  2,301.24",
		},
		{
			name:  "applies template OCR fixes",
			line:  "ACH 0eduction PAYROLL",
			fixes: map[string]string{"0eduction": "Deduction"},
			want:  "ACH Deduction PAYROLL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLine(tt.line, tt.fixes))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    float64
		wantErr bool
	}{
		{"plain", "2,301.24", 2301.24, false},
		{"no separator", "720.00", 720.00, false},
		{"misread S for 4", "S20.00", 420.00, false},
		{"misread O and l", "1O1.Ol", 101.01, false},
		{"too long", "1,234,567,890.00", 0, true},
		{"over max value", "9,999,999.99", 0, true},
		{"not an amount", "REF18211038", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestLastValidAmount(t *testing.T) {
	// Reference numbers precede the real amount on many statement lines.
	amount, ok := LastValidAmount("07/25 DEPOSIT REF 18211038.00 2,301.24")
	require.True(t, ok)
	assert.InDelta(t, 2301.24, amount, 0.001)

	_, ok = LastValidAmount("no amounts at all")
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		format  string
		year    int
		want    time.Time
		wantErr bool
	}{
		{
			name: "MM/DD with statement year", token: "07/25", format: "MM/DD", year: 2024,
			want: time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "full date", token: "12/31/2023", format: "MM/DD/YYYY", year: 2024,
			want: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "two digit year expands", token: "01/05/24", format: "MM/DD/YYYY", year: 0,
			want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "misread day ninety", token: "07/90", format: "MM/DD", year: 2024,
			want: time.Date(2024, 7, 0, 0, 0, 0, 0, time.UTC), wantErr: true,
		},
		{
			name: "misread day offset sixty", token: "07/65", format: "MM/DD", year: 2024,
			want: time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "calendar overflow rejected", token: "02/31", format: "MM/DD", year: 2024,
			wantErr: true,
		},
		{
			name: "month thirteen rejected", token: "13/01", format: "MM/DD", year: 2024,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.token, tt.format, tt.year)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsDailyBalanceLine(t *testing.T) {
	assert.True(t, IsDailyBalanceLine("07/25 102,450.12  07/26 99,301.88  07/27 101,002.45"))
	assert.True(t, IsDailyBalanceLine("07/25  163,705.78"))
	assert.False(t, IsDailyBalanceLine("07/25 WIRE TRANSFER IN 163,705.78"))
	assert.False(t, IsDailyBalanceLine("07/25 DEPOSIT 2,301.24"))
}

func TestShouldSkipLine(t *testing.T) {
	skip := []string{"balance", "total", "page"}
	assert.True(t, ShouldSkipLine("Ending Balance 99,301.88", skip))
	assert.True(t, ShouldSkipLine("Page 2 of 7", skip))
	assert.False(t, ShouldSkipLine("07/25 DEPOSIT 2,301.24", skip))
	// Word boundaries: "subtotal" does not trip "total".
	assert.False(t, ShouldSkipLine("07/25 SUBTOTALING SVC 10.00", skip))
}
