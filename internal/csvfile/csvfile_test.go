package csvfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halewood/envl/internal/model"
)

func TestGuessMapping(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Mapping
	}{
		{
			name:    "exact names",
			headers: []string{"Date", "Payee", "Description", "Amount", "Type", "Category"},
			want: Mapping{
				FieldDate: 0, FieldPayee: 1, FieldDescription: 2,
				FieldAmount: 3, FieldType: 4, FieldCategory: 5,
			},
		},
		{
			name:    "bank style aliases",
			headers: []string{"Transaction Time", "Merchant Name", "Memo", "Total ($)"},
			want: Mapping{
				FieldDate: 0, FieldPayee: 1, FieldDescription: 2, FieldAmount: 3,
			},
		},
		{
			name:    "first match wins",
			headers: []string{"Posted Date", "Effective Date", "Vendor", "Amount"},
			want:    Mapping{FieldDate: 0, FieldPayee: 2, FieldAmount: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GuessMapping(tt.headers)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMappingValidate(t *testing.T) {
	complete := Mapping{FieldDate: 0, FieldPayee: 1, FieldAmount: 2}
	assert.NoError(t, complete.Validate())

	missing := Mapping{FieldDate: 0}
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payee")
	assert.Contains(t, err.Error(), "amount")
}

func TestMappingOverride(t *testing.T) {
	headers := []string{"Date", "Details", "Amount"}
	mapping := GuessMapping(headers)

	require.NoError(t, mapping.Override("payee=details", headers))
	assert.Equal(t, 1, mapping[FieldPayee])

	assert.Error(t, mapping.Override("payee", headers), "missing equals sign")
	assert.Error(t, mapping.Override("vendor=Details", headers), "unknown field")
	assert.Error(t, mapping.Override("payee=Missing", headers), "unknown header")
}

func TestReadHeader(t *testing.T) {
	headers, err := ReadHeader(strings.NewReader("Date,Payee,Amount\n2024-01-01,x,1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Payee", "Amount"}, headers)

	_, err = ReadHeader(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	input := `Date,Payee,Description,Amount,Category
2024-03-01,Grocery Store,Weekly shop,-54.20,Groceries
2024-03-02,Employer Inc,"Salary, March","2,500.00",
2024-03-03,Coffee Shop,,-$4.50,Dining Out
`

	result, err := Parse(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)
	assert.Zero(t, result.SkippedRows)

	groceries := result.Rows[0]
	assert.Equal(t, "Grocery Store", groceries.Transaction.Payee)
	assert.Equal(t, model.Debit, groceries.Transaction.Type)
	assert.Equal(t, 54.20, groceries.Transaction.Amount)
	assert.Equal(t, "2024-03-01", groceries.Transaction.DateString())
	assert.Equal(t, "Groceries", groceries.CategoryName)

	salary := result.Rows[1]
	assert.Equal(t, model.Credit, salary.Transaction.Type)
	assert.Equal(t, 2500.00, salary.Transaction.Amount)
	assert.Empty(t, salary.CategoryName)

	coffee := result.Rows[2]
	assert.Equal(t, model.Debit, coffee.Transaction.Type)
	assert.Equal(t, 4.50, coffee.Transaction.Amount)
	assert.Equal(t, "Unknown", coffee.Transaction.PaymentMethod)
}

func TestParseSkipsInvalidRows(t *testing.T) {
	input := `Date,Payee,Amount
2024-03-01,Store,-10.00
not-a-date,Store,-10.00
2024-03-03,,-10.00
2024-03-04,Store,n/a
2024-03-05,Store,-20.00
`

	result, err := Parse(strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
	assert.Equal(t, 3, result.SkippedRows)
	assert.Equal(t, 3, result.FirstSkippedLine)
}

func TestParseSignDeterminesType(t *testing.T) {
	// A type column is present but contradicts the sign; the sign wins.
	input := `Date,Payee,Amount,Type
2024-03-01,Store,-10.00,Credit
2024-03-02,Employer,100.00,Debit
`

	result, err := Parse(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, model.Debit, result.Rows[0].Transaction.Type)
	assert.Equal(t, model.Credit, result.Rows[1].Transaction.Type)
}

func TestParseExplicitMapping(t *testing.T) {
	input := `When,Who,How Much
03/15/2024,Bookstore,-15.99
`

	mapping := Mapping{FieldDate: 0, FieldPayee: 1, FieldAmount: 2}
	result, err := Parse(strings.NewReader(input), mapping)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "2024-03-15", result.Rows[0].Transaction.DateString())
}

func TestParseErrors(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := Parse(strings.NewReader(""), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("unmappable headers", func(t *testing.T) {
		_, err := Parse(strings.NewReader("a,b,c\n1,2,3\n"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required columns")
	})

	t.Run("all rows invalid", func(t *testing.T) {
		_, err := Parse(strings.NewReader("Date,Payee,Amount\nbad,,bad\n"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no valid transactions")
	})
}

func TestParseFlexibleDate(t *testing.T) {
	for _, input := range []string{
		"2024-03-15", "2024/03/15", "03/15/2024", "3/15/2024",
		"Mar 15, 2024", "March 15, 2024", "15 Mar 2024",
	} {
		d, err := parseFlexibleDate(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, "2024-03-15", d.Format(model.DateLayout), "input %q", input)
	}

	_, err := parseFlexibleDate("the ides of march")
	assert.Error(t, err)
}
