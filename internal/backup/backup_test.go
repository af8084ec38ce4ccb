package backup

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halewood/envl/internal/model"
)

func TestExportImportRoundTrip(t *testing.T) {
	date, err := model.ParseDate("2024-03-15")
	require.NoError(t, err)

	transactions := []model.Transaction{
		{
			ID: "txn-1", Date: date, Payee: "Grocery Store", Description: "weekly",
			CategoryID: "cat-groceries", Type: model.Debit, Amount: 54.20, PaymentMethod: "Bank",
		},
	}
	categories := []model.Category{
		{ID: "cat-groceries", Name: "Groceries", Color: "#22c55e"},
		{ID: "cat-income", Name: "Income", Color: "#10b981", IsIncome: true},
	}
	envelopes := []model.Envelope{
		{
			ID: "env-food", Name: "Food", Type: model.EnvelopeSpending,
			Budget: 400, CategoryIDs: []string{"cat-groceries"},
		},
		{
			ID: "env-trip", Name: "Trip", Type: model.EnvelopeGoal,
			Budget: 100, StartingAmount: 250, FinalTarget: 2000,
		},
	}
	settings := &model.AISettings{Provider: "gemini", APIKey: "key", Enabled: true}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, transactions, categories, envelopes, settings))

	// Section keys use the portable camelCase names.
	assert.Contains(t, buf.String(), `"aiSettings"`)
	assert.Contains(t, buf.String(), `"categoryId"`)
	assert.Contains(t, buf.String(), `"startingAmount"`)

	gotTxns, gotCats, gotEnvs, gotSettings, err := Import(&buf)
	require.NoError(t, err)

	require.Len(t, gotTxns, 1)
	assert.Equal(t, transactions[0], gotTxns[0])
	assert.Equal(t, categories, gotCats)
	require.Len(t, gotEnvs, 2)
	assert.Equal(t, envelopes[0], gotEnvs[0])
	assert.Equal(t, settings, gotSettings)
}

func TestExportEmptyCollections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil, nil, nil, nil))

	assert.Contains(t, buf.String(), `"transactions": []`)
	assert.Contains(t, buf.String(), `"aiSettings": null`)
}

func TestImportMissingSection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "missing envelopes",
			input: `{"transactions": [], "categories": [], "aiSettings": {"provider": "gemini"}}`,
			want:  "envelopes",
		},
		{
			name:  "missing aiSettings",
			input: `{"transactions": [], "categories": [], "envelopes": []}`,
			want:  "aiSettings",
		},
		{
			name:  "null section",
			input: `{"transactions": null, "categories": [], "envelopes": [], "aiSettings": {}}`,
			want:  "transactions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, _, err := Import(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "missing required section")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImportCorruptedSection(t *testing.T) {
	input := `{"transactions": {}, "categories": [], "envelopes": [], "aiSettings": {}}`
	_, _, _, _, err := Import(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupted")
}

func TestImportNotJSON(t *testing.T) {
	_, _, _, _, err := Import(strings.NewReader("not json at all"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backup file")
}

func TestImportDefaultsCategoryID(t *testing.T) {
	input := `{
		"transactions": [{"id": "txn-1", "date": "2024-01-01", "payee": "Store", "type": "Debit", "amount": 5}],
		"categories": [],
		"envelopes": [],
		"aiSettings": {"provider": "gemini", "apiKey": "", "enabled": false}
	}`

	txns, _, _, _, err := Import(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.UncategorizedID, txns[0].CategoryID)
}

func TestImportBadDate(t *testing.T) {
	input := `{
		"transactions": [{"id": "txn-1", "date": "03/15/2024", "payee": "Store", "type": "Debit", "amount": 5}],
		"categories": [],
		"envelopes": [],
		"aiSettings": {}
	}`

	_, _, _, _, err := Import(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "txn-1")
}
