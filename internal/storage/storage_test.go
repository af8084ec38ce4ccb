package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halewood/envl/internal/common"
	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/service"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	storage, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = storage.Close()
	})
	return storage
}

func testTransaction(id, date string, txnType model.TransactionType, amount float64) model.Transaction {
	d, err := model.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return model.Transaction{
		ID:         id,
		Date:       d,
		Payee:      "Test Payee",
		Type:       txnType,
		Amount:     amount,
		CategoryID: model.UncategorizedID,
	}
}

func TestMigrateSeedsDefaults(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	version, err := storage.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	categories, err := storage.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(model.DefaultCategories()))

	// Uncategorized sorts last regardless of name.
	assert.Equal(t, model.UncategorizedID, categories[len(categories)-1].ID)

	var incomeCount int
	for _, cat := range categories {
		if cat.IsIncome {
			incomeCount++
		}
	}
	assert.Equal(t, 1, incomeCount)

	// Running migrations again is a no-op.
	require.NoError(t, storage.Migrate(ctx))
}

func TestSaveAndGetTransactions(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	transactions := []model.Transaction{
		testTransaction("txn-1", "2024-03-01", model.Debit, 42.50),
		testTransaction("txn-2", "2024-03-15", model.Credit, 1000),
		testTransaction("txn-3", "2024-04-01", model.Debit, 12),
	}
	require.NoError(t, storage.SaveTransactions(ctx, transactions))

	all, err := storage.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Newest first.
	assert.Equal(t, "txn-3", all[0].ID)
	assert.Equal(t, "txn-1", all[2].ID)
	assert.Equal(t, 42.50, all[2].Amount)
	assert.Equal(t, model.Debit, all[2].Type)

	txn, err := storage.GetTransaction(ctx, "txn-2")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", txn.DateString())
	assert.Equal(t, model.Credit, txn.Type)

	_, err = storage.GetTransaction(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetTransactionsDateFilter(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveTransactions(ctx, []model.Transaction{
		testTransaction("txn-feb", "2024-02-28", model.Debit, 10),
		testTransaction("txn-mar", "2024-03-15", model.Debit, 20),
		testTransaction("txn-apr", "2024-04-02", model.Debit, 30),
	}))

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.Local)

	filtered, err := storage.GetTransactions(ctx, service.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "txn-mar", filtered[0].ID)
}

func TestSaveTransactionsValidation(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	err := storage.SaveTransactions(ctx, []model.Transaction{})
	assert.ErrorIs(t, err, ErrEmptySlice)

	bad := testTransaction("txn-bad", "2024-01-01", "Transfer", 10)
	err = storage.SaveTransactions(ctx, []model.Transaction{bad})
	assert.ErrorIs(t, err, ErrInvalidType)

	negative := testTransaction("txn-neg", "2024-01-01", model.Debit, -5)
	err = storage.SaveTransactions(ctx, []model.Transaction{negative})
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	txn := testTransaction("txn-1", "2024-03-01", model.Debit, 50)
	require.NoError(t, storage.SaveTransactions(ctx, []model.Transaction{txn}))

	txn.Payee = "Updated Payee"
	txn.Amount = 75
	require.NoError(t, storage.UpdateTransaction(ctx, &txn))

	got, err := storage.GetTransaction(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, "Updated Payee", got.Payee)
	assert.Equal(t, 75.0, got.Amount)

	require.NoError(t, storage.DeleteTransaction(ctx, "txn-1"))
	_, err = storage.GetTransaction(ctx, "txn-1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = storage.DeleteTransaction(ctx, "txn-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteTransactionsBatch(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveTransactions(ctx, []model.Transaction{
		testTransaction("txn-1", "2024-03-01", model.Debit, 10),
		testTransaction("txn-2", "2024-03-02", model.Debit, 20),
		testTransaction("txn-3", "2024-03-03", model.Debit, 30),
	}))

	require.NoError(t, storage.DeleteTransactions(ctx, []string{"txn-1", "txn-3", "txn-unknown"}))

	count, err := storage.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAssignCategories(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveTransactions(ctx, []model.Transaction{
		testTransaction("txn-1", "2024-03-01", model.Debit, 10),
		testTransaction("txn-2", "2024-03-02", model.Debit, 20),
	}))

	uncategorized, err := storage.GetUncategorizedTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, uncategorized, 2)

	require.NoError(t, storage.AssignCategory(ctx, "txn-1", "cat-groceries"))
	require.NoError(t, storage.AssignCategories(ctx, []service.CategoryAssignment{
		{TransactionID: "txn-2", CategoryID: "cat-dining"},
	}))

	uncategorized, err = storage.GetUncategorizedTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, uncategorized)

	txn, err := storage.GetTransaction(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, "cat-groceries", txn.CategoryID)

	err = storage.AssignCategory(ctx, "missing", "cat-groceries")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateCategory(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	cat := model.Category{ID: "cat-pets", Name: "Pets"}
	require.NoError(t, storage.CreateCategory(ctx, &cat))
	assert.NotEmpty(t, cat.Color, "color should be assigned from the palette")

	got, err := storage.GetCategoryByName(ctx, "PETS")
	require.NoError(t, err)
	assert.Equal(t, "cat-pets", got.ID)

	dup := model.Category{ID: "cat-pets-2", Name: "pets"}
	err = storage.CreateCategory(ctx, &dup)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	secondIncome := model.Category{ID: "cat-salary", Name: "Salary", IsIncome: true}
	err = storage.CreateCategory(ctx, &secondIncome)
	assert.ErrorIs(t, err, common.ErrIncomeExists)
}

func TestUpdateCategory(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	cat, err := storage.GetCategory(ctx, "cat-groceries")
	require.NoError(t, err)

	cat.Name = "Food"
	cat.IsTransfer = false
	require.NoError(t, storage.UpdateCategory(ctx, cat))

	got, err := storage.GetCategory(ctx, "cat-groceries")
	require.NoError(t, err)
	assert.Equal(t, "Food", got.Name)

	// The existing income category can be updated in place.
	income, err := storage.GetCategory(ctx, "cat-income")
	require.NoError(t, err)
	income.Name = "Salary"
	require.NoError(t, storage.UpdateCategory(ctx, income))

	// But a second category cannot claim the income flag.
	got.IsIncome = true
	err = storage.UpdateCategory(ctx, got)
	assert.ErrorIs(t, err, common.ErrIncomeExists)

	reserved := model.Category{ID: model.UncategorizedID, Name: "Renamed"}
	err = storage.UpdateCategory(ctx, &reserved)
	assert.ErrorIs(t, err, common.ErrCategoryReserved)
}

func TestDeleteCategoryReassignsTransactions(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	txn := testTransaction("txn-1", "2024-03-01", model.Debit, 10)
	txn.CategoryID = "cat-dining"
	require.NoError(t, storage.SaveTransactions(ctx, []model.Transaction{txn}))

	env := model.Envelope{
		ID:          "env-food",
		Name:        "Food",
		Type:        model.EnvelopeSpending,
		Budget:      400,
		CategoryIDs: []string{"cat-groceries", "cat-dining"},
	}
	require.NoError(t, storage.CreateEnvelope(ctx, &env))

	require.NoError(t, storage.DeleteCategory(ctx, "cat-dining"))

	got, err := storage.GetTransaction(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, model.UncategorizedID, got.CategoryID)

	gotEnv, err := storage.GetEnvelope(ctx, "env-food")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-groceries"}, gotEnv.CategoryIDs)

	err = storage.DeleteCategory(ctx, model.UncategorizedID)
	assert.ErrorIs(t, err, common.ErrCategoryReserved)

	err = storage.DeleteCategory(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteCategoryRefusesIncome(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	err := storage.DeleteCategory(ctx, "cat-income")
	assert.ErrorIs(t, err, common.ErrCategoryReserved)

	// The income category must survive so income aggregation keeps working.
	categories, err := storage.GetCategories(ctx)
	require.NoError(t, err)
	var hasIncome bool
	for _, cat := range categories {
		if cat.IsIncome {
			hasIncome = true
		}
	}
	assert.True(t, hasIncome)
}

func TestEnvelopeCRUD(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	env := model.Envelope{
		ID:             "env-vacation",
		Name:           "Vacation",
		Type:           model.EnvelopeGoal,
		Budget:         200,
		StartingAmount: 500,
		FinalTarget:    5000,
		CategoryIDs:    []string{"cat-shopping", "cat-entertainment"},
	}
	require.NoError(t, storage.CreateEnvelope(ctx, &env))

	got, err := storage.GetEnvelope(ctx, "env-vacation")
	require.NoError(t, err)
	assert.Equal(t, model.EnvelopeGoal, got.Type)
	assert.Equal(t, 500.0, got.StartingAmount)
	assert.Equal(t, 5000.0, got.FinalTarget)
	assert.Equal(t, []string{"cat-shopping", "cat-entertainment"}, got.CategoryIDs)

	got.Budget = 250
	got.CategoryIDs = []string{"cat-entertainment"}
	require.NoError(t, storage.UpdateEnvelope(ctx, got))

	got, err = storage.GetEnvelope(ctx, "env-vacation")
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.Budget)
	assert.Equal(t, []string{"cat-entertainment"}, got.CategoryIDs)

	envelopes, err := storage.GetEnvelopes(ctx)
	require.NoError(t, err)
	assert.Len(t, envelopes, 1)

	require.NoError(t, storage.DeleteEnvelope(ctx, "env-vacation"))
	_, err = storage.GetEnvelope(ctx, "env-vacation")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEnvelopeValidation(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	badType := model.Envelope{ID: "env-1", Name: "Bad", Type: "savings"}
	err := storage.CreateEnvelope(ctx, &badType)
	assert.ErrorIs(t, err, ErrInvalidEnvelope)

	negativeBudget := model.Envelope{ID: "env-2", Name: "Bad", Type: model.EnvelopeSpending, Budget: -10}
	err = storage.CreateEnvelope(ctx, &negativeBudget)
	assert.ErrorIs(t, err, ErrInvalidEnvelope)
}

func TestAISettingsRoundTrip(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	settings, err := storage.GetAISettings(ctx)
	require.NoError(t, err)
	assert.False(t, settings.Enabled)
	assert.Equal(t, "gemini", settings.Provider)

	settings.Enabled = true
	settings.Provider = "openai"
	settings.APIKey = "sk-test"
	settings.Model = "gpt-4o-mini"
	require.NoError(t, storage.SaveAISettings(ctx, settings))

	got, err := storage.GetAISettings(ctx)
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	assert.Equal(t, "openai", got.Provider)
	assert.Equal(t, "sk-test", got.APIKey)
}

func TestReplaceAll(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveTransactions(ctx, []model.Transaction{
		testTransaction("txn-old", "2024-01-01", model.Debit, 10),
	}))

	newCats := []model.Category{
		{ID: "cat-a", Name: "Alpha", Color: "#ff0000"},
		{ID: "cat-b", Name: "Beta", Color: "#00ff00", IsIncome: true},
	}
	newTxn := testTransaction("txn-new", "2024-06-01", model.Credit, 99)
	newTxn.CategoryID = "cat-b"
	newEnvs := []model.Envelope{
		{ID: "env-a", Name: "Alpha", Type: model.EnvelopeSpending, Budget: 100, CategoryIDs: []string{"cat-a"}},
	}
	newSettings := &model.AISettings{Enabled: true, Provider: "gemini", APIKey: "key"}

	require.NoError(t, storage.ReplaceAll(ctx, []model.Transaction{newTxn}, newCats, newEnvs, newSettings))

	all, err := storage.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "txn-new", all[0].ID)

	categories, err := storage.GetCategories(ctx)
	require.NoError(t, err)
	// The two restored categories plus the reserved uncategorized fallback.
	assert.Len(t, categories, 3)
	assert.Equal(t, model.UncategorizedID, categories[len(categories)-1].ID)

	envelopes, err := storage.GetEnvelopes(ctx)
	require.NoError(t, err)
	require.Len(t, envelopes, 1)
	assert.Equal(t, []string{"cat-a"}, envelopes[0].CategoryIDs)

	settings, err := storage.GetAISettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.Enabled)
}

func TestReset(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveTransactions(ctx, []model.Transaction{
		testTransaction("txn-1", "2024-03-01", model.Debit, 10),
	}))
	require.NoError(t, storage.SaveAISettings(ctx, &model.AISettings{Enabled: true, Provider: "openai"}))

	require.NoError(t, storage.Reset(ctx))

	count, err := storage.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	categories, err := storage.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(model.DefaultCategories()))

	settings, err := storage.GetAISettings(ctx)
	require.NoError(t, err)
	assert.False(t, settings.Enabled)
}

func TestValidation(t *testing.T) {
	t.Run("nil context", func(t *testing.T) {
		storage := createTestStorage(t)
		//nolint:staticcheck // testing nil context handling
		_, err := storage.GetCategories(nil)
		assert.ErrorIs(t, err, ErrNilContext)
	})

	t.Run("empty db path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}
