package report

import (
	"time"

	"github.com/halewood/envl/internal/model"
)

// Shared fixtures for the report tests.

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func fixtureCategories() []model.Category {
	return []model.Category{
		{ID: "income", Name: "Income", Color: "#10b981", IsIncome: true},
		{ID: "groceries", Name: "Groceries", Color: "#22c55e"},
		{ID: "dining", Name: "Dining Out", Color: "#ec4899"},
		{ID: "savings", Name: "To Savings", Color: "#06b6d4", IsTransfer: true},
		{ID: model.UncategorizedID, Name: "Uncategorized", Color: "#78716c"},
	}
}

func debit(id, categoryID string, amount float64, on time.Time) model.Transaction {
	return model.Transaction{ID: id, Date: on, CategoryID: categoryID, Type: model.Debit, Amount: amount}
}

func credit(id, categoryID string, amount float64, on time.Time) model.Transaction {
	return model.Transaction{ID: id, Date: on, CategoryID: categoryID, Type: model.Credit, Amount: amount}
}
