package model

// UncategorizedID is the reserved category id that always exists.
// Transactions referencing a deleted category degrade to this id.
const UncategorizedID = "uncategorized"

// Category represents a transaction category.
type Category struct {
	ID         string
	Name       string
	Color      string
	IsIncome   bool
	IsTransfer bool
}

// IsUncategorized reports whether this is the reserved uncategorized category.
func (c *Category) IsUncategorized() bool {
	return c.ID == UncategorizedID
}

// CategoryColors is the display palette assigned round-robin to new categories.
var CategoryColors = []string{
	"#ef4444", "#f97316", "#eab308", "#84cc16", "#22c55e", "#14b8a6",
	"#06b6d4", "#3b82f6", "#8b5cf6", "#d946ef", "#ec4899", "#78716c",
}

// DefaultCategories is the category set seeded into a fresh database.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat-groceries", Name: "Groceries", Color: "#22c55e"},
		{ID: "cat-utilities", Name: "Utilities", Color: "#3b82f6"},
		{ID: "cat-rent", Name: "Rent/Mortgage", Color: "#8b5cf6"},
		{ID: "cat-transport", Name: "Transportation", Color: "#f97316"},
		{ID: "cat-dining", Name: "Dining Out", Color: "#ec4899"},
		{ID: "cat-entertainment", Name: "Entertainment", Color: "#d946ef"},
		{ID: "cat-shopping", Name: "Shopping", Color: "#14b8a6"},
		{ID: "cat-income", Name: "Income", Color: "#10b981", IsIncome: true},
		{ID: UncategorizedID, Name: "Uncategorized", Color: "#78716c"},
	}
}
