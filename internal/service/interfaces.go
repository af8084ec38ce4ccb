// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/halewood/envl/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// CategoryAssignment pairs a transaction with the category it should be
// moved to, used for bulk AI categorization results.
type CategoryAssignment struct {
	TransactionID string
	CategoryID    string
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetUncategorizedTransactions(ctx context.Context) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	DeleteTransactions(ctx context.Context, ids []string) error
	AssignCategory(ctx context.Context, transactionID, categoryID string) error
	AssignCategories(ctx context.Context, assignments []CategoryAssignment) error
	CountTransactions(ctx context.Context) (int, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Envelope operations
	GetEnvelopes(ctx context.Context) ([]model.Envelope, error)
	GetEnvelope(ctx context.Context, id string) (*model.Envelope, error)
	CreateEnvelope(ctx context.Context, envelope *model.Envelope) error
	UpdateEnvelope(ctx context.Context, envelope *model.Envelope) error
	DeleteEnvelope(ctx context.Context, id string) error

	// Settings operations
	GetAISettings(ctx context.Context) (*model.AISettings, error)
	SaveAISettings(ctx context.Context, settings *model.AISettings) error

	// Backup operations
	ReplaceAll(ctx context.Context, transactions []model.Transaction, categories []model.Category, envelopes []model.Envelope, settings *model.AISettings) error
	Reset(ctx context.Context) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations that may fail
// transiently, such as AI suggestion calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
