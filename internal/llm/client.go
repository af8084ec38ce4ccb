// Package llm provides AI-backed category suggestions for transactions.
//
// Providers are hand-rolled HTTP clients rather than vendor SDKs; the
// request surface we need is a single completion endpoint per provider.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/halewood/envl/internal/common"
	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/service"
)

// Suggester proposes categories for transactions.
type Suggester interface {
	// SuggestCategory returns the category id best matching a single
	// transaction, or common.ErrNoSuggestion if the model declines.
	SuggestCategory(ctx context.Context, payee, description string, categories []model.Category) (string, error)

	// SuggestCategoriesBatch proposes categories for a batch of
	// transactions in one call. Transactions the model cannot place are
	// omitted from the result.
	SuggestCategoriesBatch(ctx context.Context, transactions []model.Transaction, categories []model.Category) ([]service.CategoryAssignment, error)

	// TestKey verifies the configured API key with a minimal request.
	TestKey(ctx context.Context) error
}

// Config holds provider configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
}

// NewSuggester creates a suggester for the configured provider.
func NewSuggester(cfg Config) (Suggester, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return newGeminiClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown AI provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}

// NewSuggesterFromSettings creates a suggester from stored AI settings.
func NewSuggesterFromSettings(settings *model.AISettings) (Suggester, error) {
	if settings == nil || !settings.Enabled {
		return nil, fmt.Errorf("%w: AI suggestions are disabled", common.ErrMissingConfig)
	}
	if settings.APIKey == "" {
		return nil, fmt.Errorf("%w: AI API key is not set", common.ErrMissingConfig)
	}
	return NewSuggester(Config{
		Provider: settings.Provider,
		APIKey:   settings.APIKey,
		Model:    settings.Model,
	})
}

func buildSinglePrompt(payee, description string, categories []model.Category) string {
	return fmt.Sprintf(`Based on the following transaction details, which of these categories is the best fit?
Payee: %q
Description: %q

Available categories: %s

Respond with ONLY the name of the most appropriate category from the list. If no category fits well, respond with "Uncategorized".`,
		payee, description, categoryNames(categories))
}

// batchItem is the transaction shape sent to the model for batch
// suggestions.
type batchItem struct {
	ID          string `json:"id"`
	Payee       string `json:"payee"`
	Description string `json:"description"`
}

// batchSuggestion is one entry of the JSON array the model returns.
type batchSuggestion struct {
	ID                    string `json:"id"`
	SuggestedCategoryName string `json:"suggestedCategoryName"`
}

func buildBatchPrompt(transactions []model.Transaction, categories []model.Category) (string, error) {
	items := make([]batchItem, len(transactions))
	for i, txn := range transactions {
		items[i] = batchItem{ID: txn.ID, Payee: txn.Payee, Description: txn.Description}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transactions: %w", err)
	}

	return fmt.Sprintf(`Given the following list of bank transactions and a list of available categories,
suggest the most appropriate category for each transaction.

Available Categories:
%s

Transactions (JSON format):
%s

Respond with a JSON array where each object contains the original transaction "id"
and the "suggestedCategoryName". The category name must be one of the available categories.
If no category is a good fit, use "Uncategorized".
Respond with ONLY the JSON array, no markdown formatting or commentary.`,
		categoryNames(categories), itemsJSON), nil
}

func categoryNames(categories []model.Category) string {
	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, cat.Name)
	}
	return strings.Join(names, ", ")
}

// matchCategory resolves a suggested name against known categories by
// case-insensitive comparison. Unknown names and the uncategorized
// fallback yield no match.
func matchCategory(name string, categories []model.Category) (string, bool) {
	name = strings.TrimSpace(name)
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, name) {
			if cat.ID == model.UncategorizedID {
				return "", false
			}
			return cat.ID, true
		}
	}
	return "", false
}

// parseBatchResponse decodes the model's batch reply and resolves the
// suggested names to category ids. Entries the model could not place are
// dropped.
func parseBatchResponse(content string, categories []model.Category) ([]service.CategoryAssignment, error) {
	content = cleanMarkdownWrapper(content)

	var suggestions []batchSuggestion
	if err := json.Unmarshal([]byte(content), &suggestions); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in model response: %v", common.ErrSuggestionFailed, err)
	}

	var assignments []service.CategoryAssignment
	for _, s := range suggestions {
		if s.ID == "" {
			continue
		}
		if categoryID, ok := matchCategory(s.SuggestedCategoryName, categories); ok {
			assignments = append(assignments, service.CategoryAssignment{
				TransactionID: s.ID,
				CategoryID:    categoryID,
			})
		}
	}
	return assignments, nil
}

// cleanMarkdownWrapper strips markdown code fences that models sometimes
// wrap around JSON despite instructions.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		} else {
			content = strings.TrimPrefix(content, "```json")
			content = strings.TrimPrefix(content, "```")
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}
