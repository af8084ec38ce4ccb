package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halewood/envl/internal/common"
	"github.com/halewood/envl/internal/model"
)

func testCategories() []model.Category {
	return []model.Category{
		{ID: "cat-groceries", Name: "Groceries"},
		{ID: "cat-dining", Name: "Dining Out"},
		{ID: model.UncategorizedID, Name: "Uncategorized"},
	}
}

func TestNewSuggester(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "gemini", cfg: Config{Provider: "gemini", APIKey: "key"}},
		{name: "openai", cfg: Config{Provider: "OpenAI", APIKey: "key"}},
		{name: "unknown provider", cfg: Config{Provider: "claude", APIKey: "key"}, wantErr: common.ErrInvalidConfig},
		{name: "missing key", cfg: Config{Provider: "gemini"}, wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggester, err := NewSuggester(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, suggester)
		})
	}
}

func TestNewSuggesterFromSettings(t *testing.T) {
	_, err := NewSuggesterFromSettings(nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = NewSuggesterFromSettings(&model.AISettings{Enabled: false, APIKey: "key"})
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = NewSuggesterFromSettings(&model.AISettings{Enabled: true, Provider: "gemini"})
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	suggester, err := NewSuggesterFromSettings(&model.AISettings{Enabled: true, Provider: "gemini", APIKey: "key"})
	require.NoError(t, err)
	assert.NotNil(t, suggester)
}

func TestMatchCategory(t *testing.T) {
	categories := testCategories()

	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{name: "exact match", input: "Groceries", wantID: "cat-groceries", wantOK: true},
		{name: "case insensitive", input: "dining out", wantID: "cat-dining", wantOK: true},
		{name: "surrounding whitespace", input: "  Groceries \n", wantID: "cat-groceries", wantOK: true},
		{name: "uncategorized fallback discarded", input: "Uncategorized", wantOK: false},
		{name: "unknown name", input: "Cryptocurrency", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := matchCategory(tt.input, categories)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: `[{"id":"1"}]`, want: `[{"id":"1"}]`},
		{name: "json fence", input: "```json\n[{\"id\":\"1\"}]\n```", want: `[{"id":"1"}]`},
		{name: "bare fence", input: "```\n[]\n```", want: `[]`},
		{name: "whitespace", input: "  \n[]\n  ", want: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMarkdownWrapper(tt.input))
		})
	}
}

func TestParseBatchResponse(t *testing.T) {
	categories := testCategories()

	t.Run("resolves names and drops misses", func(t *testing.T) {
		content := "```json\n" + `[
			{"id": "txn-1", "suggestedCategoryName": "Groceries"},
			{"id": "txn-2", "suggestedCategoryName": "Uncategorized"},
			{"id": "txn-3", "suggestedCategoryName": "dining out"},
			{"id": "", "suggestedCategoryName": "Groceries"}
		]` + "\n```"

		assignments, err := parseBatchResponse(content, categories)
		require.NoError(t, err)
		require.Len(t, assignments, 2)
		assert.Equal(t, "txn-1", assignments[0].TransactionID)
		assert.Equal(t, "cat-groceries", assignments[0].CategoryID)
		assert.Equal(t, "txn-3", assignments[1].TransactionID)
		assert.Equal(t, "cat-dining", assignments[1].CategoryID)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := parseBatchResponse("sure! here are the categories", categories)
		assert.ErrorIs(t, err, common.ErrSuggestionFailed)
	})
}

func TestGeminiSuggestCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "Coffee Shop")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "Dining Out\n"}}}},
			},
		})
	}))
	defer server.Close()

	client := &geminiClient{
		apiKey:     "test-key",
		model:      defaultGeminiModel,
		baseURL:    server.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	categoryID, err := client.SuggestCategory(context.Background(), "Coffee Shop", "latte", testCategories())
	require.NoError(t, err)
	assert.Equal(t, "cat-dining", categoryID)
}

func TestGeminiErrors(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := &geminiClient{
			apiKey: "k", model: defaultGeminiModel, baseURL: server.URL,
			httpClient: &http.Client{Timeout: 5 * time.Second},
		}
		_, err := client.SuggestCategory(context.Background(), "x", "", testCategories())
		assert.ErrorIs(t, err, common.ErrRateLimit)
	})

	t.Run("no suggestion for unknown name", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]string{{"text": "Lottery Winnings"}}}},
				},
			})
		}))
		defer server.Close()

		client := &geminiClient{
			apiKey: "k", model: defaultGeminiModel, baseURL: server.URL,
			httpClient: &http.Client{Timeout: 5 * time.Second},
		}
		_, err := client.SuggestCategory(context.Background(), "x", "", testCategories())
		assert.ErrorIs(t, err, common.ErrNoSuggestion)
	})
}

func TestOpenAISuggestCategoriesBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{
					"content": `[{"id":"txn-1","suggestedCategoryName":"Groceries"}]`,
				}},
			},
		})
	}))
	defer server.Close()

	client := &openAIClient{
		apiKey:     "test-key",
		model:      defaultOpenAIModel,
		baseURL:    server.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	transactions := []model.Transaction{{ID: "txn-1", Payee: "Market"}}
	assignments, err := client.SuggestCategoriesBatch(context.Background(), transactions, testCategories())
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "cat-groceries", assignments[0].CategoryID)
}

func TestOpenAIBatchEmptyInput(t *testing.T) {
	client := &openAIClient{apiKey: "k", model: defaultOpenAIModel}
	assignments, err := client.SuggestCategoriesBatch(context.Background(), nil, testCategories())
	require.NoError(t, err)
	assert.Empty(t, assignments)
}
