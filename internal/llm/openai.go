package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/halewood/envl/internal/common"
	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/service"
)

const defaultOpenAIModel = "gpt-4o-mini"

// openAIClient implements Suggester against the OpenAI chat completions API.
type openAIClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	temperature float64
	baseURL     string
}

func newOpenAIClient(cfg Config) (Suggester, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperature,
		baseURL:     "https://api.openai.com/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// SuggestCategory asks OpenAI for the best category for one transaction.
func (c *openAIClient) SuggestCategory(ctx context.Context, payee, description string, categories []model.Category) (string, error) {
	text, err := c.complete(ctx,
		"You are a financial transaction classifier. Respond with ONLY the category name, no explanation.",
		buildSinglePrompt(payee, description, categories))
	if err != nil {
		return "", err
	}

	categoryID, ok := matchCategory(text, categories)
	if !ok {
		return "", fmt.Errorf("%w: model suggested %q", common.ErrNoSuggestion, strings.TrimSpace(text))
	}
	return categoryID, nil
}

// SuggestCategoriesBatch asks OpenAI to categorize a batch of transactions
// in one request.
func (c *openAIClient) SuggestCategoriesBatch(ctx context.Context, transactions []model.Transaction, categories []model.Category) ([]service.CategoryAssignment, error) {
	if len(transactions) == 0 {
		return nil, nil
	}

	prompt, err := buildBatchPrompt(transactions, categories)
	if err != nil {
		return nil, err
	}

	text, err := c.complete(ctx,
		"You are a financial transaction classifier. You MUST respond with ONLY a valid JSON array. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON.",
		prompt)
	if err != nil {
		return nil, err
	}

	return parseBatchResponse(text, categories)
}

// TestKey verifies the API key with a minimal completion request.
func (c *openAIClient) TestKey(ctx context.Context) error {
	_, err := c.complete(ctx, "", "hello")
	return err
}

func (c *openAIClient) complete(ctx context.Context, system, user string) (string, error) {
	var messages []map[string]string
	if system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": user})

	requestBody := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.temperature,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: OpenAI API", common.ErrRateLimit)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", common.ErrSuggestionFailed)
	}

	return response.Choices[0].Message.Content, nil
}
