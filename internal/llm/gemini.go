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

const defaultGeminiModel = "gemini-2.5-flash"

// geminiClient implements Suggester against the Gemini REST API.
type geminiClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	temperature float64
	baseURL     string
}

func newGeminiClient(cfg Config) (Suggester, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}

	return &geminiClient{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperature,
		baseURL:     "https://generativelanguage.googleapis.com/v1beta",
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

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// SuggestCategory asks Gemini for the best category for one transaction.
func (c *geminiClient) SuggestCategory(ctx context.Context, payee, description string, categories []model.Category) (string, error) {
	prompt := buildSinglePrompt(payee, description, categories)

	text, err := c.generate(ctx, prompt, "")
	if err != nil {
		return "", err
	}

	categoryID, ok := matchCategory(text, categories)
	if !ok {
		return "", fmt.Errorf("%w: model suggested %q", common.ErrNoSuggestion, strings.TrimSpace(text))
	}
	return categoryID, nil
}

// SuggestCategoriesBatch asks Gemini to categorize a batch of transactions
// in one JSON-mode request.
func (c *geminiClient) SuggestCategoriesBatch(ctx context.Context, transactions []model.Transaction, categories []model.Category) ([]service.CategoryAssignment, error) {
	if len(transactions) == 0 {
		return nil, nil
	}

	prompt, err := buildBatchPrompt(transactions, categories)
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, prompt, "application/json")
	if err != nil {
		return nil, err
	}

	return parseBatchResponse(text, categories)
}

// TestKey verifies the API key with a minimal generation request.
func (c *geminiClient) TestKey(ctx context.Context) error {
	_, err := c.generate(ctx, "hello", "")
	return err
}

func (c *geminiClient) generate(ctx context.Context, prompt, responseMimeType string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      c.temperature,
			ResponseMimeType: responseMimeType,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

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
		return "", fmt.Errorf("%w: Gemini API", common.ErrRateLimit)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", common.ErrSuggestionFailed)
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}
