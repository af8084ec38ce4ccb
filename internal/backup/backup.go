// Package backup encodes and decodes full-data backup documents.
//
// The document is a single JSON object with four sections: transactions,
// categories, envelopes and aiSettings. Field names are camelCase so that
// backups remain portable across tools that share the format.
package backup

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/halewood/envl/internal/model"
)

// Document is the wire representation of a full backup.
type Document struct {
	Transactions []Transaction `json:"transactions"`
	Categories   []Category    `json:"categories"`
	Envelopes    []Envelope    `json:"envelopes"`
	AISettings   *AISettings   `json:"aiSettings"`
}

// Transaction is the wire form of a ledger entry.
type Transaction struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Payee         string  `json:"payee"`
	Description   string  `json:"description,omitempty"`
	CategoryID    string  `json:"categoryId"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
}

// Category is the wire form of a category.
type Category struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	IsIncome   bool   `json:"isIncome,omitempty"`
	IsTransfer bool   `json:"isTransfer,omitempty"`
}

// Envelope is the wire form of an envelope.
type Envelope struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Budget         float64  `json:"budget"`
	StartingAmount float64  `json:"startingAmount,omitempty"`
	FinalTarget    float64  `json:"finalTarget,omitempty"`
	CategoryIDs    []string `json:"categoryIds"`
}

// AISettings is the wire form of the AI configuration.
type AISettings struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// Export writes a backup document for the given collections.
func Export(w io.Writer, transactions []model.Transaction, categories []model.Category, envelopes []model.Envelope, settings *model.AISettings) error {
	doc := Document{
		Transactions: make([]Transaction, len(transactions)),
		Categories:   make([]Category, len(categories)),
		Envelopes:    make([]Envelope, len(envelopes)),
	}

	for i, txn := range transactions {
		doc.Transactions[i] = Transaction{
			ID:            txn.ID,
			Date:          txn.DateString(),
			Payee:         txn.Payee,
			Description:   txn.Description,
			CategoryID:    txn.CategoryID,
			Type:          string(txn.Type),
			Amount:        txn.Amount,
			PaymentMethod: txn.PaymentMethod,
		}
	}
	for i, cat := range categories {
		doc.Categories[i] = Category{
			ID:         cat.ID,
			Name:       cat.Name,
			Color:      cat.Color,
			IsIncome:   cat.IsIncome,
			IsTransfer: cat.IsTransfer,
		}
	}
	for i, env := range envelopes {
		categoryIDs := env.CategoryIDs
		if categoryIDs == nil {
			categoryIDs = []string{}
		}
		doc.Envelopes[i] = Envelope{
			ID:             env.ID,
			Name:           env.Name,
			Type:           string(env.Type),
			Budget:         env.Budget,
			StartingAmount: env.StartingAmount,
			FinalTarget:    env.FinalTarget,
			CategoryIDs:    categoryIDs,
		}
	}
	if settings != nil {
		doc.AISettings = &AISettings{
			Provider: settings.Provider,
			APIKey:   settings.APIKey,
			Model:    settings.Model,
			Enabled:  settings.Enabled,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// Import reads and validates a backup document, returning the restored
// collections.
func Import(r io.Reader) ([]model.Transaction, []model.Category, []model.Envelope, *model.AISettings, error) {
	// Decode into raw messages first so that a missing section can be
	// told apart from an empty one.
	var raw struct {
		Transactions json.RawMessage `json:"transactions"`
		Categories   json.RawMessage `json:"categories"`
		Envelopes    json.RawMessage `json:"envelopes"`
		AISettings   json.RawMessage `json:"aiSettings"`
	}

	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("invalid backup file: %w", err)
	}

	for name, section := range map[string]json.RawMessage{
		"transactions": raw.Transactions,
		"categories":   raw.Categories,
		"envelopes":    raw.Envelopes,
		"aiSettings":   raw.AISettings,
	} {
		if len(section) == 0 || string(section) == "null" {
			return nil, nil, nil, nil, fmt.Errorf("invalid backup file: missing required section %q", name)
		}
	}

	var doc Document
	if err := json.Unmarshal(raw.Transactions, &doc.Transactions); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("backup file is corrupted: transactions section: %w", err)
	}
	if err := json.Unmarshal(raw.Categories, &doc.Categories); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("backup file is corrupted: categories section: %w", err)
	}
	if err := json.Unmarshal(raw.Envelopes, &doc.Envelopes); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("backup file is corrupted: envelopes section: %w", err)
	}
	if err := json.Unmarshal(raw.AISettings, &doc.AISettings); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("backup file is corrupted: aiSettings section: %w", err)
	}

	transactions := make([]model.Transaction, len(doc.Transactions))
	for i, txn := range doc.Transactions {
		date, err := model.ParseDate(txn.Date)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("transaction %s: %w", txn.ID, err)
		}
		categoryID := txn.CategoryID
		if categoryID == "" {
			categoryID = model.UncategorizedID
		}
		transactions[i] = model.Transaction{
			ID:            txn.ID,
			Date:          date,
			Payee:         txn.Payee,
			Description:   txn.Description,
			CategoryID:    categoryID,
			Type:          model.TransactionType(txn.Type),
			Amount:        txn.Amount,
			PaymentMethod: txn.PaymentMethod,
		}
	}

	categories := make([]model.Category, len(doc.Categories))
	for i, cat := range doc.Categories {
		categories[i] = model.Category{
			ID:         cat.ID,
			Name:       cat.Name,
			Color:      cat.Color,
			IsIncome:   cat.IsIncome,
			IsTransfer: cat.IsTransfer,
		}
	}

	envelopes := make([]model.Envelope, len(doc.Envelopes))
	for i, env := range doc.Envelopes {
		envelopes[i] = model.Envelope{
			ID:             env.ID,
			Name:           env.Name,
			Type:           model.EnvelopeType(env.Type),
			Budget:         env.Budget,
			StartingAmount: env.StartingAmount,
			FinalTarget:    env.FinalTarget,
			CategoryIDs:    env.CategoryIDs,
		}
	}

	var settings *model.AISettings
	if doc.AISettings != nil {
		settings = &model.AISettings{
			Provider: doc.AISettings.Provider,
			APIKey:   doc.AISettings.APIKey,
			Model:    doc.AISettings.Model,
			Enabled:  doc.AISettings.Enabled,
		}
	}

	return transactions, categories, envelopes, settings, nil
}
