package model

// AISettings configures the category suggestion provider.
type AISettings struct {
	Provider string
	APIKey   string
	Model    string
	Enabled  bool
}
