package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/halewood/envl/internal/cli"
	"github.com/halewood/envl/internal/common"
	"github.com/halewood/envl/internal/llm"
	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/service"
)

const defaultSuggestBatchSize = 25

func suggestCmd() *cobra.Command {
	var (
		apply     bool
		limit     int
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest categories for uncategorized transactions",
		Long: `Ask the configured AI provider to categorize the uncategorized backlog.
Suggestions are printed for review; pass --apply to write them to the
ledger. Configure the provider first with 'envl ai set'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			settings, err := loadAISettings(ctx, store)
			if err != nil {
				return err
			}
			suggester, err := llm.NewSuggesterFromSettings(settings)
			if err != nil {
				return err
			}

			pending, err := store.GetUncategorizedTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}
			if len(pending) == 0 {
				fmt.Println(cli.FormatInfo("Nothing to categorize."))
				return nil
			}
			if limit > 0 && len(pending) > limit {
				pending = pending[:limit]
			}

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if batchSize < 1 {
				batchSize = defaultSuggestBatchSize
			}
			assignments, err := collectSuggestions(cmd, suggester, pending, categories, batchSize)
			if err != nil {
				return err
			}
			if len(assignments) == 0 {
				fmt.Println(cli.FormatWarning("The model could not place any transactions."))
				return nil
			}

			printSuggestions(assignments, pending, categories)

			if !apply {
				fmt.Println(cli.SubtitleStyle.Render("Re-run with --apply to save these assignments."))
				return nil
			}

			if err := store.AssignCategories(ctx, assignments); err != nil {
				return fmt.Errorf("failed to apply assignments: %w", err)
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Categorized %d transactions", len(assignments))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "write the suggested categories to the ledger")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum transactions to process (0 for all)")
	cmd.Flags().IntVar(&batchSize, "batch-size", defaultSuggestBatchSize, "transactions per provider request")

	return cmd
}

// collectSuggestions walks the backlog in batches, retrying transient
// provider failures with backoff.
func collectSuggestions(cmd *cobra.Command, suggester llm.Suggester, pending []model.Transaction, categories []model.Category, batchSize int) ([]service.CategoryAssignment, error) {
	ctx := cmd.Context()
	bar := progressbar.Default(int64(len(pending)), "suggesting")

	var assignments []service.CategoryAssignment
	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		var batchResult []service.CategoryAssignment
		err := common.WithRetry(ctx, func() error {
			var sErr error
			batchResult, sErr = suggester.SuggestCategoriesBatch(ctx, batch, categories)
			return sErr
		}, service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		})
		if err != nil {
			return nil, fmt.Errorf("suggestion batch failed: %w", err)
		}

		assignments = append(assignments, batchResult...)
		_ = bar.Add(len(batch))
	}

	return assignments, nil
}

// suggestSingleCategory asks the provider to place one transaction. A
// declined suggestion falls back to uncategorized instead of failing the
// add.
func suggestSingleCategory(ctx context.Context, store service.Storage, payee, description string) (string, error) {
	settings, err := loadAISettings(ctx, store)
	if err != nil {
		return "", err
	}
	suggester, err := llm.NewSuggesterFromSettings(settings)
	if err != nil {
		return "", err
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get categories: %w", err)
	}

	id, err := suggester.SuggestCategory(ctx, payee, description, categories)
	if errors.Is(err, common.ErrNoSuggestion) {
		fmt.Println(cli.FormatInfo("No suggestion available, leaving uncategorized."))
		return model.UncategorizedID, nil
	}
	if err != nil {
		return "", fmt.Errorf("suggestion failed: %w", err)
	}
	return id, nil
}

func printSuggestions(assignments []service.CategoryAssignment, pending []model.Transaction, categories []model.Category) {
	payees := make(map[string]string, len(pending))
	for i := range pending {
		payees[pending[i].ID] = pending[i].Payee
	}
	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Transaction"),
		cli.TableHeaderStyle.Render("Payee"),
		cli.TableHeaderStyle.Render("Suggested Category"))
	for _, a := range assignments {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			cli.SubtleStyle.Render(a.TransactionID), payees[a.TransactionID], names[a.CategoryID])
	}
	_ = w.Flush()
}
