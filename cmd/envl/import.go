package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/halewood/envl/internal/cli"
	"github.com/halewood/envl/internal/csvfile"
	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/ofx"
	"github.com/halewood/envl/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank exports",
	}

	cmd.AddCommand(importCSVCmd())
	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importCSVCmd() *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "csv <file>",
		Short: "Import a CSV export",
		Long: `Import transactions from a CSV bank export. Columns are matched to
fields by header name; use --column field=Header to override a guess,
for example --column payee=Merchant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = file.Close() }()

			mapping, err := parseColumnOverrides(args[0], columns)
			if err != nil {
				return err
			}

			result, err := csvfile.Parse(file, mapping)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			saved, err := saveCSVRows(ctx, store, result.Rows)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions from %s", saved, args[0])))
			if result.SkippedRows > 0 {
				fmt.Println(cli.FormatWarning(fmt.Sprintf(
					"Skipped %d rows with missing or invalid required data, starting at line %d",
					result.SkippedRows, result.FirstSkippedLine)))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&columns, "column", nil, "override a column guess as field=Header")

	return cmd
}

// parseColumnOverrides builds an explicit mapping from --column flags. With
// no overrides the mapping stays nil and is guessed from the header row.
func parseColumnOverrides(path string, overrides []string) (csvfile.Mapping, error) {
	if len(overrides) == 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	headers, err := csvfile.ReadHeader(file)
	if err != nil {
		return nil, err
	}

	mapping := csvfile.GuessMapping(headers)
	for _, override := range overrides {
		if err := mapping.Override(override, headers); err != nil {
			return nil, err
		}
	}
	return mapping, nil
}

// saveCSVRows stamps ids, resolves category names from the file against
// known categories (creating any the ledger has not seen), and saves the
// batch with a progress bar.
func saveCSVRows(ctx context.Context, store service.Storage, rows []csvfile.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get categories: %w", err)
	}
	byName := make(map[string]string, len(categories))
	for _, cat := range categories {
		byName[normalizeName(cat.Name)] = cat.ID
	}

	bar := progressbar.Default(int64(len(rows)), "importing")
	txns := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		txn := row.Transaction
		txn.ID = uuid.NewString()
		txn.CategoryID = model.UncategorizedID
		if row.CategoryName != "" {
			id, ok := byName[normalizeName(row.CategoryName)]
			if !ok {
				cat := &model.Category{ID: "cat-" + uuid.NewString(), Name: row.CategoryName}
				if cErr := store.CreateCategory(ctx, cat); cErr != nil {
					return 0, fmt.Errorf("failed to create category %q: %w", row.CategoryName, cErr)
				}
				id = cat.ID
				byName[normalizeName(row.CategoryName)] = id
			}
			txn.CategoryID = id
		}
		txns = append(txns, txn)
		_ = bar.Add(1)
	}

	if err := store.SaveTransactions(ctx, txns); err != nil {
		return 0, fmt.Errorf("failed to save transactions: %w", err)
	}
	return len(txns), nil
}

func importOFXCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ofx <file>",
		Short: "Import an OFX/QFX export",
		Long:  `Import transactions from an OFX or QFX bank export. Statement ids are kept, so re-importing the same file is idempotent.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = file.Close() }()

			txns, err := ofx.NewParser().ParseFile(ctx, file)
			if err != nil {
				return err
			}
			if len(txns) == 0 {
				fmt.Println(cli.FormatWarning("No transactions found in " + args[0]))
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			bar := progressbar.Default(int64(len(txns)), "importing")
			_ = bar.Add(len(txns))

			if err := store.SaveTransactions(ctx, txns); err != nil {
				return fmt.Errorf("failed to save transactions: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions from %s", len(txns), args[0])))
			return nil
		},
	}
}
