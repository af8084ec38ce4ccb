package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halewood/envl/internal/backup"
	"github.com/halewood/envl/internal/cli"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and import full-data backups",
	}

	cmd.AddCommand(backupExportCmd())
	cmd.AddCommand(backupImportCmd())

	return cmd
}

func backupExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write all data to a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, categories, envelopes, err := loadLedger(ctx, store)
			if err != nil {
				return err
			}
			settings, err := store.GetAISettings(ctx)
			if err != nil {
				return fmt.Errorf("failed to get AI settings: %w", err)
			}

			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			defer func() { _ = file.Close() }()

			if err := backup.Export(file, txns, categories, envelopes, settings); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Exported %d transactions, %d categories, %d envelopes to %s",
				len(txns), len(categories), len(envelopes), args[0])))
			return nil
		},
	}
}

func backupImportCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data from a backup file",
		Long:  `Restore a backup, replacing everything currently in the database. A malformed backup leaves existing data untouched.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = file.Close() }()

			txns, categories, envelopes, settings, err := backup.Import(file)
			if err != nil {
				return err
			}

			if !force && !confirm(fmt.Sprintf(
				"Replace ALL current data with %d transactions, %d categories, %d envelopes?",
				len(txns), len(categories), len(envelopes))) {
				fmt.Println(cli.FormatInfo("Import canceled."))
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ReplaceAll(ctx, txns, categories, envelopes, settings); err != nil {
				return fmt.Errorf("failed to restore backup: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Backup restored."))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")

	return cmd
}

func resetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data and restore defaults",
		Long:  `Remove every transaction, category, and envelope, then reseed the default categories. This cannot be undone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !force && !confirm("Delete ALL budget data? This cannot be undone.") {
				fmt.Println(cli.FormatInfo("Reset canceled."))
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Reset(ctx); err != nil {
				return fmt.Errorf("failed to reset data: %w", err)
			}

			fmt.Println(cli.FormatSuccess("All data deleted, defaults restored."))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")

	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// initStorage migrates on open.
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			count, err := store.CountTransactions(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Database is up to date (%d transactions).", count)))
			return nil
		},
	}
}

// confirm asks a yes/no question on stdin.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", cli.WarningStyle.Render(question))

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
