package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/halewood/envl/internal/cli"
	"github.com/halewood/envl/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List, add, update, and delete the categories transactions are sorted into.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Color"),
				cli.TableHeaderStyle.Render("Flags"))

			for _, cat := range categories {
				var flags string
				switch {
				case cat.IsIncome:
					flags = cli.SuccessStyle.Render("income")
				case cat.IsTransfer:
					flags = cli.InfoStyle.Render("transfer")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cat.ID, cat.Name, cat.Color, flags)
			}
			_ = w.Flush()

			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		color    string
		income   bool
		transfer bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long:  `Create a new category. A display color is assigned automatically unless --color is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat := model.Category{
				ID:         "cat-" + uuid.NewString(),
				Name:       args[0],
				Color:      color,
				IsIncome:   income,
				IsTransfer: transfer,
			}

			if err := store.CreateCategory(ctx, &cat); err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %s (%s)", cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "display color as a hex value")
	cmd.Flags().BoolVar(&income, "income", false, "mark as the income category")
	cmd.Flags().BoolVar(&transfer, "transfer", false, "mark as a transfer category")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		name     string
		color    string
		income   bool
		transfer bool
	)

	cmd := &cobra.Command{
		Use:   "update <id-or-name>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := resolveCategoryArg(ctx, store, args[0])
			if err != nil {
				return err
			}

			if name != "" {
				cat.Name = name
			}
			if color != "" {
				cat.Color = color
			}
			if cmd.Flags().Changed("income") {
				cat.IsIncome = income
			}
			if cmd.Flags().Changed("transfer") {
				cat.IsTransfer = transfer
			}

			if err := store.UpdateCategory(ctx, cat); err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated category %s", cat.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new display color")
	cmd.Flags().BoolVar(&income, "income", false, "set or clear the income flag")
	cmd.Flags().BoolVar(&transfer, "transfer", false, "set or clear the transfer flag")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Delete a category",
		Long:  `Delete a category. Its transactions move to Uncategorized and envelopes stop tracking it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := resolveCategoryArg(ctx, store, args[0])
			if err != nil {
				return err
			}

			if err := store.DeleteCategory(ctx, cat.ID); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted category %s", cat.Name)))
			return nil
		},
	}
}
