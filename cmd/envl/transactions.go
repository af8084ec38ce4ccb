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

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage transactions",
		Long:  `List, add, recategorize, and delete ledger transactions.`,
	}

	cmd.AddCommand(listTxCmd())
	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(editTxCmd())
	cmd.AddCommand(setCategoryCmd())
	cmd.AddCommand(deleteTxCmd())

	return cmd
}

func listTxCmd() *cobra.Command {
	var (
		periodFlag    string
		dateFlag      string
		stepFlag      int
		fromFlag      string
		toFlag        string
		uncategorized bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long:  `Display transactions for the selected period, newest first. Pass --from and --to to list an explicit date range instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var txns []model.Transaction
			switch {
			case uncategorized:
				txns, err = store.GetUncategorizedTransactions(ctx)
				if err != nil {
					return fmt.Errorf("failed to get transactions: %w", err)
				}
			case fromFlag != "" || toFlag != "":
				filter, fErr := explicitFilter(fromFlag, toFlag)
				if fErr != nil {
					return fErr
				}
				txns, err = store.GetTransactions(ctx, filter)
				if err != nil {
					return fmt.Errorf("failed to get transactions: %w", err)
				}
			default:
				period, rng, rErr := resolveRange(ctx, store, periodFlag, dateFlag, stepFlag)
				if rErr != nil {
					return rErr
				}
				all, gErr := store.GetTransactions(ctx, filterFor(rng))
				if gErr != nil {
					return fmt.Errorf("failed to get transactions: %w", gErr)
				}
				txns = all
				fmt.Println(cli.FormatTitle("Transactions " + rng.Label(period)))
			}

			if len(txns) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions found."))
				return nil
			}

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			names := make(map[string]string, len(categories))
			for _, cat := range categories {
				names[cat.ID] = cat.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Date"),
				cli.TableHeaderStyle.Render("Payee"),
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Amount"),
				cli.TableHeaderStyle.Render("ID"))

			for i := range txns {
				txn := &txns[i]
				amount := cli.ErrorStyle.Render(cli.Money(txn.Amount))
				if txn.Type == model.Credit {
					amount = cli.SuccessStyle.Render(cli.SignedMoney(txn.Amount))
				}
				name := names[txn.CategoryID]
				if name == "" {
					name = cli.SubtleStyle.Render("(unknown)")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					txn.DateString(), txn.Payee, name, amount, cli.SubtleStyle.Render(txn.ID))
			}
			_ = w.Flush()

			renderCount(len(txns), "transaction")
			return nil
		},
	}

	cmd.Flags().StringVar(&periodFlag, "period", "month", "period to list (day, week, month, year)")
	cmd.Flags().StringVar(&dateFlag, "date", "", "anchor date in YYYY-MM-DD (default: latest transaction)")
	cmd.Flags().IntVar(&stepFlag, "step", 0, "move this many periods from the anchor")
	cmd.Flags().StringVar(&fromFlag, "from", "", "start date in YYYY-MM-DD (overrides --period)")
	cmd.Flags().StringVar(&toFlag, "to", "", "end date in YYYY-MM-DD (overrides --period)")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "only show uncategorized transactions")

	return cmd
}

func addTxCmd() *cobra.Command {
	var (
		dateFlag     string
		description  string
		categoryFlag string
		method       string
		credit       bool
		suggest      bool
	)

	cmd := &cobra.Command{
		Use:   "add <payee> <amount>",
		Short: "Add a transaction",
		Long: `Record a single transaction. Amounts are positive magnitudes; use
--credit for money in. With --suggest the configured AI provider picks
the category from the payee and description.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			amount, err := parseAmountArg(args[1])
			if err != nil {
				return err
			}

			date, err := model.ParseDate(dateFlag)
			if err != nil {
				return err
			}

			categoryID := model.UncategorizedID
			switch {
			case categoryFlag != "":
				cat, cErr := resolveCategoryArg(ctx, store, categoryFlag)
				if cErr != nil {
					return cErr
				}
				categoryID = cat.ID
			case suggest:
				id, sErr := suggestSingleCategory(ctx, store, args[0], description)
				if sErr != nil {
					return sErr
				}
				categoryID = id
			}

			txnType := model.Debit
			if credit {
				txnType = model.Credit
			}

			txn := model.Transaction{
				ID:            uuid.NewString(),
				Date:          date,
				Payee:         args[0],
				Description:   description,
				CategoryID:    categoryID,
				Type:          txnType,
				Amount:        amount,
				PaymentMethod: method,
			}

			if err := store.SaveTransactions(ctx, []model.Transaction{txn}); err != nil {
				return fmt.Errorf("failed to save transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %s %s on %s",
				cli.Money(txn.Amount), txn.Payee, txn.DateString())))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "transaction date in YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&description, "description", "", "optional description")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "category id or name")
	cmd.Flags().StringVar(&method, "method", "Unknown", "payment method")
	cmd.Flags().BoolVar(&credit, "credit", false, "record money coming in instead of going out")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "ask the AI provider to pick the category")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func editTxCmd() *cobra.Command {
	var (
		payee       string
		amountFlag  string
		dateFlag    string
		description string
		method      string
		typeFlag    string
	)

	cmd := &cobra.Command{
		Use:   "edit <transaction-id>",
		Short: "Edit a transaction",
		Long:  `Change fields on an existing transaction. Only the flags you pass are updated.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := store.GetTransaction(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get transaction: %w", err)
			}

			if cmd.Flags().Changed("payee") {
				txn.Payee = payee
			}
			if cmd.Flags().Changed("amount") {
				amount, aErr := parseAmountArg(amountFlag)
				if aErr != nil {
					return aErr
				}
				txn.Amount = amount
			}
			if cmd.Flags().Changed("date") {
				date, dErr := model.ParseDate(dateFlag)
				if dErr != nil {
					return dErr
				}
				txn.Date = date
			}
			if cmd.Flags().Changed("description") {
				txn.Description = description
			}
			if cmd.Flags().Changed("method") {
				txn.PaymentMethod = method
			}
			if cmd.Flags().Changed("type") {
				switch typeFlag {
				case string(model.Credit):
					txn.Type = model.Credit
				case string(model.Debit):
					txn.Type = model.Debit
				default:
					return fmt.Errorf("invalid type %q, expected Credit or Debit", typeFlag)
				}
			}

			if err := store.UpdateTransaction(ctx, txn); err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated %s %s on %s",
				cli.Money(txn.Amount), txn.Payee, txn.DateString())))
			return nil
		},
	}

	cmd.Flags().StringVar(&payee, "payee", "", "new payee")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "new amount")
	cmd.Flags().StringVar(&dateFlag, "date", "", "new date in YYYY-MM-DD")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&method, "method", "", "new payment method")
	cmd.Flags().StringVar(&typeFlag, "type", "", "Credit or Debit")

	return cmd
}

func setCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-category <transaction-id> <category>",
		Short: "Assign a transaction to a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := resolveCategoryArg(ctx, store, args[1])
			if err != nil {
				return err
			}

			if err := store.AssignCategory(ctx, args[0], cat.ID); err != nil {
				return fmt.Errorf("failed to assign category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Moved transaction to %s", cat.Name)))
			return nil
		},
	}
}

func deleteTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>...",
		Short: "Delete transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 1 {
				if err := store.DeleteTransaction(ctx, args[0]); err != nil {
					return fmt.Errorf("failed to delete transaction: %w", err)
				}
			} else if err := store.DeleteTransactions(ctx, args); err != nil {
				return fmt.Errorf("failed to delete transactions: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted %d transaction(s)", len(args))))
			return nil
		},
	}
}
