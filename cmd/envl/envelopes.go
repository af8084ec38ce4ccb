package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/halewood/envl/internal/cli"
	"github.com/halewood/envl/internal/model"
)

func envelopesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envelopes",
		Short: "Manage envelopes",
		Long: `List, add, update, and delete envelopes. Spending envelopes carry a
monthly budget; goal envelopes track contributions toward a target.`,
	}

	cmd.AddCommand(listEnvelopesCmd())
	cmd.AddCommand(addEnvelopeCmd())
	cmd.AddCommand(updateEnvelopeCmd())
	cmd.AddCommand(deleteEnvelopeCmd())

	return cmd
}

func listEnvelopesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all envelopes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			envelopes, err := store.GetEnvelopes(ctx)
			if err != nil {
				return fmt.Errorf("failed to get envelopes: %w", err)
			}

			if len(envelopes) == 0 {
				fmt.Println(cli.InfoStyle.Render("No envelopes yet. Use 'envl envelopes add' to create one."))
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
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Type"),
				cli.TableHeaderStyle.Render("Monthly"),
				cli.TableHeaderStyle.Render("Categories"))

			for i := range envelopes {
				env := &envelopes[i]
				catNames := make([]string, 0, len(env.CategoryIDs))
				for _, id := range env.CategoryIDs {
					if name, ok := names[id]; ok {
						catNames = append(catNames, name)
					}
				}
				budget := cli.Money(env.Budget)
				if env.Type == model.EnvelopeGoal && env.FinalTarget > 0 {
					budget += fmt.Sprintf(" → %s", cli.Money(env.FinalTarget))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					env.ID, env.Name, env.Type, budget, strings.Join(catNames, ", "))
			}
			_ = w.Flush()

			return nil
		},
	}
}

func addEnvelopeCmd() *cobra.Command {
	var (
		envType       string
		budget        float64
		starting      float64
		finalTarget   float64
		categoryNames []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categoryIDs, err := resolveCategoryList(ctx, store, categoryNames)
			if err != nil {
				return err
			}

			env := model.Envelope{
				ID:             "env-" + uuid.NewString(),
				Name:           args[0],
				Type:           model.EnvelopeType(envType),
				Budget:         budget,
				StartingAmount: starting,
				FinalTarget:    finalTarget,
				CategoryIDs:    categoryIDs,
			}

			if err := store.CreateEnvelope(ctx, &env); err != nil {
				return fmt.Errorf("failed to create envelope: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created envelope %s (%s)", env.Name, env.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&envType, "type", "spending", "envelope type (spending, goal)")
	cmd.Flags().Float64Var(&budget, "budget", 0, "monthly budget or contribution target")
	cmd.Flags().Float64Var(&starting, "starting", 0, "amount already saved (goal envelopes)")
	cmd.Flags().Float64Var(&finalTarget, "target", 0, "overall savings target (goal envelopes)")
	cmd.Flags().StringSliceVar(&categoryNames, "categories", nil, "category ids or names tracked by this envelope")

	return cmd
}

func updateEnvelopeCmd() *cobra.Command {
	var (
		name          string
		budget        float64
		starting      float64
		finalTarget   float64
		categoryNames []string
	)

	cmd := &cobra.Command{
		Use:   "update <envelope-id>",
		Short: "Update an envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			env, err := store.GetEnvelope(ctx, args[0])
			if err != nil {
				return err
			}

			if name != "" {
				env.Name = name
			}
			if cmd.Flags().Changed("budget") {
				env.Budget = budget
			}
			if cmd.Flags().Changed("starting") {
				env.StartingAmount = starting
			}
			if cmd.Flags().Changed("target") {
				env.FinalTarget = finalTarget
			}
			if cmd.Flags().Changed("categories") {
				env.CategoryIDs, err = resolveCategoryList(ctx, store, categoryNames)
				if err != nil {
					return err
				}
			}

			if err := store.UpdateEnvelope(ctx, env); err != nil {
				return fmt.Errorf("failed to update envelope: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated envelope %s", env.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().Float64Var(&budget, "budget", 0, "new monthly budget or contribution target")
	cmd.Flags().Float64Var(&starting, "starting", 0, "new starting amount")
	cmd.Flags().Float64Var(&finalTarget, "target", 0, "new overall savings target")
	cmd.Flags().StringSliceVar(&categoryNames, "categories", nil, "replace the tracked categories")

	return cmd
}

func deleteEnvelopeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <envelope-id>",
		Short: "Delete an envelope",
		Long:  `Delete an envelope. Transactions and categories are unaffected.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteEnvelope(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete envelope: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Deleted envelope " + args[0]))
			return nil
		},
	}
}
