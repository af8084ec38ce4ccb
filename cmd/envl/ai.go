package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halewood/envl/internal/cli"
	"github.com/halewood/envl/internal/llm"
)

func aiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Configure AI category suggestions",
	}

	cmd.AddCommand(aiSetCmd())
	cmd.AddCommand(aiShowCmd())
	cmd.AddCommand(aiTestCmd())

	return cmd
}

func aiSetCmd() *cobra.Command {
	var (
		provider string
		apiKey   string
		model    string
		disable  bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set AI provider settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			settings, err := store.GetAISettings(ctx)
			if err != nil {
				return fmt.Errorf("failed to get AI settings: %w", err)
			}

			if provider != "" {
				settings.Provider = provider
			}
			if apiKey != "" {
				settings.APIKey = apiKey
			}
			if cmd.Flags().Changed("model") {
				settings.Model = model
			}
			settings.Enabled = !disable && settings.APIKey != ""

			if err := store.SaveAISettings(ctx, settings); err != nil {
				return fmt.Errorf("failed to save AI settings: %w", err)
			}

			if settings.Enabled {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("AI suggestions enabled (%s)", settings.Provider)))
			} else {
				fmt.Println(cli.FormatInfo("AI suggestions disabled"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "AI provider (gemini, openai)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "provider API key")
	cmd.Flags().StringVar(&model, "model", "", "model name (empty for the provider default)")
	cmd.Flags().BoolVar(&disable, "disable", false, "turn suggestions off")

	return cmd
}

func aiShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show AI provider settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			settings, err := store.GetAISettings(ctx)
			if err != nil {
				return fmt.Errorf("failed to get AI settings: %w", err)
			}

			state := cli.ErrorStyle.Render("disabled")
			if settings.Enabled {
				state = cli.SuccessStyle.Render("enabled")
			}
			key := "(not set)"
			if settings.APIKey != "" {
				key = "(set)"
			}
			model := settings.Model
			if model == "" {
				model = "(provider default)"
			}

			fmt.Printf("Status:   %s\n", state)
			fmt.Printf("Provider: %s\n", settings.Provider)
			fmt.Printf("Model:    %s\n", model)
			fmt.Printf("API key:  %s\n", key)
			return nil
		},
	}
}

func aiTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Verify the configured API key",
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

			if err := suggester.TestKey(ctx); err != nil {
				fmt.Println(cli.FormatError("API key test failed: " + err.Error()))
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s API key is valid", settings.Provider)))
			return nil
		},
	}
}
