package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/halewood/envl/internal/config"
	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/service"
	"github.com/halewood/envl/internal/storage"
	"github.com/halewood/envl/internal/timeframe"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// resolveRange turns --period/--date/--step flags into a concrete date
// range. An empty date means the latest transaction date, falling back to
// today for an empty ledger.
func resolveRange(ctx context.Context, store service.Storage, periodFlag, dateFlag string, step int) (timeframe.Period, timeframe.Range, error) {
	period, err := timeframe.ParsePeriod(periodFlag)
	if err != nil {
		return "", timeframe.Range{}, err
	}

	var anchor time.Time
	if dateFlag != "" {
		anchor, err = model.ParseDate(dateFlag)
		if err != nil {
			return "", timeframe.Range{}, err
		}
	} else {
		txns, err := store.GetTransactions(ctx, service.TransactionFilter{})
		if err != nil {
			return "", timeframe.Range{}, err
		}
		anchor = timeframe.LatestDate(txns)
	}

	for ; step > 0; step-- {
		anchor = timeframe.Step(period, anchor, 1)
	}
	for ; step < 0; step++ {
		anchor = timeframe.Step(period, anchor, -1)
	}

	return period, timeframe.Resolve(period, anchor), nil
}

// loadLedger fetches the collections most commands need together.
func loadLedger(ctx context.Context, store service.Storage) ([]model.Transaction, []model.Category, []model.Envelope, error) {
	txns, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	categories, err := store.GetCategories(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get categories: %w", err)
	}
	envelopes, err := store.GetEnvelopes(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get envelopes: %w", err)
	}
	return txns, categories, envelopes, nil
}

// filterFor converts a resolved range into a storage-level date filter.
func filterFor(rng timeframe.Range) service.TransactionFilter {
	start, end := rng.Start, rng.End
	return service.TransactionFilter{StartDate: &start, EndDate: &end}
}

// loadAISettings reads stored AI settings and overlays any ai.* config
// keys, so a provider key in config.yaml or ENVL_AI_API_KEY wins over the
// database.
func loadAISettings(ctx context.Context, store service.Storage) (*model.AISettings, error) {
	settings, err := store.GetAISettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get AI settings: %w", err)
	}

	if v := viper.GetString("ai.provider"); v != "" {
		settings.Provider = v
	}
	if v := viper.GetString("ai.api_key"); v != "" {
		settings.APIKey = v
		settings.Enabled = true
	}
	if v := viper.GetString("ai.model"); v != "" {
		settings.Model = v
	}
	if viper.IsSet("ai.enabled") {
		settings.Enabled = viper.GetBool("ai.enabled")
	}

	return settings, nil
}

// explicitFilter builds a date filter from --from/--to flags. Either side
// may be empty for an open-ended range; bounds are inclusive.
func explicitFilter(from, to string) (service.TransactionFilter, error) {
	var filter service.TransactionFilter
	if from != "" {
		start, err := model.ParseDate(from)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &start
	}
	if to != "" {
		end, err := model.ParseDate(to)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &end
	}
	return filter, nil
}

// parseAmountArg parses a positive dollar amount from a command argument.
func parseAmountArg(arg string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimPrefix(arg, "$"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", arg)
	}
	if amount < 0 {
		return 0, fmt.Errorf("amount must be positive; use --credit for money in")
	}
	return amount, nil
}

// normalizeName folds a category name for case-insensitive lookup.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// resolveCategoryList resolves category ids or names, failing on the first
// unknown entry.
func resolveCategoryList(ctx context.Context, store service.Storage, args []string) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		cat, err := resolveCategoryArg(ctx, store, arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, cat.ID)
	}
	return ids, nil
}

// resolveCategoryArg accepts either a category id or name and returns the
// matching category.
func resolveCategoryArg(ctx context.Context, store service.Storage, arg string) (*model.Category, error) {
	if cat, err := store.GetCategory(ctx, arg); err == nil {
		return cat, nil
	}
	cat, err := store.GetCategoryByName(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("no category with id or name %q", arg)
	}
	return cat, nil
}
