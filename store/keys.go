package store

import (
	"context"
	"strings"
)

// Key names are shared with data written by earlier app versions and must
// not change.
const (
	plansPrefix       = "plans_"
	historyPrefix     = "workout_history_"
	preferencesPrefix = "user_preferences_"
	cachePrefix       = "cache_"

	AppSettingsKey = "app_settings"
)

func PlansKey(userID string) string {
	return plansPrefix + userID
}

func HistoryKey(userID string) string {
	return historyPrefix + userID
}

func PreferencesKey(userID string) string {
	return preferencesPrefix + userID
}

func CacheKey(key string) string {
	return cachePrefix + key
}

// ClearCache removes every cache_ entry from kv and returns how many keys
// were removed.
func ClearCache(ctx context.Context, kv KV) (int, error) {
	keys, err := kv.ListKeys(ctx)
	if err != nil {
		return 0, err
	}

	var removed int

	for _, k := range keys {
		if !strings.HasPrefix(k, cachePrefix) {
			continue
		}

		if err := kv.Remove(ctx, k); err != nil {
			return removed, err
		}

		removed++
	}

	return removed, nil
}
