package redisstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	identityRepo "quarry/internal/domain/repositories/identity"
)

const (
	shortcutKeyPrefix = "shortcuts:last_used:"
	shortcutKeyTTL    = 30 * 24 * time.Hour
	shortcutKeepCount = 20
)

// ShortcutRecorder keeps a per-user list of recently used prompt
// shortcuts in Redis. Best effort - callers log and swallow failures.
type ShortcutRecorder struct {
	client *redis.Client
	logger *slog.Logger
}

// NewShortcutRecorder creates a Redis-backed shortcut recorder.
func NewShortcutRecorder(client *redis.Client, logger *slog.Logger) identityRepo.ShortcutRecorder {
	return &ShortcutRecorder{client: client, logger: logger}
}

// RecordLastUsed prepends the given shortcut ids to the user's
// recently-used list and trims it to the keep window.
func (r *ShortcutRecorder) RecordLastUsed(ctx context.Context, userID string, shortcutIDs []string) error {
	if len(shortcutIDs) == 0 {
		return nil
	}

	key := shortcutKeyPrefix + userID
	members := make([]interface{}, len(shortcutIDs))
	for i, id := range shortcutIDs {
		members[i] = id
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, members...)
	pipe.LTrim(ctx, key, 0, shortcutKeepCount-1)
	pipe.Expire(ctx, key, shortcutKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record last used shortcuts: %w", err)
	}

	return nil
}
