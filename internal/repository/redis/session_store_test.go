package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/internal/repository/contract"
)

// Requires a live Redis; skipped unless REDIS_URL is set.
func TestRedisSessionStoreIntegration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	opt, err := goredis.ParseURL(url)
	require.NoError(t, err)
	client := goredis.NewClient(opt)

	ctx := context.Background()
	_, err = client.Ping(ctx).Result()
	require.NoError(t, err, "Failed to connect to Redis")

	store := NewSessionStore(client)
	sessionID := "it-" + time.Now().UTC().Format("20060102150405.000")
	defer client.Del(ctx, turnsKey(sessionID), flagsKey(sessionID))

	require.NoError(t, store.AppendTurn(ctx, sessionID, contract.Turn{
		Role: constant.ChatRoleUser, Text: "hello", Timestamp: time.Now().UTC(),
	}))
	require.NoError(t, store.AppendTurn(ctx, sessionID, contract.Turn{
		Role: constant.ChatRoleAssistant, Text: "hi there", Timestamp: time.Now().UTC(),
	}))

	turns, err := store.History(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "hello", turns[0].Text)
	assert.Equal(t, constant.ChatRoleAssistant, turns[1].Role)

	flags, err := store.Flags(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, flags)

	require.NoError(t, store.MarkFlag(ctx, sessionID, constant.FlagHobbiesMentioned))
	flags, err = store.Flags(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, flags[constant.FlagHobbiesMentioned])
}
