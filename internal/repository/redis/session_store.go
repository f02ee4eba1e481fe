package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"portfolio-chat-be/internal/repository/contract"
)

// SessionStore persists conversations in Redis so history survives restarts.
// Turns live in a list (one JSON document per turn), flags in a hash.
type SessionStore struct {
	client *goredis.Client
}

func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func turnsKey(sessionID string) string {
	return "chat:session:" + sessionID + ":turns"
}

func flagsKey(sessionID string) string {
	return "chat:session:" + sessionID + ":flags"
}

func (s *SessionStore) AppendTurn(ctx context.Context, sessionID string, turn contract.Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	if err := s.client.RPush(ctx, turnsKey(sessionID), payload).Err(); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (s *SessionStore) History(ctx context.Context, sessionID string) ([]contract.Turn, error) {
	raw, err := s.client.LRange(ctx, turnsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	turns := make([]contract.Turn, 0, len(raw))
	for _, item := range raw {
		var turn contract.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			// A corrupt entry should not wipe out the rest of the history.
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *SessionStore) Flags(ctx context.Context, sessionID string) (map[string]bool, error) {
	raw, err := s.client.HGetAll(ctx, flagsKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	flags := make(map[string]bool, len(raw))
	for name, value := range raw {
		flags[name] = value == "1"
	}
	return flags, nil
}

func (s *SessionStore) MarkFlag(ctx context.Context, sessionID, name string) error {
	if err := s.client.HSet(ctx, flagsKey(sessionID), name, "1").Err(); err != nil {
		return fmt.Errorf("mark flag: %w", err)
	}
	return nil
}
