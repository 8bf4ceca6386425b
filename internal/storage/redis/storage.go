package redis

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Lobby operations

func (s *Storage) SaveLobby(ctx context.Context, lobby *model.LobbySummary) error {
	return s.save(ctx, lobbyKey(lobby.ID), lobbyIndexKey(), lobby.ID, lobby, s.cfg.LobbyTTL)
}

func (s *Storage) GetLobby(ctx context.Context, id model.GameID) (*model.LobbySummary, error) {
	var lobby model.LobbySummary
	if err := s.get(ctx, lobbyKey(id), &lobby); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLobbyNotFound
		}
		return nil, err
	}
	return &lobby, nil
}

func (s *Storage) DeleteLobby(ctx context.Context, id model.GameID) error {
	return s.delete(ctx, lobbyKey(id), lobbyIndexKey(), id)
}

func (s *Storage) ListLobbies(ctx context.Context) ([]*model.LobbySummary, error) {
	lobbies, err := list[model.LobbySummary](ctx, s.client, lobbyIndexKey(), lobbyKey)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(lobbies, func(a, b *model.LobbySummary) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return lobbies, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.MatchSummary) error {
	return s.save(ctx, matchKey(match.ID), matchIndexKey(), match.ID, match, s.cfg.MatchTTL)
}

func (s *Storage) GetMatch(ctx context.Context, id model.GameID) (*model.MatchSummary, error) {
	var match model.MatchSummary
	if err := s.get(ctx, matchKey(id), &match); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.GameID) error {
	return s.delete(ctx, matchKey(id), matchIndexKey(), id)
}

func (s *Storage) ListMatches(ctx context.Context) ([]*model.MatchSummary, error) {
	matches, err := list[model.MatchSummary](ctx, s.client, matchIndexKey(), matchKey)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(matches, func(a, b *model.MatchSummary) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return matches, nil
}

func (s *Storage) Clear(ctx context.Context) error {
	for _, idx := range []struct {
		index string
		key   func(model.GameID) string
	}{
		{lobbyIndexKey(), lobbyKey},
		{matchIndexKey(), matchKey},
	} {
		ids, err := s.client.SMembers(ctx, idx.index).Result()
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(ids)+1)
		for _, id := range ids {
			keys = append(keys, idx.key(model.GameID(id)))
		}
		keys = append(keys, idx.index)
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// save stores value as JSON and adds id to the index in one pipeline
func (s *Storage) save(ctx context.Context, key, index string, id model.GameID, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, ttl)
	pipe.SAdd(ctx, index, string(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) get(ctx context.Context, key string, out any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (s *Storage) delete(ctx context.Context, key, index string, id model.GameID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, index, string(id))
	_, err := pipe.Exec(ctx)
	return err
}

// list loads every indexed entry. Ids whose value has expired are pruned from the index.
func list[T any](ctx context.Context, client *redis.Client, index string, key func(model.GameID) string) ([]*T, error) {
	ids, err := client.SMembers(ctx, index).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(model.GameID(id))
	}
	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(values))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, err
		}
		out = append(out, &item)
	}

	if len(stale) > 0 {
		if err := client.SRem(ctx, index, stale...).Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
