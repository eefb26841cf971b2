package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bugout/internal/domain"
	errs "bugout/internal/errors"
)

// GameStateRepository stores the binary GameState of each game. Only the
// changelog calls Put.
type GameStateRepository struct {
	client redis.Cmdable
	keys   Keys
}

func NewGameStateRepository(client redis.Cmdable, keys Keys) *GameStateRepository {
	return &GameStateRepository{client: client, keys: keys}
}

// Get loads a game and refreshes its TTL. A missing game is ErrGameNotFound.
func (r *GameStateRepository) Get(ctx context.Context, id domain.GameID) (domain.GameState, error) {
	key := r.keys.GameState(id)
	var get *redis.StringCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.Get(ctx, key)
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.GameState{}, storeErr("get game state", err)
	}
	data, err := get.Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.GameState{}, fmt.Errorf("%w: %s", errs.ErrGameNotFound, id)
	}
	if err != nil {
		return domain.GameState{}, storeErr("get game state", err)
	}
	state, err := domain.UnmarshalGameState(data)
	if err != nil {
		return domain.GameState{}, fmt.Errorf("%w: game %s: %w", errs.ErrMalformedPayload, id, err)
	}
	return state, nil
}

func (r *GameStateRepository) Exists(ctx context.Context, id domain.GameID) (bool, error) {
	n, err := r.client.Exists(ctx, r.keys.GameState(id)).Result()
	if err != nil {
		return false, storeErr("exists game state", err)
	}
	return n > 0, nil
}

func (r *GameStateRepository) Put(ctx context.Context, id domain.GameID, state domain.GameState) error {
	err := r.client.Set(ctx, r.keys.GameState(id), domain.MarshalGameState(state), Expiry).Err()
	if err != nil {
		return storeErr("put game state", err)
	}
	return nil
}
