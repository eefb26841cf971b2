package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bugout/internal/domain"
	errs "bugout/internal/errors"
	"bugout/internal/utils"
)

// LobbyRepository holds the public waiting pool, a FIFO list, and the open
// private games.
type LobbyRepository struct {
	client redis.Cmdable
	keys   Keys
}

func NewLobbyRepository(client redis.Cmdable, keys Keys) *LobbyRepository {
	return &LobbyRepository{client: client, keys: keys}
}

// PopPublic removes the longest-waiting public game.
func (r *LobbyRepository) PopPublic(ctx context.Context) (domain.WaitingGame, bool, error) {
	raw, err := r.client.LPop(ctx, r.keys.WaitingPublic()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.WaitingGame{}, false, nil
	}
	if err != nil {
		return domain.WaitingGame{}, false, storeErr("pop waiting game", err)
	}
	var w domain.WaitingGame
	if err := utils.DecodeJSON(raw, &w); err != nil {
		return domain.WaitingGame{}, false, fmt.Errorf("waiting game: %w", err)
	}
	return w, true, nil
}

// PushPublic appends to the tail of the pool.
func (r *LobbyRepository) PushPublic(ctx context.Context, w domain.WaitingGame) error {
	return r.push(ctx, w, false)
}

// RestorePublic puts a game back at the head of the pool.
func (r *LobbyRepository) RestorePublic(ctx context.Context, w domain.WaitingGame) error {
	return r.push(ctx, w, true)
}

func (r *LobbyRepository) push(ctx context.Context, w domain.WaitingGame, front bool) error {
	raw, err := utils.EncodeJSON(w)
	if err != nil {
		return err
	}
	key := r.keys.WaitingPublic()
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if front {
			p.LPush(ctx, key, raw)
		} else {
			p.RPush(ctx, key, raw)
		}
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil {
		return storeErr("push waiting game", err)
	}
	return nil
}

func (r *LobbyRepository) PutPrivate(ctx context.Context, w domain.WaitingGame) error {
	if err := r.client.Set(ctx, r.keys.WaitingPrivate(w.GameID), w.ClientID.String(), Expiry).Err(); err != nil {
		return storeErr("put private game", err)
	}
	return nil
}

// GetPrivate returns the creator of an open private game.
func (r *LobbyRepository) GetPrivate(ctx context.Context, id domain.GameID) (domain.ClientID, bool, error) {
	key := r.keys.WaitingPrivate(id)
	var get *redis.StringCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.Get(ctx, key)
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.ClientID{}, false, storeErr("get private game", err)
	}
	raw, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return domain.ClientID{}, false, nil
	}
	if err != nil {
		return domain.ClientID{}, false, storeErr("get private game", err)
	}
	creator, err := domain.ParseClientID(raw)
	if err != nil {
		return domain.ClientID{}, false, fmt.Errorf("%w: private game %s: %w", errs.ErrMalformedPayload, id, err)
	}
	return creator, true, nil
}

func (r *LobbyRepository) DeletePrivate(ctx context.Context, id domain.GameID) error {
	if err := r.client.Del(ctx, r.keys.WaitingPrivate(id)).Err(); err != nil {
		return storeErr("delete private game", err)
	}
	return nil
}
