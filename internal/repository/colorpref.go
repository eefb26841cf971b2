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

const (
	fieldPlayers = "players"
	fieldChosen  = "chosen"
)

// ColorPrefRepository remembers client preferences, which game each client
// is in, and whether colors were already chosen for a game.
type ColorPrefRepository struct {
	client redis.Cmdable
	keys   Keys
}

func NewColorPrefRepository(client redis.Cmdable, keys Keys) *ColorPrefRepository {
	return &ColorPrefRepository{client: client, keys: keys}
}

func (r *ColorPrefRepository) SavePref(ctx context.Context, pref domain.SessionColorPref) error {
	raw, err := utils.EncodeJSON(pref)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.keys.ClientPref(pref.ClientID), raw, Expiry).Err(); err != nil {
		return storeErr("save color pref", err)
	}
	return nil
}

func (r *ColorPrefRepository) Pref(ctx context.Context, client domain.ClientID) (domain.SessionColorPref, bool, error) {
	raw, ok, err := getTouch(ctx, r.client, r.keys.ClientPref(client))
	if err != nil || !ok {
		return domain.SessionColorPref{}, false, err
	}
	var pref domain.SessionColorPref
	if err := utils.DecodeJSON([]byte(raw), &pref); err != nil {
		return domain.SessionColorPref{}, false, fmt.Errorf("color pref: %w", err)
	}
	return pref, true, nil
}

// ClearPrefs forgets the preferences of clients whose game got its colors.
func (r *ColorPrefRepository) ClearPrefs(ctx context.Context, clients ...domain.ClientID) error {
	if len(clients) == 0 {
		return nil
	}
	keys := make([]string, 0, len(clients))
	for _, c := range clients {
		keys = append(keys, r.keys.ClientPref(c))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return storeErr("clear color prefs", err)
	}
	return nil
}

// SaveGame links both players to the game.
func (r *ColorPrefRepository) SaveGame(ctx context.Context, id domain.GameID, players [2]domain.ClientID) error {
	raw, err := utils.EncodeJSON(players)
	if err != nil {
		return err
	}
	gameKey := r.keys.GameColorPref(id)
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, gameKey, fieldPlayers, raw)
		p.Expire(ctx, gameKey, Expiry)
		for _, c := range players {
			p.Set(ctx, r.keys.ClientGame(c), id.String(), Expiry)
		}
		return nil
	})
	if err != nil {
		return storeErr("save color game", err)
	}
	return nil
}

func (r *ColorPrefRepository) GameOf(ctx context.Context, client domain.ClientID) (domain.GameID, bool, error) {
	raw, ok, err := getTouch(ctx, r.client, r.keys.ClientGame(client))
	if err != nil || !ok {
		return domain.GameID{}, false, err
	}
	id, err := domain.ParseGameID(raw)
	if err != nil {
		return domain.GameID{}, false, fmt.Errorf("%w: client game: %w", errs.ErrMalformedPayload, err)
	}
	return id, true, nil
}

// Players returns both clients of a game and refreshes its TTL.
func (r *ColorPrefRepository) Players(ctx context.Context, id domain.GameID) ([2]domain.ClientID, bool, error) {
	var players [2]domain.ClientID
	key := r.keys.GameColorPref(id)
	var get *redis.StringCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.HGet(ctx, key, fieldPlayers)
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return players, false, storeErr("get color game", err)
	}
	raw, err := get.Bytes()
	if errors.Is(err, redis.Nil) {
		return players, false, nil
	}
	if err != nil {
		return players, false, storeErr("get color game", err)
	}
	if err := utils.DecodeJSON(raw, &players); err != nil {
		return players, false, fmt.Errorf("color game: %w", err)
	}
	return players, true, nil
}

// MarkChosen reports true only for the first caller on a game.
func (r *ColorPrefRepository) MarkChosen(ctx context.Context, id domain.GameID) (bool, error) {
	first, err := r.client.HSetNX(ctx, r.keys.GameColorPref(id), fieldChosen, "true").Result()
	if err != nil {
		return false, storeErr("mark colors chosen", err)
	}
	return first, nil
}

// getTouch reads a string key and refreshes its TTL in one round trip.
func getTouch(ctx context.Context, client redis.Cmdable, key string) (string, bool, error) {
	var get *redis.StringCmd
	_, err := client.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.Get(ctx, key)
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false, storeErr("get "+key, err)
	}
	raw, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("get "+key, err)
	}
	return raw, true, nil
}
