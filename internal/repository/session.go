package repo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"bugout/internal/domain"
	errs "bugout/internal/errors"
)

// Session is the stored view of a gateway websocket session.
type Session struct {
	ID          domain.SessionID
	ClientID    domain.ClientID
	CurrentGame *domain.GameID
	LastPongAt  time.Time
}

type RedisSessionStorage struct {
	client redis.Cmdable
	keys   Keys
	ttl    time.Duration
}

func NewSessionRedisStorage(client redis.Cmdable, keys Keys, ttl time.Duration) *RedisSessionStorage {
	return &RedisSessionStorage{
		client: client,
		keys:   keys,
		ttl:    ttl,
	}
}

func (r *RedisSessionStorage) StoreSession(ctx context.Context, s Session) error {
	key := r.keys.Session(s.ID)
	fields := map[string]interface{}{
		"client_id":    s.ClientID.String(),
		"last_pong_at": strconv.FormatInt(s.LastPongAt.UnixMilli(), 10),
	}
	if s.CurrentGame != nil {
		fields["current_game"] = s.CurrentGame.String()
	}
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fields)
		p.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return storeErr("store session", err)
	}
	return nil
}

func (r *RedisSessionStorage) GetSession(ctx context.Context, id domain.SessionID) (Session, error) {
	fields, err := r.client.HGetAll(ctx, r.keys.Session(id)).Result()
	if err != nil {
		return Session{}, storeErr("get session", err)
	}
	if len(fields) == 0 {
		return Session{}, fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}
	s := Session{ID: id}
	if s.ClientID, err = domain.ParseClientID(fields["client_id"]); err != nil {
		return Session{}, fmt.Errorf("%w: session %s: %w", errs.ErrMalformedPayload, id, err)
	}
	if raw, ok := fields["current_game"]; ok {
		gid, err := domain.ParseGameID(raw)
		if err != nil {
			return Session{}, fmt.Errorf("%w: session %s: %w", errs.ErrMalformedPayload, id, err)
		}
		s.CurrentGame = &gid
	}
	if ms, err := strconv.ParseInt(fields["last_pong_at"], 10, 64); err == nil {
		s.LastPongAt = time.UnixMilli(ms)
	}
	return s, nil
}

// SetCurrentGame records the game the session is playing.
func (r *RedisSessionStorage) SetCurrentGame(ctx context.Context, id domain.SessionID, game domain.GameID) error {
	return r.setField(ctx, id, "current_game", game.String())
}

func (r *RedisSessionStorage) TouchPong(ctx context.Context, id domain.SessionID, at time.Time) error {
	return r.setField(ctx, id, "last_pong_at", strconv.FormatInt(at.UnixMilli(), 10))
}

func (r *RedisSessionStorage) setField(ctx context.Context, id domain.SessionID, field, value string) error {
	key := r.keys.Session(id)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, field, value)
		p.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return storeErr("update session", err)
	}
	return nil
}

func (r *RedisSessionStorage) DeleteSession(ctx context.Context, id domain.SessionID) error {
	if err := r.client.Del(ctx, r.keys.Session(id)).Err(); err != nil {
		return storeErr("delete session", err)
	}
	return nil
}
