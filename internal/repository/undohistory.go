package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bugout/internal/domain"
	"bugout/internal/utils"
)

// UndoHistoryRepository keeps the most recent accepted moves of a game,
// newest first, bounded by capacity. Reads refresh the TTL.
type UndoHistoryRepository struct {
	log      *zap.SugaredLogger
	client   redis.Cmdable
	keys     Keys
	capacity int64
}

func NewUndoHistoryRepository(log *zap.SugaredLogger, client redis.Cmdable, keys Keys, capacity int) *UndoHistoryRepository {
	return &UndoHistoryRepository{log: log, client: client, keys: keys, capacity: int64(capacity)}
}

// Push records a move unless its event id is already in the history.
// It reports whether the move was added.
func (r *UndoHistoryRepository) Push(ctx context.Context, m domain.MoveMade) (bool, error) {
	moves, err := r.list(ctx, m.GameID)
	if err != nil {
		return false, err
	}
	for _, seen := range moves {
		if seen.EventID == m.EventID {
			return false, nil
		}
	}
	raw, err := utils.EncodeJSON(m)
	if err != nil {
		return false, err
	}
	key := r.keys.UndoHistory(m.GameID)
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, raw)
		p.LTrim(ctx, key, 0, r.capacity-1)
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil {
		return false, storeErr("push undo history", err)
	}
	return true, nil
}

// Top returns the most recently accepted move.
func (r *UndoHistoryRepository) Top(ctx context.Context, id domain.GameID) (domain.MoveMade, bool, error) {
	key := r.keys.UndoHistory(id)
	var top *redis.StringCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		top = p.LIndex(ctx, key, 0)
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.MoveMade{}, false, storeErr("read undo history", err)
	}
	raw, err := top.Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.MoveMade{}, false, nil
	}
	if err != nil {
		return domain.MoveMade{}, false, storeErr("read undo history", err)
	}
	var m domain.MoveMade
	if err := utils.DecodeJSON(raw, &m); err != nil {
		return domain.MoveMade{}, false, fmt.Errorf("undo history: %w", err)
	}
	return m, true, nil
}

func (r *UndoHistoryRepository) Pop(ctx context.Context, id domain.GameID) error {
	key := r.keys.UndoHistory(id)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPop(ctx, key)
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return storeErr("pop undo history", err)
	}
	return nil
}

func (r *UndoHistoryRepository) Len(ctx context.Context, id domain.GameID) (int64, error) {
	key := r.keys.UndoHistory(id)
	var n *redis.IntCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		n = p.LLen(ctx, key)
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil {
		return 0, storeErr("undo history length", err)
	}
	return n.Val(), nil
}

func (r *UndoHistoryRepository) list(ctx context.Context, id domain.GameID) ([]domain.MoveMade, error) {
	raws, err := r.client.LRange(ctx, r.keys.UndoHistory(id), 0, -1).Result()
	if err != nil {
		return nil, storeErr("read undo history", err)
	}
	moves := make([]domain.MoveMade, 0, len(raws))
	for i, raw := range raws {
		var m domain.MoveMade
		if err := utils.DecodeJSON([]byte(raw), &m); err != nil {
			r.log.Warnw("skipping corrupt undo history entry", "game", id.String(), "index", i, "error", err)
			continue
		}
		moves = append(moves, m)
	}
	return moves, nil
}
