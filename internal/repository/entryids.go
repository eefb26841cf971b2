package repo

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bugout/internal/bus"
)

// EntryIDRepository keeps the last acknowledged entry id per topic for each
// consumer group. It satisfies bus.Checkpointer.
type EntryIDRepository struct {
	client redis.Cmdable
	keys   Keys
	log    *zap.SugaredLogger
}

func NewEntryIDRepository(client redis.Cmdable, keys Keys, log *zap.SugaredLogger) *EntryIDRepository {
	return &EntryIDRepository{client: client, keys: keys, log: log}
}

func (r *EntryIDRepository) Checkpoints(ctx context.Context, group string) (map[string]bus.EntryID, error) {
	raw, err := r.client.HGetAll(ctx, r.keys.EntryIDs(group)).Result()
	if err != nil {
		return nil, storeErr("load entry ids", err)
	}
	out := make(map[string]bus.EntryID, len(raw))
	for topic, s := range raw {
		id, err := bus.ParseEntryID(s)
		if err != nil {
			r.log.Warnw("ignoring corrupt checkpoint", "group", group, "topic", topic, "value", s)
			continue
		}
		out[topic] = id
	}
	return out, nil
}

func (r *EntryIDRepository) SaveCheckpoint(ctx context.Context, group, topic string, id bus.EntryID) error {
	if err := r.client.HSet(ctx, r.keys.EntryIDs(group), topic, id.String()).Err(); err != nil {
		return storeErr("save entry id", err)
	}
	return nil
}
