package repo

import (
	"context"

	"github.com/redis/go-redis/v9"

	"bugout/internal/domain"
)

const (
	fieldBlackIsBot = "black_is_bot"
	fieldWhiteIsBot = "white_is_bot"
)

type BotnessRepository struct {
	client redis.Cmdable
	keys   Keys
}

func NewBotnessRepository(client redis.Cmdable, keys Keys) *BotnessRepository {
	return &BotnessRepository{client: client, keys: keys}
}

// Get returns which colors are played by a bot. Unknown games have none.
func (r *BotnessRepository) Get(ctx context.Context, id domain.GameID) (domain.Botness, error) {
	key := r.keys.BotAttached(id)
	var all *redis.MapStringStringCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		all = p.HGetAll(ctx, key)
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil {
		return domain.Botness{}, storeErr("get botness", err)
	}
	fields := all.Val()
	return domain.Botness{
		BlackIsBot: fields[fieldBlackIsBot] == "true",
		WhiteIsBot: fields[fieldWhiteIsBot] == "true",
	}, nil
}

func (r *BotnessRepository) Attach(ctx context.Context, id domain.GameID, player domain.Player) error {
	field := fieldBlackIsBot
	if player == domain.White {
		field = fieldWhiteIsBot
	}
	key := r.keys.BotAttached(id)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, field, "true")
		p.Expire(ctx, key, Expiry)
		return nil
	})
	if err != nil {
		return storeErr("attach bot", err)
	}
	return nil
}
