package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bugout/internal/domain"
	errs "bugout/internal/errors"
	"bugout/internal/utils"
)

// Publisher appends entries to streams, trimming each stream to roughly
// maxLen entries. Durable topics are retried along Backoff; everything else
// gets a single attempt and is dropped with a warning on failure.
type Publisher struct {
	client  redis.Cmdable
	maxLen  int64
	durable map[string]bool
	backoff []time.Duration
	log     *zap.SugaredLogger
}

func NewPublisher(client redis.Cmdable, topics Topics, maxLen int64, log *zap.SugaredLogger) *Publisher {
	durable := make(map[string]bool)
	for _, t := range topics.Durable() {
		durable[t] = true
	}
	return &Publisher{
		client:  client,
		maxLen:  maxLen,
		durable: durable,
		backoff: Backoff,
		log:     log,
	}
}

// WithBackoff replaces the retry schedule for durable topics.
func (p *Publisher) WithBackoff(schedule []time.Duration) *Publisher {
	p.backoff = schedule
	return p
}

// Publish appends values to topic and returns the assigned entry id. An
// error is returned only when a durable publish exhausts its retries.
func (p *Publisher) Publish(ctx context.Context, topic string, values map[string]interface{}) (string, error) {
	var id string
	add := func() error {
		var err error
		id, err = p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: topic,
			MaxLen: p.maxLen,
			Approx: true,
			Values: values,
		}).Result()
		return err
	}

	if !p.durable[topic] {
		if err := add(); err != nil {
			p.log.Warnw("publish dropped", "topic", topic, "error", err)
			return "", nil
		}
		return id, nil
	}

	err := Retry(ctx, p.backoff, func() error {
		if err := add(); err != nil {
			p.log.Warnw("publish failed, retrying", "topic", topic, "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: publish %s: %w", errs.ErrBusTransport, topic, err)
	}
	return id, nil
}

// PublishJSON publishes v as JSON under the given partition key.
func (p *Publisher) PublishJSON(ctx context.Context, topic, key string, v interface{}) error {
	data, err := utils.EncodeJSON(v)
	if err != nil {
		return err
	}
	_, err = p.Publish(ctx, topic, map[string]interface{}{
		FieldKey:  key,
		FieldData: data,
	})
	return err
}

// PublishGameState publishes a binary game state, as the changelog does.
func (p *Publisher) PublishGameState(ctx context.Context, topic string, gameID domain.GameID, state domain.GameState) error {
	_, err := p.Publish(ctx, topic, map[string]interface{}{
		FieldGameID: gameID.String(),
		FieldData:   domain.MarshalGameState(state),
	})
	return err
}
