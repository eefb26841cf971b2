package bus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	errs "bugout/internal/errors"
)

// Checkpointer remembers the last acknowledged entry per topic for a
// consumer group, so a recreated group resumes where the old one stopped.
type Checkpointer interface {
	Checkpoints(ctx context.Context, group string) (map[string]EntryID, error)
	SaveCheckpoint(ctx context.Context, group, topic string, id EntryID) error
}

type ConsumerOpts struct {
	Group string
	Name  string
	Block time.Duration
	Count int64
}

// Consumer reads a set of topics through one consumer group. Entries that
// were delivered but never acknowledged are replayed before new ones.
type Consumer struct {
	client  redis.Cmdable
	topics  []string
	opts    ConsumerOpts
	ckpt    Checkpointer
	log     *zap.SugaredLogger
	backlog bool
}

func NewConsumer(client redis.Cmdable, topics []string, opts ConsumerOpts, ckpt Checkpointer, log *zap.SugaredLogger) *Consumer {
	if opts.Name == "" {
		opts.Name = "singleton"
	}
	if opts.Count <= 0 {
		opts.Count = 100
	}
	return &Consumer{
		client:  client,
		topics:  topics,
		opts:    opts,
		ckpt:    ckpt,
		log:     log,
		backlog: true,
	}
}

// Init creates the consumer group on every topic, starting from the saved
// checkpoint if there is one.
func (c *Consumer) Init(ctx context.Context) error {
	saved := map[string]EntryID{}
	if c.ckpt != nil {
		var err error
		saved, err = c.ckpt.Checkpoints(ctx, c.opts.Group)
		if err != nil {
			return err
		}
	}
	for _, topic := range c.topics {
		start := "0"
		if id, ok := saved[topic]; ok && !id.IsZero() {
			start = id.String()
		}
		err := c.client.XGroupCreateMkStream(ctx, topic, c.opts.Group, start).Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("%w: create group %s on %s: %w", errs.ErrBusTransport, c.opts.Group, topic, err)
		}
		c.log.Debugw("consumer group ready", "topic", topic, "group", c.opts.Group, "start", start)
	}
	return nil
}

// Read returns the next batch merged by entry id. An empty batch means the
// block timeout elapsed.
func (c *Consumer) Read(ctx context.Context) ([]Message, error) {
	if c.backlog {
		msgs, err := c.read(ctx, "0", -1)
		if err != nil {
			return nil, err
		}
		if len(msgs) > 0 {
			return msgs, nil
		}
		c.backlog = false
		c.log.Debugw("pending entries drained", "group", c.opts.Group)
	}
	return c.read(ctx, ">", c.opts.Block)
}

func (c *Consumer) read(ctx context.Context, from string, block time.Duration) ([]Message, error) {
	streams := make([]string, 0, 2*len(c.topics))
	streams = append(streams, c.topics...)
	for range c.topics {
		streams = append(streams, from)
	}
	res, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.opts.Group,
		Consumer: c.opts.Name,
		Streams:  streams,
		Count:    c.opts.Count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: read group %s: %w", errs.ErrBusTransport, c.opts.Group, err)
	}

	var msgs []Message
	for _, stream := range res {
		for _, xm := range stream.Messages {
			id, err := ParseEntryID(xm.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", errs.ErrBusTransport, err)
			}
			msgs = append(msgs, Message{Topic: stream.Stream, ID: id, Values: xm.Values})
		}
	}
	Merge(msgs)
	return msgs, nil
}

// Ack acknowledges msgs and advances the per-topic checkpoint.
func (c *Consumer) Ack(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ids := make(map[string][]string)
	last := make(map[string]EntryID)
	for _, m := range msgs {
		ids[m.Topic] = append(ids[m.Topic], m.ID.String())
		if last[m.Topic].Less(m.ID) {
			last[m.Topic] = m.ID
		}
	}
	for topic, list := range ids {
		if err := c.client.XAck(ctx, topic, c.opts.Group, list...).Err(); err != nil {
			return fmt.Errorf("%w: ack %s: %w", errs.ErrBusTransport, topic, err)
		}
		if c.ckpt == nil {
			continue
		}
		if err := c.ckpt.SaveCheckpoint(ctx, c.opts.Group, topic, last[topic]); err != nil {
			return err
		}
	}
	return nil
}
