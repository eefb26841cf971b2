package stream

import (
	"context"

	"bugout/internal/bus"
	"bugout/internal/domain"
)

// JSON adapts a typed handler to a topic carrying JSON payloads.
func JSON[T any](fn func(ctx context.Context, v T) error) HandlerFunc {
	return func(ctx context.Context, msg bus.Message) error {
		var v T
		if err := msg.DecodeJSON(&v); err != nil {
			return err
		}
		return fn(ctx, v)
	}
}

// GameStates adapts a handler to the binary changelog topic.
func GameStates(fn func(ctx context.Context, id domain.GameID, state domain.GameState) error) HandlerFunc {
	return func(ctx context.Context, msg bus.Message) error {
		id, state, err := msg.GameState()
		if err != nil {
			return err
		}
		return fn(ctx, id, state)
	}
}
