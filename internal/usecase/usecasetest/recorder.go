// Package usecasetest holds fakes shared by usecase tests.
package usecasetest

import (
	"context"
	"sync"

	"bugout/internal/domain"
)

type Published struct {
	Topic  string
	Key    string
	Value  interface{}
	GameID domain.GameID
	State  domain.GameState
}

// Recorder is an in-memory publisher. Topics listed in Fail return the
// given error instead of being recorded.
type Recorder struct {
	mu    sync.Mutex
	items []Published
	Fail  map[string]error
}

func NewRecorder() *Recorder {
	return &Recorder{Fail: map[string]error{}}
}

func (r *Recorder) PublishJSON(_ context.Context, topic, key string, v interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail[topic]; err != nil {
		return err
	}
	r.items = append(r.items, Published{Topic: topic, Key: key, Value: v})
	return nil
}

func (r *Recorder) PublishGameState(_ context.Context, topic string, id domain.GameID, state domain.GameState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail[topic]; err != nil {
		return err
	}
	r.items = append(r.items, Published{Topic: topic, Key: id.String(), GameID: id, State: state})
	return nil
}

func (r *Recorder) All() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.items...)
}

func (r *Recorder) On(topic string) []Published {
	var out []Published
	for _, p := range r.All() {
		if p.Topic == topic {
			out = append(out, p)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
