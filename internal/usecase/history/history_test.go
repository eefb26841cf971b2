package history

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bugout/internal/bus"
	"bugout/internal/domain"
	repo "bugout/internal/repository"
	"bugout/internal/rules"
	"bugout/internal/usecase/usecasetest"
)

func TestProvideHistory(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	states := repo.NewGameStateRepository(client, repo.NewKeys("BUGTEST"))
	pub := usecasetest.NewRecorder()
	topics := bus.NewTopics("")
	uc := NewHistoryUseCase(zap.NewNop().Sugar(), states, pub, topics)
	uc.now = func() time.Time { return time.UnixMilli(1234) }

	gid := domain.NewGameID()
	moves := []domain.MoveMade{
		{GameID: gid, Player: domain.Black, Coord: domain.At(2, 2), EventID: domain.NewEventID()},
		{GameID: gid, Player: domain.White, Coord: domain.PassMove, EventID: domain.NewEventID()},
	}
	state, err := rules.Replay(9, moves)
	require.NoError(t, err)
	require.NoError(t, states.Put(ctx, gid, state))

	req := domain.ProvideHistory{GameID: gid, ReqID: domain.NewReqID()}
	require.NoError(t, uc.HandleProvideHistory(ctx, req))

	out := pub.On(topics.HistoryProvidedEv)
	require.Len(t, out, 1)
	ev := out[0].Value.(domain.HistoryProvided)
	assert.Equal(t, req.ReqID, ev.ReplyTo)
	assert.Equal(t, int64(1234), ev.EpochMillis)
	require.Len(t, ev.Moves, 2)
	assert.Equal(t, moves[1].EventID, ev.Moves[1].EventID)

	// a fresh game has an empty, not null, move list
	fresh := domain.NewGameID()
	require.NoError(t, states.Put(ctx, fresh, domain.NewGameState(9)))
	require.NoError(t, uc.HandleProvideHistory(ctx, domain.ProvideHistory{GameID: fresh}))
	out = pub.On(topics.HistoryProvidedEv)
	require.Len(t, out, 2)
	assert.NotNil(t, out[1].Value.(domain.HistoryProvided).Moves)

	require.NoError(t, uc.HandleProvideHistory(ctx, domain.ProvideHistory{GameID: domain.NewGameID()}))
	assert.Len(t, pub.On(topics.HistoryProvidedEv), 2)
}
