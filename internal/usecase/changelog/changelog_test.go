package changelog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bugout/internal/bus"
	"bugout/internal/domain"
	errs "bugout/internal/errors"
	repo "bugout/internal/repository"
	"bugout/internal/usecase/usecasetest"
)

type fixture struct {
	uc     *ChangelogUseCase
	states *repo.GameStateRepository
	pub    *usecasetest.Recorder
	topics bus.Topics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	states := repo.NewGameStateRepository(client, repo.NewKeys("BUGTEST"))
	pub := usecasetest.NewRecorder()
	topics := bus.NewTopics("")
	return fixture{
		uc:     NewChangelogUseCase(zap.NewNop().Sugar(), states, pub, topics, 19),
		states: states,
		pub:    pub,
		topics: topics,
	}
}

func accepted(gid domain.GameID, p domain.Player, c domain.MoveCoord) domain.MoveMade {
	return domain.MoveMade{GameID: gid, ReplyTo: domain.NewReqID(), Player: p, Coord: c, EventID: domain.NewEventID()}
}

func ready(t *testing.T, f fixture, size int) domain.GameID {
	t.Helper()
	gid := domain.NewGameID()
	require.NoError(t, f.uc.HandleGameReady(context.Background(), domain.GameReady{
		GameID:    gid,
		EventID:   domain.NewEventID(),
		Players:   [2]domain.ClientID{domain.NewClientID(), domain.NewClientID()},
		BoardSize: size,
	}))
	return gid
}

func TestGameReadyCreatesStateOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := ready(t, f, 0)

	state, err := f.states.Get(ctx, gid)
	require.NoError(t, err)
	assert.Equal(t, 19, state.Board.Size)
	assert.Equal(t, uint32(1), state.Turn)
	require.Len(t, f.pub.On(f.topics.GameStatesChangelog), 1)

	require.NoError(t, f.uc.HandleMoveAccepted(ctx, accepted(gid, domain.Black, domain.At(0, 0))))
	require.NoError(t, f.uc.HandleGameReady(ctx, domain.GameReady{GameID: gid, BoardSize: 9}))
	state, err = f.states.Get(ctx, gid)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), state.Turn, "a repeated GameReady must not reset the game")
}

func TestMoveAcceptedMaterializesState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := ready(t, f, 9)
	f.pub.Reset()

	m := accepted(gid, domain.Black, domain.At(2, 2))
	require.NoError(t, f.uc.HandleMoveAccepted(ctx, m))

	state, err := f.states.Get(ctx, gid)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), state.Turn)
	assert.Equal(t, domain.White, state.PlayerUp)
	require.Len(t, state.Moves, 1)
	assert.Equal(t, m.EventID, state.Moves[0].EventID)

	all := f.pub.All()
	require.Len(t, all, 2)
	assert.Equal(t, f.topics.GameStatesChangelog, all[0].Topic)
	assert.Equal(t, uint32(2), all[0].State.Turn)
	assert.Equal(t, f.topics.MoveMadeEv, all[1].Topic)
	assert.Equal(t, m.EventID, all[1].Value.(domain.MoveMade).EventID)
}

func TestDuplicateMoveAcceptedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := ready(t, f, 9)

	first := accepted(gid, domain.Black, domain.At(2, 2))
	second := accepted(gid, domain.White, domain.At(3, 3))
	require.NoError(t, f.uc.HandleMoveAccepted(ctx, first))
	require.NoError(t, f.uc.HandleMoveAccepted(ctx, second))
	f.pub.Reset()

	// replaying an older move changes nothing
	require.NoError(t, f.uc.HandleMoveAccepted(ctx, first))
	assert.Empty(t, f.pub.All())

	// replaying the newest move republishes without reapplying
	require.NoError(t, f.uc.HandleMoveAccepted(ctx, second))
	assert.Len(t, f.pub.On(f.topics.MoveMadeEv), 1)

	state, err := f.states.Get(ctx, gid)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), state.Turn)
	assert.Len(t, state.Moves, 2)
}

func TestMissingGameIsAnInvariantViolation(t *testing.T) {
	f := newFixture(t)
	err := f.uc.HandleMoveAccepted(context.Background(), accepted(domain.NewGameID(), domain.Black, domain.At(0, 0)))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvariant)
	assert.True(t, errs.IsFatal(err))
}

func TestInapplicableMoveIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := ready(t, f, 9)
	f.pub.Reset()

	require.NoError(t, f.uc.HandleMoveAccepted(ctx, accepted(gid, domain.White, domain.At(0, 0))))
	assert.Empty(t, f.pub.All())
}

func TestMoveUndoneReplaysHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := ready(t, f, 9)

	moves := []domain.MoveMade{
		accepted(gid, domain.Black, domain.At(1, 0)),
		accepted(gid, domain.White, domain.At(0, 0)),
		accepted(gid, domain.Black, domain.At(0, 1)),
	}
	for _, m := range moves {
		require.NoError(t, f.uc.HandleMoveAccepted(ctx, m))
	}
	state, err := f.states.Get(ctx, gid)
	require.NoError(t, err)
	require.Equal(t, uint32(1), state.Captures.Black)

	// undoing a move that is not the last one is ignored
	require.NoError(t, f.uc.HandleMoveUndone(ctx, domain.MoveUndone{GameID: gid, UndoneMove: moves[1]}))
	state, _ = f.states.Get(ctx, gid)
	assert.Len(t, state.Moves, 3)

	f.pub.Reset()
	require.NoError(t, f.uc.HandleMoveUndone(ctx, domain.MoveUndone{GameID: gid, UndoneMove: moves[2], EventID: domain.NewEventID()}))
	state, err = f.states.Get(ctx, gid)
	require.NoError(t, err)
	assert.Len(t, state.Moves, 2)
	assert.Equal(t, uint32(3), state.Turn)
	assert.Equal(t, domain.Black, state.PlayerUp)
	assert.Equal(t, uint32(0), state.Captures.Black)
	p, ok := state.Board.At(domain.Coord{X: 0, Y: 0})
	assert.True(t, ok, "captured stone is restored")
	assert.Equal(t, domain.White, p)

	published := f.pub.On(f.topics.GameStatesChangelog)
	require.Len(t, published, 1)
	assert.Equal(t, uint32(3), published[0].State.Turn)
}

func TestDurablePublishFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := ready(t, f, 9)
	f.pub.Fail[f.topics.GameStatesChangelog] = fmt.Errorf("%w: gave up", errs.ErrBusTransport)

	err := f.uc.HandleMoveAccepted(ctx, accepted(gid, domain.Black, domain.At(0, 0)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrBusTransport))

	// the state was written, so the redelivered entry only republishes
	delete(f.pub.Fail, f.topics.GameStatesChangelog)
	state, err := f.states.Get(ctx, gid)
	require.NoError(t, err)
	require.Len(t, state.Moves, 1)
	require.NoError(t, f.uc.HandleMoveAccepted(ctx, state.Moves[0]))
	assert.Len(t, f.pub.On(f.topics.MoveMadeEv), 1)
}
