package botlink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bugout/internal/brain"
	"bugout/internal/bus"
	"bugout/internal/domain"
	repo "bugout/internal/repository"
	"bugout/internal/rules"
	"bugout/internal/usecase/usecasetest"
)

type fixture struct {
	bots   *repo.BotnessRepository
	states *repo.GameStateRepository
	pub    *usecasetest.Recorder
	topics bus.Topics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	keys := repo.NewKeys("BUGTEST")
	return fixture{
		bots:   repo.NewBotnessRepository(client, keys),
		states: repo.NewGameStateRepository(client, keys),
		pub:    usecasetest.NewRecorder(),
		topics: bus.NewTopics(""),
	}
}

func (f fixture) usecase(gen brain.MoveGenerator, pool Pool) *BotlinkUseCase {
	return NewBotlinkUseCase(zap.NewNop().Sugar(), f.bots, f.states, f.pub, f.topics, gen, pool, time.Second)
}

type failingBrain struct{}

func (failingBrain) GenMove(context.Context, domain.GameState, domain.Player) (domain.MoveCoord, error) {
	return domain.MoveCoord{}, errors.New("engine down")
}

func TestAttachBotAsBlackMovesImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := domain.NewGameID()
	require.NoError(t, f.states.Put(ctx, gid, domain.NewGameState(9)))

	uc := f.usecase(brain.Fallback{}, nil)
	require.NoError(t, uc.HandleAttachBot(ctx, domain.AttachBot{GameID: gid, Player: domain.Black}))

	attached := f.pub.On(f.topics.BotAttachedEv)
	require.Len(t, attached, 1)
	assert.Equal(t, domain.Black, attached[0].Value.(domain.BotAttached).Player)

	moves := f.pub.On(f.topics.MakeMoveCmd)
	require.Len(t, moves, 1)
	cmd := moves[0].Value.(domain.MakeMoveCommand)
	assert.Equal(t, gid.String(), moves[0].Key)
	assert.Equal(t, domain.Black, cmd.Player)
	assert.Equal(t, domain.At(4, 4), cmd.Coord)
}

func TestBotAnswersHumanMove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := domain.NewGameID()
	human := domain.MoveMade{GameID: gid, Player: domain.Black, Coord: domain.At(4, 4), EventID: domain.NewEventID()}
	state, err := rules.Replay(9, []domain.MoveMade{human})
	require.NoError(t, err)
	require.NoError(t, f.states.Put(ctx, gid, state))
	require.NoError(t, f.bots.Attach(ctx, gid, domain.White))

	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	uc := f.usecase(brain.Fallback{}, pool)

	require.NoError(t, uc.HandleMoveMade(ctx, human))
	require.NoError(t, pool.ReleaseTimeout(5*time.Second))

	moves := f.pub.On(f.topics.MakeMoveCmd)
	require.Len(t, moves, 1)
	cmd := moves[0].Value.(domain.MakeMoveCommand)
	assert.Equal(t, domain.White, cmd.Player)
	assert.True(t, rules.Legal(state, domain.White, cmd.Coord))
}

func TestBotStaysQuiet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := domain.NewGameID()
	first := domain.MoveMade{GameID: gid, Player: domain.Black, Coord: domain.At(4, 4), EventID: domain.NewEventID()}
	second := domain.MoveMade{GameID: gid, Player: domain.White, Coord: domain.At(3, 3), EventID: domain.NewEventID()}
	state, err := rules.Replay(9, []domain.MoveMade{first, second})
	require.NoError(t, err)
	require.NoError(t, f.states.Put(ctx, gid, state))
	uc := f.usecase(brain.Fallback{}, nil)

	// no bot attached
	require.NoError(t, uc.HandleMoveMade(ctx, first))

	// bot attached, but the move it would answer is stale
	require.NoError(t, f.bots.Attach(ctx, gid, domain.White))
	require.NoError(t, uc.HandleMoveMade(ctx, first))

	// unknown game
	require.NoError(t, uc.HandleMoveMade(ctx, domain.MoveMade{GameID: domain.NewGameID(), Player: domain.Black, EventID: domain.NewEventID()}))

	assert.Empty(t, f.pub.On(f.topics.MakeMoveCmd))
}

func TestBotFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := domain.NewGameID()
	require.NoError(t, f.states.Put(ctx, gid, domain.NewGameState(9)))

	uc := f.usecase(failingBrain{}, nil)
	require.NoError(t, uc.HandleAttachBot(ctx, domain.AttachBot{GameID: gid, Player: domain.Black}))
	assert.Empty(t, f.pub.On(f.topics.MakeMoveCmd))
}

func TestBlackBotAttachedBeforeGameOpensFromChangelog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := domain.NewGameID()
	uc := f.usecase(brain.Fallback{}, nil)

	require.NoError(t, uc.HandleAttachBot(ctx, domain.AttachBot{GameID: gid, Player: domain.Black}))
	require.Len(t, f.pub.On(f.topics.BotAttachedEv), 1)
	assert.Empty(t, f.pub.On(f.topics.MakeMoveCmd), "no game yet")

	fresh := domain.NewGameState(9)
	require.NoError(t, f.states.Put(ctx, gid, fresh))
	require.NoError(t, uc.HandleGameState(ctx, gid, fresh))
	// a redelivered entry does not make the bot open twice
	require.NoError(t, uc.HandleGameState(ctx, gid, fresh))

	moves := f.pub.On(f.topics.MakeMoveCmd)
	require.Len(t, moves, 1)
	assert.Equal(t, domain.Black, moves[0].Value.(domain.MakeMoveCommand).Player)
}

func TestChangelogOnlyOpensUnplayedGames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gid := domain.NewGameID()
	first := domain.MoveMade{GameID: gid, Player: domain.Black, Coord: domain.At(4, 4), EventID: domain.NewEventID()}
	second := domain.MoveMade{GameID: gid, Player: domain.White, Coord: domain.At(3, 3), EventID: domain.NewEventID()}
	state, err := rules.Replay(9, []domain.MoveMade{first, second})
	require.NoError(t, err)
	require.NoError(t, f.states.Put(ctx, gid, state))
	require.NoError(t, f.bots.Attach(ctx, gid, domain.Black))
	uc := f.usecase(brain.Fallback{}, nil)

	// an old entry replayed from the changelog backlog
	require.NoError(t, uc.HandleGameState(ctx, gid, domain.NewGameState(9)))
	assert.Empty(t, f.pub.On(f.topics.MakeMoveCmd))
}
