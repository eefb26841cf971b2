package lobby

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bugout/internal/bus"
	"bugout/internal/domain"
	repo "bugout/internal/repository"
	"bugout/internal/usecase/usecasetest"
)

type fixture struct {
	uc     *LobbyUseCase
	pub    *usecasetest.Recorder
	topics bus.Topics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	pub := usecasetest.NewRecorder()
	topics := bus.NewTopics("")
	store := repo.NewLobbyRepository(client, repo.NewKeys("BUGTEST"))
	return fixture{
		uc:     NewLobbyUseCase(zap.NewNop().Sugar(), store, pub, topics, 19),
		pub:    pub,
		topics: topics,
	}
}

func TestPublicMatchmakingIsFIFO(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1, c2, c3 := domain.NewClientID(), domain.NewClientID(), domain.NewClientID()

	require.NoError(t, f.uc.HandleFindPublicGame(ctx, domain.FindPublicGame{ClientID: c1}))
	require.NoError(t, f.uc.HandleFindPublicGame(ctx, domain.FindPublicGame{ClientID: c2}))
	require.NoError(t, f.uc.HandleFindPublicGame(ctx, domain.FindPublicGame{ClientID: c3}))

	all := f.pub.All()
	require.Len(t, all, 3)

	first := all[0].Value.(domain.WaitForOpponent)
	assert.Equal(t, f.topics.WaitForOpponentEv, all[0].Topic)
	assert.Equal(t, c1, first.ClientID)
	assert.Equal(t, domain.Public, first.Visibility)

	ready := all[1].Value.(domain.GameReady)
	assert.Equal(t, f.topics.GameReadyEv, all[1].Topic)
	assert.Equal(t, first.GameID, ready.GameID)
	assert.Equal(t, [2]domain.ClientID{c1, c2}, ready.Players)
	assert.Equal(t, 19, ready.BoardSize)

	third := all[2].Value.(domain.WaitForOpponent)
	assert.Equal(t, c3, third.ClientID)
	assert.NotEqual(t, first.GameID, third.GameID)
}

func TestClientIsNeverPairedWithItself(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1, c2 := domain.NewClientID(), domain.NewClientID()

	require.NoError(t, f.uc.HandleFindPublicGame(ctx, domain.FindPublicGame{ClientID: c1}))
	require.NoError(t, f.uc.HandleFindPublicGame(ctx, domain.FindPublicGame{ClientID: c1}))
	assert.Empty(t, f.pub.On(f.topics.GameReadyEv))
	waits := f.pub.On(f.topics.WaitForOpponentEv)
	require.Len(t, waits, 2)
	assert.Equal(t, waits[0].Value.(domain.WaitForOpponent).GameID, waits[1].Value.(domain.WaitForOpponent).GameID)

	require.NoError(t, f.uc.HandleFindPublicGame(ctx, domain.FindPublicGame{ClientID: c2}))
	ready := f.pub.On(f.topics.GameReadyEv)
	require.Len(t, ready, 1)
	assert.Equal(t, [2]domain.ClientID{c1, c2}, ready[0].Value.(domain.GameReady).Players)
}

func TestPrivateGames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator, joiner := domain.NewClientID(), domain.NewClientID()

	require.NoError(t, f.uc.HandleCreateGame(ctx, domain.CreateGame{ClientID: creator, Visibility: domain.Private}))
	waits := f.pub.On(f.topics.WaitForOpponentEv)
	require.Len(t, waits, 1)
	wait := waits[0].Value.(domain.WaitForOpponent)
	assert.Equal(t, domain.Private, wait.Visibility)

	// the creator cannot join its own game
	require.NoError(t, f.uc.HandleJoinPrivateGame(ctx, domain.JoinPrivateGame{GameID: wait.GameID, ClientID: creator}))
	require.Len(t, f.pub.On(f.topics.PrivateGameRejectedEv), 1)

	require.NoError(t, f.uc.HandleJoinPrivateGame(ctx, domain.JoinPrivateGame{GameID: wait.GameID, ClientID: joiner}))
	ready := f.pub.On(f.topics.GameReadyEv)
	require.Len(t, ready, 1)
	assert.Equal(t, [2]domain.ClientID{creator, joiner}, ready[0].Value.(domain.GameReady).Players)

	// a private game is joined at most once
	require.NoError(t, f.uc.HandleJoinPrivateGame(ctx, domain.JoinPrivateGame{GameID: wait.GameID, ClientID: domain.NewClientID()}))
	assert.Len(t, f.pub.On(f.topics.PrivateGameRejectedEv), 2)
}

func TestUnknownPrivateGameIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c2 := domain.NewClientID()
	unknown := domain.NewGameID()

	require.NoError(t, f.uc.HandleJoinPrivateGame(ctx, domain.JoinPrivateGame{GameID: unknown, ClientID: c2}))
	rejected := f.pub.On(f.topics.PrivateGameRejectedEv)
	require.Len(t, rejected, 1)
	ev := rejected[0].Value.(domain.PrivateGameRejected)
	assert.Equal(t, unknown, ev.GameID)
	assert.Equal(t, c2, ev.ClientID)
}

func TestCreatePublicGameUsesThePool(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1, c2 := domain.NewClientID(), domain.NewClientID()

	require.NoError(t, f.uc.HandleCreateGame(ctx, domain.CreateGame{ClientID: c1, Visibility: domain.Public}))
	require.NoError(t, f.uc.HandleFindPublicGame(ctx, domain.FindPublicGame{ClientID: c2}))
	assert.Len(t, f.pub.On(f.topics.GameReadyEv), 1)
}
