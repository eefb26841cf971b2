package lobby

import (
	"context"

	"go.uber.org/zap"

	"bugout/internal/bus"
	"bugout/internal/domain"
)

type LobbyStore interface {
	PopPublic(ctx context.Context) (domain.WaitingGame, bool, error)
	PushPublic(ctx context.Context, w domain.WaitingGame) error
	RestorePublic(ctx context.Context, w domain.WaitingGame) error
	PutPrivate(ctx context.Context, w domain.WaitingGame) error
	GetPrivate(ctx context.Context, id domain.GameID) (domain.ClientID, bool, error)
	DeletePrivate(ctx context.Context, id domain.GameID) error
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v interface{}) error
}

// LobbyUseCase pairs clients into games. The public pool is first come,
// first served and a client is never paired with itself.
type LobbyUseCase struct {
	log       *zap.SugaredLogger
	store     LobbyStore
	pub       Publisher
	topics    bus.Topics
	boardSize int
}

func NewLobbyUseCase(log *zap.SugaredLogger, store LobbyStore, pub Publisher, topics bus.Topics, boardSize int) *LobbyUseCase {
	return &LobbyUseCase{
		log:       log,
		store:     store,
		pub:       pub,
		topics:    topics,
		boardSize: boardSize,
	}
}

func (l *LobbyUseCase) HandleFindPublicGame(ctx context.Context, cmd domain.FindPublicGame) error {
	waiting, ok, err := l.store.PopPublic(ctx)
	if err != nil {
		return err
	}
	if !ok {
		w := domain.WaitingGame{GameID: domain.NewGameID(), ClientID: cmd.ClientID}
		if err := l.store.PushPublic(ctx, w); err != nil {
			return err
		}
		return l.waitForOpponent(ctx, w, domain.Public)
	}
	if waiting.ClientID == cmd.ClientID {
		if err := l.store.RestorePublic(ctx, waiting); err != nil {
			return err
		}
		return l.waitForOpponent(ctx, waiting, domain.Public)
	}
	return l.gameReady(ctx, waiting, cmd.ClientID)
}

// HandleCreateGame opens a private game; a public one is matched like
// FindPublicGame.
func (l *LobbyUseCase) HandleCreateGame(ctx context.Context, cmd domain.CreateGame) error {
	if cmd.Visibility != domain.Private {
		return l.HandleFindPublicGame(ctx, domain.FindPublicGame{ClientID: cmd.ClientID})
	}
	w := domain.WaitingGame{GameID: domain.NewGameID(), ClientID: cmd.ClientID}
	if err := l.store.PutPrivate(ctx, w); err != nil {
		return err
	}
	return l.waitForOpponent(ctx, w, domain.Private)
}

func (l *LobbyUseCase) HandleJoinPrivateGame(ctx context.Context, cmd domain.JoinPrivateGame) error {
	creator, ok, err := l.store.GetPrivate(ctx, cmd.GameID)
	if err != nil {
		return err
	}
	if !ok || creator == cmd.ClientID {
		l.log.Infow("private game rejected", "game", cmd.GameID.String(), "client", cmd.ClientID.String(), "found", ok)
		return l.pub.PublishJSON(ctx, l.topics.PrivateGameRejectedEv, cmd.ClientID.String(), domain.PrivateGameRejected{
			GameID:   cmd.GameID,
			ClientID: cmd.ClientID,
			EventID:  domain.NewEventID(),
		})
	}
	if err := l.store.DeletePrivate(ctx, cmd.GameID); err != nil {
		return err
	}
	return l.gameReady(ctx, domain.WaitingGame{GameID: cmd.GameID, ClientID: creator}, cmd.ClientID)
}

func (l *LobbyUseCase) waitForOpponent(ctx context.Context, w domain.WaitingGame, v domain.Visibility) error {
	return l.pub.PublishJSON(ctx, l.topics.WaitForOpponentEv, w.GameID.String(), domain.WaitForOpponent{
		GameID:     w.GameID,
		ClientID:   w.ClientID,
		EventID:    domain.NewEventID(),
		Visibility: v,
	})
}

func (l *LobbyUseCase) gameReady(ctx context.Context, waiting domain.WaitingGame, joiner domain.ClientID) error {
	l.log.Infow("game ready", "game", waiting.GameID.String(), "creator", waiting.ClientID.String(), "joiner", joiner.String())
	return l.pub.PublishJSON(ctx, l.topics.GameReadyEv, waiting.GameID.String(), domain.GameReady{
		GameID:    waiting.GameID,
		EventID:   domain.NewEventID(),
		Players:   [2]domain.ClientID{waiting.ClientID, joiner},
		BoardSize: l.boardSize,
	})
}
