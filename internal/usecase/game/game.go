// Package game orchestrates in-game transitions: authorized moves,
// forfeits and lazy timeout resolution, plus the win/loss tallies they
// produce on user records.
package game

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"akabo/internal/bootstrap"
	"akabo/internal/domain/board"
	gamedomain "akabo/internal/domain/game"
	errs "akabo/internal/errors"
)

type GameStore interface {
	Insert(ctx context.Context, g gamedomain.Game) error
	GetByUUID(ctx context.Context, uuid string) (gamedomain.Game, error)
	Update(ctx context.Context, g gamedomain.Game) error
}

type UserStore interface {
	Exists(ctx context.Context, uid string) (bool, error)
	AddWin(ctx context.Context, uid string) error
	AddLoss(ctx context.Context, uid string) error
}

type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

type GameUseCase struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	rules board.Rules
	games GameStore
	users UserStore
	locks Locker
}

func NewGameUseCase(cfg bootstrap.Config, log *zap.SugaredLogger, games GameStore, users UserStore, locks Locker) *GameUseCase {
	rules := board.Rules{Rows: cfg.BoardRows, Cols: cfg.BoardCols, Connect: cfg.BoardConnect}
	if rules.Rows <= 0 || rules.Cols <= 0 || rules.Connect <= 0 {
		rules = board.Default
	}
	return &GameUseCase{
		cfg:   cfg,
		log:   log,
		rules: rules,
		games: games,
		users: users,
		locks: locks,
	}
}

// CreateGame starts a game between two registered players. It is called by
// the matchmaker when a pair of tickets is filled; player one is the ticket
// owner whose poll triggered the pairing.
func (g *GameUseCase) CreateGame(ctx context.Context, playerOne, playerTwo string) (gamedomain.Game, error) {
	if playerOne == "" || playerTwo == "" || playerOne == playerTwo {
		return gamedomain.Game{}, errs.ErrInvalidInput
	}
	for _, uid := range []string{playerOne, playerTwo} {
		exists, err := g.users.Exists(ctx, uid)
		if err != nil {
			return gamedomain.Game{}, err
		}
		if !exists {
			return gamedomain.Game{}, errs.ErrInvalidInput
		}
	}

	play := gamedomain.New(playerOne, playerTwo, time.Now().UTC(), g.cfg.GameTimeout)
	if err := g.games.Insert(ctx, play); err != nil {
		return gamedomain.Game{}, err
	}
	g.log.Infof("game %s created: %s vs %s", play.UUID, playerOne, playerTwo)
	return play, nil
}

// MakeMove applies one column drop for uid. The whole read-modify-write
// runs under the game's lock so two participants cannot both observe it
// being their turn.
func (g *GameUseCase) MakeMove(ctx context.Context, gameID, uid string, column int) (gamedomain.Game, error) {
	release, err := g.locks.Acquire(ctx, "game:"+gameID)
	if err != nil {
		return gamedomain.Game{}, errs.ErrInternal
	}
	defer release()

	play, player, err := g.loadParticipant(ctx, gameID, uid)
	if err != nil {
		return gamedomain.Game{}, err
	}

	if err := play.ApplyMove(g.rules, player, column); err != nil {
		return gamedomain.Game{}, err
	}
	play.Touch(player, time.Now().UTC(), g.cfg.GameTimeout)

	if err := g.games.Update(ctx, play); err != nil {
		return gamedomain.Game{}, err
	}
	if err := g.settle(ctx, &play); err != nil {
		return gamedomain.Game{}, err
	}
	return play, nil
}

// ForfeitGame concedes the game for uid, allowed only on their own turn.
// The forfeiter takes the loss, the opponent the win.
func (g *GameUseCase) ForfeitGame(ctx context.Context, gameID, uid string) (gamedomain.Game, error) {
	release, err := g.locks.Acquire(ctx, "game:"+gameID)
	if err != nil {
		return gamedomain.Game{}, errs.ErrInternal
	}
	defer release()

	play, player, err := g.loadParticipant(ctx, gameID, uid)
	if err != nil {
		return gamedomain.Game{}, err
	}

	if err := play.Forfeit(player); err != nil {
		return gamedomain.Game{}, err
	}
	play.Touch(player, time.Now().UTC(), g.cfg.GameTimeout)

	if err := g.games.Update(ctx, play); err != nil {
		return gamedomain.Game{}, err
	}
	if err := g.settle(ctx, &play); err != nil {
		return gamedomain.Game{}, err
	}
	return play, nil
}

// PollGame returns the current game snapshot for uid, refreshing their
// liveness. If the opponent sat on their own turn past their deadline the
// game transitions to the matching TIMEOUT state; whoever failed to act
// within the deadline loses. Polling a terminal game returns it unchanged
// apart from the liveness touch.
func (g *GameUseCase) PollGame(ctx context.Context, gameID, uid string) (gamedomain.Game, error) {
	release, err := g.locks.Acquire(ctx, "game:"+gameID)
	if err != nil {
		return gamedomain.Game{}, errs.ErrInternal
	}
	defer release()

	play, player, err := g.loadParticipant(ctx, gameID, uid)
	if err != nil {
		return gamedomain.Game{}, err
	}

	now := time.Now().UTC()
	timedOut := play.TimeoutBy(player, now)
	play.Touch(player, now, g.cfg.GameTimeout)

	if err := g.games.Update(ctx, play); err != nil {
		return gamedomain.Game{}, err
	}
	if timedOut {
		g.log.Infof("game %s timed out in state %d, detected by %s", play.UUID, play.State, uid)
		if err := g.settle(ctx, &play); err != nil {
			return gamedomain.Game{}, err
		}
	}
	return play, nil
}

// loadParticipant fetches the game and verifies uid takes part in it. A
// missing game surfaces as invalid input, matching the contract of the
// game operations.
func (g *GameUseCase) loadParticipant(ctx context.Context, gameID, uid string) (gamedomain.Game, int, error) {
	play, err := g.games.GetByUUID(ctx, gameID)
	if err != nil {
		if errors.Is(err, errs.ErrNoMatch) {
			return gamedomain.Game{}, 0, errs.ErrInvalidInput
		}
		return gamedomain.Game{}, 0, err
	}
	player := play.PlayerNumber(uid)
	if player == 0 {
		return gamedomain.Game{}, 0, errs.ErrInvalidInput
	}
	return play, player, nil
}

// settle records the win/loss deltas of a decided game. Each counter is an
// independent atomic increment, so the two user records need no common
// lock order.
func (g *GameUseCase) settle(ctx context.Context, play *gamedomain.Game) error {
	winner, loser, ok := play.Winner()
	if !ok {
		return nil
	}
	if err := g.users.AddWin(ctx, play.PlayerUID(winner)); err != nil {
		g.log.Errorf("failed to tally win for %s in game %s: %v", play.PlayerUID(winner), play.UUID, err)
		return errs.ErrInternal
	}
	if err := g.users.AddLoss(ctx, play.PlayerUID(loser)); err != nil {
		g.log.Errorf("failed to tally loss for %s in game %s: %v", play.PlayerUID(loser), play.UUID, err)
		return errs.ErrInternal
	}
	return nil
}
