package game

import (
	"time"

	"github.com/google/uuid"

	"akabo/internal/domain/board"
	"akabo/internal/errors"
)

// State enumerates the game state machine. Values are stored as integers.
// MOVE states are the only non-terminal ones; the ONE/TWO suffix on the
// TIMEOUT and FF states names the player whose inaction or forfeit ended
// the game (their opponent is awarded the win).
type State int

const (
	StateMoveOne State = iota + 1
	StateMoveTwo
	StateWinOne
	StateWinTwo
	StateDraw
	StateTimeoutOne
	StateTimeoutTwo
	StateFFOne
	StateFFTwo
)

// Game is one two-player match. All fields are primitive so the record
// serializes as a flat field mapping.
type Game struct {
	UUID             string    `json:"uuid" bson:"uuid"`
	Created          time.Time `json:"created" bson:"created"`
	PlayerOne        string    `json:"player_one" bson:"player_one"`
	PlayerTwo        string    `json:"player_two" bson:"player_two"`
	Board            string    `json:"board" bson:"board"`
	State            State     `json:"state" bson:"state"`
	PlayerOnePolled  time.Time `json:"player_one_polled" bson:"player_one_polled"`
	PlayerTwoPolled  time.Time `json:"player_two_polled" bson:"player_two_polled"`
	PlayerOneExpires time.Time `json:"player_one_expires" bson:"player_one_expires"`
	PlayerTwoExpires time.Time `json:"player_two_expires" bson:"player_two_expires"`
}

func New(playerOne, playerTwo string, now time.Time, timeout time.Duration) Game {
	return Game{
		UUID:             uuid.New().String(),
		Created:          now,
		PlayerOne:        playerOne,
		PlayerTwo:        playerTwo,
		Board:            "",
		State:            StateMoveOne,
		PlayerOnePolled:  now,
		PlayerTwoPolled:  now,
		PlayerOneExpires: now.Add(timeout),
		PlayerTwoExpires: now.Add(timeout),
	}
}

// Terminal reports whether the game has ended; terminal states are
// absorbing.
func (g *Game) Terminal() bool {
	return g.State != StateMoveOne && g.State != StateMoveTwo
}

// PlayerNumber returns 1 or 2 for a participant uid, 0 otherwise.
func (g *Game) PlayerNumber(uid string) int {
	switch uid {
	case g.PlayerOne:
		return 1
	case g.PlayerTwo:
		return 2
	}
	return 0
}

func (g *Game) Opponent(player int) int {
	if player == 1 {
		return 2
	}
	return 1
}

// Touch refreshes a player's liveness timestamps.
func (g *Game) Touch(player int, now time.Time, timeout time.Duration) {
	if player == 1 {
		g.PlayerOnePolled = now
		g.PlayerOneExpires = now.Add(timeout)
	} else {
		g.PlayerTwoPolled = now
		g.PlayerTwoExpires = now.Add(timeout)
	}
}

// ApplyMove drops a token for player. It fails with ErrInvalidInput when it
// is not that player's turn and with ErrIllegalMove when the engine rejects
// the column; on success the state is recomputed from the new board.
func (g *Game) ApplyMove(rules board.Rules, player int, col int) error {
	if g.turnOf() != player {
		return errors.ErrInvalidInput
	}
	newBoard, err := rules.Apply(g.Board, col)
	if err != nil {
		return err
	}
	g.Board = newBoard
	switch rules.Outcome(newBoard) {
	case board.OutcomeWinOne:
		g.State = StateWinOne
	case board.OutcomeWinTwo:
		g.State = StateWinTwo
	case board.OutcomeDraw:
		g.State = StateDraw
	case board.OutcomeMoveTwo:
		g.State = StateMoveTwo
	default:
		g.State = StateMoveOne
	}
	return nil
}

// Forfeit ends the game against player. A player may only forfeit on their
// own turn.
func (g *Game) Forfeit(player int) error {
	if g.turnOf() != player {
		return errors.ErrInvalidInput
	}
	if player == 1 {
		g.State = StateFFOne
	} else {
		g.State = StateFFTwo
	}
	return nil
}

// TimeoutBy checks, on behalf of the polling player, whether the opponent
// let their deadline lapse on their own turn. Timeouts are detected lazily;
// there is no background sweeper. Returns true when the state transitioned
// to the corresponding TIMEOUT state.
func (g *Game) TimeoutBy(poller int, now time.Time) bool {
	if g.Terminal() {
		return false
	}
	opp := g.Opponent(poller)
	if g.turnOf() != opp {
		return false
	}
	if opp == 1 && g.PlayerOneExpires.Before(now) {
		g.State = StateTimeoutOne
		return true
	}
	if opp == 2 && g.PlayerTwoExpires.Before(now) {
		g.State = StateTimeoutTwo
		return true
	}
	return false
}

// Winner returns the player numbers (winner, loser) for a decided game and
// ok=false for MOVE and DRAW states.
func (g *Game) Winner() (winner, loser int, ok bool) {
	switch g.State {
	case StateWinOne, StateTimeoutTwo, StateFFTwo:
		return 1, 2, true
	case StateWinTwo, StateTimeoutOne, StateFFOne:
		return 2, 1, true
	}
	return 0, 0, false
}

// PlayerUID maps a player number back to its uid.
func (g *Game) PlayerUID(player int) string {
	if player == 1 {
		return g.PlayerOne
	}
	return g.PlayerTwo
}

func (g *Game) turnOf() int {
	switch g.State {
	case StateMoveOne:
		return 1
	case StateMoveTwo:
		return 2
	}
	return 0
}
