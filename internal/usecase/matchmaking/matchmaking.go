// Package matchmaking pairs open tickets into games. Every mutating path
// runs inside a per-record critical section provided by the Locker, which
// is what closes the double-pairing race between concurrent pollers.
package matchmaking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"akabo/internal/bootstrap"
	"akabo/internal/domain/game"
	"akabo/internal/domain/ticket"
	errs "akabo/internal/errors"
)

type TicketStore interface {
	Insert(ctx context.Context, t ticket.MatchTicket) error
	GetByUUID(ctx context.Context, uuid string) (ticket.MatchTicket, error)
	HasUnfilledByUID(ctx context.Context, uid string) (bool, error)
	ListValid(ctx context.Context, now time.Time) ([]ticket.MatchTicket, error)
	Update(ctx context.Context, t ticket.MatchTicket) error
	Delete(ctx context.Context, uuid string) error
}

type UserStore interface {
	Exists(ctx context.Context, uid string) (bool, error)
}

// GameCreator is the slice of the game service the matchmaker needs: it
// only ever creates games, never mutates them.
type GameCreator interface {
	CreateGame(ctx context.Context, playerOne, playerTwo string) (game.Game, error)
}

type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
	TryAcquire(ctx context.Context, key string) (func(), bool, error)
}

type MatchmakingUseCase struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	tickets TicketStore
	users   UserStore
	games   GameCreator
	locks   Locker
}

func NewMatchmakingUseCase(cfg bootstrap.Config, log *zap.SugaredLogger, tickets TicketStore, users UserStore, games GameCreator, locks Locker) *MatchmakingUseCase {
	return &MatchmakingUseCase{
		cfg:     cfg,
		log:     log,
		tickets: tickets,
		users:   users,
		games:   games,
		locks:   locks,
	}
}

// CreateTicket opens a matchmaking request for uid. A user may hold at most
// one unfilled ticket; filled tickets never block a new request.
func (m *MatchmakingUseCase) CreateTicket(ctx context.Context, uid string) (ticket.MatchTicket, error) {
	if uid == "" {
		return ticket.MatchTicket{}, errs.ErrInvalidInput
	}
	exists, err := m.users.Exists(ctx, uid)
	if err != nil {
		return ticket.MatchTicket{}, err
	}
	if !exists {
		return ticket.MatchTicket{}, errs.ErrInvalidInput
	}

	// The uniqueness check and the insert must be one critical section,
	// otherwise two concurrent requests both pass the check.
	release, err := m.locks.Acquire(ctx, "matchmaking:"+uid)
	if err != nil {
		return ticket.MatchTicket{}, errs.ErrInternal
	}
	defer release()

	has, err := m.tickets.HasUnfilledByUID(ctx, uid)
	if err != nil {
		return ticket.MatchTicket{}, err
	}
	if has {
		return ticket.MatchTicket{}, errs.ErrDuplicate
	}

	t := ticket.New(uid, time.Now().UTC(), m.cfg.TicketTimeout)
	if err := m.tickets.Insert(ctx, t); err != nil {
		return ticket.MatchTicket{}, err
	}
	m.log.Infof("ticket %s created for uid %s", t.UUID, uid)
	return t, nil
}

// PollTicket refreshes the ticket and, if it is still unfilled, tries to
// pair it against the longest-waiting valid ticket of another user. The
// poller becomes player one, the matched owner player two. Polling an
// already filled ticket only touches it; it never re-pairs.
func (m *MatchmakingUseCase) PollTicket(ctx context.Context, ticketID, uid string) (ticket.MatchTicket, error) {
	t, err := m.tickets.GetByUUID(ctx, ticketID)
	if err != nil {
		return ticket.MatchTicket{}, err
	}
	if t.UID != uid {
		return ticket.MatchTicket{}, errs.ErrUnauthorized
	}

	release, err := m.locks.Acquire(ctx, "ticket:"+ticketID)
	if err != nil {
		return ticket.MatchTicket{}, errs.ErrInternal
	}
	defer release()

	// Re-read under the lock; a concurrent poller may have filled it.
	t, err = m.tickets.GetByUUID(ctx, ticketID)
	if err != nil {
		return ticket.MatchTicket{}, err
	}

	now := time.Now().UTC()
	if t.Filled() {
		t.Touch(now, m.cfg.TicketTimeout)
		if err := m.tickets.Update(ctx, t); err != nil {
			return ticket.MatchTicket{}, err
		}
		return t, nil
	}

	pool, err := m.tickets.ListValid(ctx, now)
	if err != nil {
		return ticket.MatchTicket{}, err
	}
	for _, cand := range pool {
		if cand.UID == t.UID {
			continue
		}
		paired, err := m.pairWith(ctx, &t, cand.UUID, now)
		if err != nil {
			return ticket.MatchTicket{}, err
		}
		if paired {
			return t, nil
		}
	}

	// Nobody to pair with; keep the ticket alive.
	t.Touch(now, m.cfg.TicketTimeout)
	if err := m.tickets.Update(ctx, t); err != nil {
		return ticket.MatchTicket{}, err
	}
	return t, nil
}

// pairWith attempts to match t against the candidate ticket. The candidate
// lock is taken non-blocking: a busy candidate belongs to another poller
// right now and is simply skipped, which also rules out lock cycles between
// two pollers pairing towards each other.
func (m *MatchmakingUseCase) pairWith(ctx context.Context, t *ticket.MatchTicket, candID string, now time.Time) (bool, error) {
	releaseCand, ok, err := m.locks.TryAcquire(ctx, "ticket:"+candID)
	if err != nil {
		return false, errs.ErrInternal
	}
	if !ok {
		return false, nil
	}
	defer releaseCand()

	// The pool listing is a snapshot; verify the candidate is still open.
	cand, err := m.tickets.GetByUUID(ctx, candID)
	if err != nil {
		if errors.Is(err, errs.ErrNoMatch) {
			return false, nil
		}
		return false, err
	}
	if cand.Filled() || cand.Expired(now) {
		return false, nil
	}

	g, err := m.games.CreateGame(ctx, t.UID, cand.UID)
	if err != nil {
		return false, err
	}

	cand.GameUUID = g.UUID
	if err := m.tickets.Update(ctx, cand); err != nil {
		return false, err
	}
	t.GameUUID = g.UUID
	t.Touch(now, m.cfg.TicketTimeout)
	if err := m.tickets.Update(ctx, *t); err != nil {
		return false, err
	}

	m.log.Infof("paired tickets %s and %s into game %s", t.UUID, cand.UUID, g.UUID)
	return true, nil
}

// DeleteTicket retracts an open matchmaking request. A filled ticket is a
// historical pointer to its game and is returned unchanged instead of
// being destroyed.
func (m *MatchmakingUseCase) DeleteTicket(ctx context.Context, ticketID, uid string) (ticket.MatchTicket, error) {
	t, err := m.tickets.GetByUUID(ctx, ticketID)
	if err != nil {
		return ticket.MatchTicket{}, err
	}
	if t.UID != uid {
		return ticket.MatchTicket{}, errs.ErrUnauthorized
	}

	release, err := m.locks.Acquire(ctx, "ticket:"+ticketID)
	if err != nil {
		return ticket.MatchTicket{}, errs.ErrInternal
	}
	defer release()

	t, err = m.tickets.GetByUUID(ctx, ticketID)
	if err != nil {
		return ticket.MatchTicket{}, err
	}
	if t.Filled() {
		return t, nil
	}
	if err := m.tickets.Delete(ctx, t.UUID); err != nil {
		return ticket.MatchTicket{}, err
	}
	m.log.Infof("ticket %s deleted by uid %s", t.UUID, uid)
	return t, nil
}
