package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"akabo/internal/domain/game"
	"akabo/internal/domain/ticket"
	"akabo/internal/domain/user"
	errs "akabo/internal/errors"
)

// Map-backed storage implementations. They honor the same contracts as the
// mongo ones and back local development and the usecase tests.

type MemoryUserStorage struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func NewMemoryUserStorage() *MemoryUserStorage {
	return &MemoryUserStorage{users: make(map[string]user.User)}
}

func (m *MemoryUserStorage) Create(_ context.Context, u user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.UID] = u
	return nil
}

func (m *MemoryUserStorage) GetByUID(_ context.Context, uid string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[uid]
	if !ok {
		return user.User{}, errs.ErrNoMatch
	}
	return u, nil
}

func (m *MemoryUserStorage) Exists(_ context.Context, uid string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[uid]
	return ok, nil
}

func (m *MemoryUserStorage) AddWin(_ context.Context, uid string) error {
	return m.inc(uid, func(u *user.User) { u.Wins++ })
}

func (m *MemoryUserStorage) AddLoss(_ context.Context, uid string) error {
	return m.inc(uid, func(u *user.User) { u.Losses++ })
}

func (m *MemoryUserStorage) inc(uid string, f func(*user.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return errs.ErrNoMatch
	}
	f(&u)
	m.users[uid] = u
	return nil
}

type MemoryTicketStorage struct {
	mu      sync.RWMutex
	tickets map[string]ticket.MatchTicket
}

func NewMemoryTicketStorage() *MemoryTicketStorage {
	return &MemoryTicketStorage{tickets: make(map[string]ticket.MatchTicket)}
}

func (m *MemoryTicketStorage) Insert(_ context.Context, t ticket.MatchTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[t.UUID] = t
	return nil
}

func (m *MemoryTicketStorage) GetByUUID(_ context.Context, uuid string) (ticket.MatchTicket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tickets[uuid]
	if !ok {
		return ticket.MatchTicket{}, errs.ErrNoMatch
	}
	return t, nil
}

func (m *MemoryTicketStorage) HasUnfilledByUID(_ context.Context, uid string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tickets {
		if t.UID == uid && !t.Filled() {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryTicketStorage) ListValid(_ context.Context, now time.Time) ([]ticket.MatchTicket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []ticket.MatchTicket
	for _, t := range m.tickets {
		if !t.Filled() && !t.Expired(now) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Created.Before(result[j].Created)
	})
	return result, nil
}

func (m *MemoryTicketStorage) Update(_ context.Context, t ticket.MatchTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[t.UUID]; !ok {
		return errs.ErrNoMatch
	}
	m.tickets[t.UUID] = t
	return nil
}

func (m *MemoryTicketStorage) Delete(_ context.Context, uuid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[uuid]; !ok {
		return errs.ErrNoMatch
	}
	delete(m.tickets, uuid)
	return nil
}

type MemoryGameStorage struct {
	mu    sync.RWMutex
	games map[string]game.Game
}

func NewMemoryGameStorage() *MemoryGameStorage {
	return &MemoryGameStorage{games: make(map[string]game.Game)}
}

func (m *MemoryGameStorage) Insert(_ context.Context, g game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.UUID] = g
	return nil
}

func (m *MemoryGameStorage) GetByUUID(_ context.Context, uuid string) (game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[uuid]
	if !ok {
		return game.Game{}, errs.ErrNoMatch
	}
	return g, nil
}

func (m *MemoryGameStorage) Update(_ context.Context, g game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.UUID]; !ok {
		return errs.ErrNoMatch
	}
	m.games[g.UUID] = g
	return nil
}

func (m *MemoryGameStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// MemoryLocker gives the same per-key mutual exclusion as RedisLocker for
// single-process use.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MemoryLocker) forKey(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	m := l.forKey(key)
	for {
		if m.TryLock() {
			return m.Unlock, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, key string) (func(), bool, error) {
	m := l.forKey(key)
	if m.TryLock() {
		return m.Unlock, true, nil
	}
	return nil, false, nil
}
