package matchmaking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"akabo/internal/bootstrap"
	"akabo/internal/domain/game"
	"akabo/internal/domain/ticket"
	"akabo/internal/domain/user"
	errs "akabo/internal/errors"
	repo "akabo/internal/repository"
	gameUC "akabo/internal/usecase/game"
)

type fixture struct {
	match   *MatchmakingUseCase
	tickets *repo.MemoryTicketStorage
	games   *repo.MemoryGameStorage
	users   *repo.MemoryUserStorage
}

func newFixture(t *testing.T, uids ...string) *fixture {
	t.Helper()

	cfg := bootstrap.Config{
		GameTimeout:   2 * time.Minute,
		TicketTimeout: 30 * time.Second,
	}
	log := zap.NewNop().Sugar()

	users := repo.NewMemoryUserStorage()
	for _, uid := range uids {
		require.NoError(t, users.Create(context.Background(), user.User{UID: uid, Username: uid}))
	}
	tickets := repo.NewMemoryTicketStorage()
	games := repo.NewMemoryGameStorage()
	locks := repo.NewMemoryLocker()

	creator := gameUC.NewGameUseCase(cfg, log, games, users, locks)
	return &fixture{
		match:   NewMatchmakingUseCase(cfg, log, tickets, users, creator, locks),
		tickets: tickets,
		games:   games,
		users:   users,
	}
}

func TestCreateTicket(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	tk, err := f.match.CreateTicket(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, tk.UUID)
	assert.Equal(t, "alice", tk.UID)
	assert.False(t, tk.Filled())
	assert.True(t, tk.Expires.After(tk.Created))
}

func TestCreateTicketUnknownUser(t *testing.T) {
	f := newFixture(t, "alice")

	_, err := f.match.CreateTicket(context.Background(), "mallory")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = f.match.CreateTicket(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestCreateTicketDuplicate(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	_, err := f.match.CreateTicket(ctx, "alice")
	require.NoError(t, err)

	_, err = f.match.CreateTicket(ctx, "alice")
	assert.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestCreateTicketConcurrentDuplicate(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.match.CreateTicket(ctx, "alice")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var okCount, dupCount int
	for err := range results {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, errs.ErrDuplicate):
			dupCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, dupCount)
}

func TestCreateTicketAfterPreviousFilled(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	_, err := f.match.CreateTicket(ctx, "alice")
	require.NoError(t, err)
	bobTk, err := f.match.CreateTicket(ctx, "bob")
	require.NoError(t, err)

	bobTk, err = f.match.PollTicket(ctx, bobTk.UUID, "bob")
	require.NoError(t, err)
	require.True(t, bobTk.Filled())

	// A filled ticket does not block a fresh queue entry.
	_, err = f.match.CreateTicket(ctx, "bob")
	assert.NoError(t, err)
}

func TestPollTicketErrors(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	_, err := f.match.PollTicket(ctx, "no-such-ticket", "alice")
	assert.ErrorIs(t, err, errs.ErrNoMatch)

	tk, err := f.match.CreateTicket(ctx, "alice")
	require.NoError(t, err)

	_, err = f.match.PollTicket(ctx, tk.UUID, "mallory")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestPollTicketPairsOldestWaiting(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	aliceTk, err := f.match.CreateTicket(ctx, "alice")
	require.NoError(t, err)

	// Nobody else waiting: unfilled, expiry advanced.
	before := aliceTk.Expires
	time.Sleep(5 * time.Millisecond)
	aliceTk, err = f.match.PollTicket(ctx, aliceTk.UUID, "alice")
	require.NoError(t, err)
	assert.False(t, aliceTk.Filled())
	assert.True(t, aliceTk.Expires.After(before))
	assert.Equal(t, 0, f.games.Len())

	bobTk, err := f.match.CreateTicket(ctx, "bob")
	require.NoError(t, err)

	// Bob polls and pairs with alice; the poller is player one.
	bobTk, err = f.match.PollTicket(ctx, bobTk.UUID, "bob")
	require.NoError(t, err)
	require.True(t, bobTk.Filled())

	g, err := f.games.GetByUUID(ctx, bobTk.GameUUID)
	require.NoError(t, err)
	assert.Equal(t, "bob", g.PlayerOne)
	assert.Equal(t, "alice", g.PlayerTwo)
	assert.Equal(t, game.StateMoveOne, g.State)

	// Alice's ticket now points at the same game.
	aliceTk, err = f.match.PollTicket(ctx, aliceTk.UUID, "alice")
	require.NoError(t, err)
	assert.Equal(t, bobTk.GameUUID, aliceTk.GameUUID)
}

func TestPollTicketFilledIsIdempotent(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	_, err := f.match.CreateTicket(ctx, "alice")
	require.NoError(t, err)
	bobTk, err := f.match.CreateTicket(ctx, "bob")
	require.NoError(t, err)

	bobTk, err = f.match.PollTicket(ctx, bobTk.UUID, "bob")
	require.NoError(t, err)
	require.True(t, bobTk.Filled())
	gameID := bobTk.GameUUID

	for i := 0; i < 3; i++ {
		bobTk, err = f.match.PollTicket(ctx, bobTk.UUID, "bob")
		require.NoError(t, err)
		assert.Equal(t, gameID, bobTk.GameUUID)
	}
	assert.Equal(t, 1, f.games.Len())
}

func TestPollTicketSkipsExpired(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	aliceTk, err := f.match.CreateTicket(ctx, "alice")
	require.NoError(t, err)

	// Age alice's ticket past its expiry.
	aliceTk.Expires = time.Now().UTC().Add(-time.Second)
	require.NoError(t, f.tickets.Update(ctx, aliceTk))

	bobTk, err := f.match.CreateTicket(ctx, "bob")
	require.NoError(t, err)
	bobTk, err = f.match.PollTicket(ctx, bobTk.UUID, "bob")
	require.NoError(t, err)

	assert.False(t, bobTk.Filled())
	assert.Equal(t, 0, f.games.Len())
}

func TestPollTicketConcurrentPairing(t *testing.T) {
	// Two pollers race for the same third ticket; it must be paired at
	// most once and exactly one game may be created.
	f := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()

	carolTk, err := f.match.CreateTicket(ctx, "carol")
	require.NoError(t, err)
	aliceTk, err := f.match.CreateTicket(ctx, "alice")
	require.NoError(t, err)
	bobTk, err := f.match.CreateTicket(ctx, "bob")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := f.match.PollTicket(ctx, aliceTk.UUID, "alice")
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := f.match.PollTicket(ctx, bobTk.UUID, "bob")
		assert.NoError(t, err)
	}()
	wg.Wait()

	carolTk, err = f.tickets.GetByUUID(ctx, carolTk.UUID)
	require.NoError(t, err)
	require.True(t, carolTk.Filled())
	assert.Equal(t, 1, f.games.Len())

	// Exactly one of the two pollers got carol.
	aliceTk, err = f.tickets.GetByUUID(ctx, aliceTk.UUID)
	require.NoError(t, err)
	bobTk, err = f.tickets.GetByUUID(ctx, bobTk.UUID)
	require.NoError(t, err)
	filled := 0
	for _, tk := range []ticket.MatchTicket{aliceTk, bobTk} {
		if tk.Filled() {
			filled++
			assert.Equal(t, carolTk.GameUUID, tk.GameUUID)
		}
	}
	assert.Equal(t, 1, filled)
}

func TestDeleteTicket(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	tk, err := f.match.CreateTicket(ctx, "alice")
	require.NoError(t, err)

	_, err = f.match.DeleteTicket(ctx, tk.UUID, "mallory")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	deleted, err := f.match.DeleteTicket(ctx, tk.UUID, "alice")
	require.NoError(t, err)
	assert.Equal(t, tk.UUID, deleted.UUID)

	_, err = f.match.PollTicket(ctx, tk.UUID, "alice")
	assert.ErrorIs(t, err, errs.ErrNoMatch)
}

func TestDeleteTicketFilledIsNoOp(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	_, err := f.match.CreateTicket(ctx, "alice")
	require.NoError(t, err)
	bobTk, err := f.match.CreateTicket(ctx, "bob")
	require.NoError(t, err)
	bobTk, err = f.match.PollTicket(ctx, bobTk.UUID, "bob")
	require.NoError(t, err)
	require.True(t, bobTk.Filled())

	// A ticket that became a game cannot be retracted.
	kept, err := f.match.DeleteTicket(ctx, bobTk.UUID, "bob")
	require.NoError(t, err)
	assert.Equal(t, bobTk.GameUUID, kept.GameUUID)

	again, err := f.tickets.GetByUUID(ctx, bobTk.UUID)
	require.NoError(t, err)
	assert.True(t, again.Filled())
}
