package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"wordchain-bot/internal/model"
	"wordchain-bot/internal/pkg/lock"
)

func newTestAccounts(users *memUsers, txs *memTxs) *AccountService {
	return NewAccountService(users, txs, lock.NewKeyLock(), time.Second)
}

func TestEnsureUser_CreatesOnceWithInitialBalance(t *testing.T) {
	users := newMemUsers(100)
	txs := &memTxs{}
	s := newTestAccounts(users, txs)
	ctx := context.Background()

	user, created, err := s.EnsureUser(ctx, 1, "alice")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(100), user.Balance)

	_, created, err = s.EnsureUser(ctx, 1, "alice")
	require.NoError(t, err)
	assert.False(t, created)

	initial := txs.ofType(model.TxTypeInitial)
	require.Len(t, initial, 1)
	assert.Equal(t, int64(100), initial[0].Amount)
}

func TestEnsureUser_UpdatesChangedUsername(t *testing.T) {
	users := newMemUsers(100)
	s := newTestAccounts(users, &memTxs{})
	ctx := context.Background()

	_, _, err := s.EnsureUser(ctx, 1, "alice")
	require.NoError(t, err)

	user, _, err := s.EnsureUser(ctx, 1, "alice_new")
	require.NoError(t, err)
	assert.Equal(t, "alice_new", user.Username)

	found, err := s.FindByUsername(ctx, "@ALICE_NEW")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.TelegramID)

	_, err = s.FindByUsername(ctx, "@alice")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetBalance_UnknownUser(t *testing.T) {
	s := newTestAccounts(newMemUsers(100), &memTxs{})
	_, err := s.GetBalance(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateBalance_RecordsTransaction(t *testing.T) {
	users := newMemUsers(100)
	users.add(1, "alice", 100)
	txs := &memTxs{}
	s := newTestAccounts(users, txs)
	ctx := context.Background()

	user, err := s.UpdateBalance(ctx, 1, 50, model.TxTypeAdminAdd, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(150), user.Balance)
	assert.Len(t, txs.ofType(model.TxTypeAdminAdd), 1)

	_, err = s.UpdateBalance(ctx, 1, -151, model.TxTypeAdminSub, nil)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, txs.ofType(model.TxTypeAdminSub))

	_, err = s.UpdateBalance(ctx, 2, 10, model.TxTypeAdminAdd, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// TestTopUsersOrderingProperty checks that the leaderboard is sorted by
// balance, then wins, and respects the limit.
func TestTopUsersOrderingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numUsers := rapid.IntRange(1, 30).Draw(t, "numUsers")
		users := newMemUsers(0)
		ctx := context.Background()
		for i := 0; i < numUsers; i++ {
			id := int64(i + 1)
			users.add(id, "u", rapid.Int64Range(0, 50).Draw(t, "balance"))
			for w := rapid.IntRange(0, 3).Draw(t, "wins"); w > 0; w-- {
				_ = users.RecordGameResult(ctx, id, true, 1)
			}
		}
		limit := rapid.IntRange(1, numUsers+5).Draw(t, "limit")

		top, err := newTestAccounts(users, &memTxs{}).GetTopUsers(ctx, limit)
		if err != nil {
			t.Fatal(err)
		}
		if len(top) != min(limit, numUsers) {
			t.Fatalf("expected %d users, got %d", min(limit, numUsers), len(top))
		}
		for i := 1; i < len(top); i++ {
			a, b := top[i-1], top[i]
			if a.Balance < b.Balance || (a.Balance == b.Balance && a.GamesWon < b.GamesWon) {
				t.Fatalf("users %d and %d out of order", a.TelegramID, b.TelegramID)
			}
		}
	})
}
