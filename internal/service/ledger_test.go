package service

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordchain-bot/internal/dictionary"
	"wordchain-bot/internal/game/wordchain"
	"wordchain-bot/internal/model"
	"wordchain-bot/internal/pkg/lock"
)

func newTestLedger(users *memUsers, txs TransactionStore) (*GameLedger, *lock.KeyLock) {
	userLock := lock.NewKeyLock()
	return NewGameLedger(users, txs, userLock, time.Second, 50*time.Millisecond), userLock
}

func TestGameLedger_GetBalance(t *testing.T) {
	users := newMemUsers(100)
	users.add(1, "alice", 70)
	ledger, _ := newTestLedger(users, &memTxs{})
	ctx := context.Background()

	b, err := ledger.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(70), b)

	b, err = ledger.GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, b, "unregistered users have no coins")
}

func TestGameLedger_DebitIsConditional(t *testing.T) {
	users := newMemUsers(100)
	users.add(1, "alice", 15)
	txs := &memTxs{}
	ledger, _ := newTestLedger(users, txs)
	ctx := context.Background()

	ok, err := ledger.Debit(ctx, 1, 10, "g-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Debit(ctx, 1, 10, "g-2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(5), users.balance(1))

	ok, err = ledger.Debit(ctx, 99, 10, "g-3")
	require.NoError(t, err)
	assert.False(t, ok)

	stakes := txs.ofType(model.TxTypeStake)
	require.Len(t, stakes, 1)
	assert.Equal(t, int64(-10), stakes[0].Amount)
	require.NotNil(t, stakes[0].Description)
	assert.Equal(t, "game g-1", *stakes[0].Description)

	_, err = ledger.Debit(ctx, 1, 0, "g-4")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGameLedger_CreditKinds(t *testing.T) {
	users := newMemUsers(100)
	users.add(1, "alice", 0)
	txs := &memTxs{}
	ledger, _ := newTestLedger(users, txs)
	ctx := context.Background()

	require.NoError(t, ledger.Credit(ctx, 1, 30, wordchain.CreditPrize, "g-1"))
	require.NoError(t, ledger.Credit(ctx, 1, 10, wordchain.CreditRefund, "g-2"))

	assert.Equal(t, int64(40), users.balance(1))
	assert.Len(t, txs.ofType(model.TxTypePrize), 1)
	assert.Len(t, txs.ofType(model.TxTypeStakeBack), 1)

	assert.Error(t, ledger.Credit(ctx, 99, 10, wordchain.CreditPrize, "g-3"))
}

func TestGameLedger_HonoursUserLock(t *testing.T) {
	users := newMemUsers(100)
	users.add(1, "alice", 100)
	ledger, userLock := newTestLedger(users, &memTxs{})

	userLock.Lock(1)
	_, err := ledger.Debit(context.Background(), 1, 10, "g-1")
	userLock.Unlock(1)

	assert.ErrorIs(t, err, lock.ErrLockTimeout)
	assert.Equal(t, int64(100), users.balance(1), "no debit without the lock")
}

func TestGameLedger_RecordGameResult(t *testing.T) {
	users := newMemUsers(100)
	users.add(1, "alice", 100)
	ledger, _ := newTestLedger(users, &memTxs{})
	ctx := context.Background()

	require.NoError(t, ledger.RecordGameResult(ctx, 1, true, 20))
	require.NoError(t, ledger.RecordGameResult(ctx, 1, false, 10))

	u, err := users.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, u.GamesPlayed)
	assert.Equal(t, 1, u.GamesWon)
	assert.Equal(t, int64(20), u.TotalCoinsWon)
	assert.Equal(t, int64(10), u.TotalCoinsLost)
}

// TestGameLedger_ChallengeGameEndToEnd plays a challenge through the engine
// with the service-backed ledger and history recorder.
func TestGameLedger_ChallengeGameEndToEnd(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers(100)
	users.add(1, "alice", 100)
	users.add(2, "bob", 100)
	txs := &memTxs{}
	games := newMemGames()

	ledger, _ := newTestLedger(users, txs)
	history := NewHistoryRecorder(games, time.Second)
	clock := quartz.NewMock(t)
	m := wordchain.NewManager(ledger, dictionary.New([]string{"apple", "eagle"}), history, clock, wordchain.DefaultOptions())
	t.Cleanup(m.Close)

	alice := wordchain.Participant{UserID: 1, DisplayName: "alice"}
	bob := wordchain.Participant{UserID: 2, DisplayName: "bob"}

	c, err := m.IssueChallenge(ctx, -100, alice, bob, 10)
	require.NoError(t, err)
	res, err := m.AcceptChallenge(ctx, c.ID, bob.UserID)
	require.NoError(t, err)
	require.Equal(t, wordchain.ResolutionResolved, res)

	assert.Equal(t, int64(90), users.balance(1))
	assert.Equal(t, int64(90), users.balance(2))
	assert.Len(t, txs.ofType(model.TxTypeStake), 2)

	snap, ok := m.Snapshot(-100)
	require.True(t, ok)
	first, ok := snap.CurrentPlayer()
	require.True(t, ok)

	// too short, the first player is out and the other takes the pot
	require.NoError(t, m.SubmitWord(ctx, -100, first.UserID, "zz"))

	winner := alice.UserID
	if first.UserID == alice.UserID {
		winner = bob.UserID
	}
	assert.Equal(t, int64(110), users.balance(winner))
	assert.Equal(t, int64(90), users.balance(first.UserID))
	assert.Equal(t, int64(200), users.total())

	rec, ok := games.get(snap.ID)
	require.True(t, ok)
	assert.Equal(t, GameStateFinished, rec.State)
	assert.Equal(t, model.GameKindChallenge, rec.Kind)
	assert.Equal(t, []int64{winner}, rec.WinnerIDs)
	assert.Equal(t, int64(20), rec.Pot)
	assert.ElementsMatch(t, []int64{1, 2}, rec.PlayerIDs)
}
