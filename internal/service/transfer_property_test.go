// Property-based tests for TransferService.
package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"wordchain-bot/internal/pkg/lock"
)

func newTestTransfer(users *memUsers) *TransferService {
	return NewTransferService(users, lock.NewKeyLock(), time.Second)
}

// TestTransferConservationProperty checks that a successful transfer moves
// exactly the amount and keeps the total unchanged.
func TestTransferConservationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		senderBalance := rapid.Int64Range(1, 1000000).Draw(t, "senderBalance")
		receiverBalance := rapid.Int64Range(0, 1000000).Draw(t, "receiverBalance")
		amount := rapid.Int64Range(1, senderBalance).Draw(t, "amount")

		users := newMemUsers(0)
		users.add(1, "sender", senderBalance)
		users.add(2, "receiver", receiverBalance)

		if err := newTestTransfer(users).Transfer(context.Background(), 1, 2, amount); err != nil {
			t.Fatalf("transfer of %d from %d failed: %v", amount, senderBalance, err)
		}

		if got := users.balance(1); got != senderBalance-amount {
			t.Fatalf("sender balance: expected %d, got %d", senderBalance-amount, got)
		}
		if got := users.balance(2); got != receiverBalance+amount {
			t.Fatalf("receiver balance: expected %d, got %d", receiverBalance+amount, got)
		}
		if users.total() != senderBalance+receiverBalance {
			t.Fatalf("total not conserved: before=%d, after=%d", senderBalance+receiverBalance, users.total())
		}
	})
}

// TestTransferValidationCombinedProperty checks the rejection order:
// invalid amount, then self transfer, then insufficient balance.
func TestTransferValidationCombinedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		senderBalance := rapid.Int64Range(0, 1000).Draw(t, "senderBalance")
		receiverBalance := rapid.Int64Range(0, 1000).Draw(t, "receiverBalance")
		amount := rapid.Int64Range(-100, 1100).Draw(t, "amount")
		receiverID := rapid.Int64Range(1, 2).Draw(t, "receiverID")

		users := newMemUsers(0)
		users.add(1, "sender", senderBalance)
		if receiverID != 1 {
			users.add(receiverID, "receiver", receiverBalance)
		}
		before := users.total()

		err := newTestTransfer(users).Transfer(context.Background(), 1, receiverID, amount)

		var want error
		switch {
		case amount <= 0:
			want = ErrInvalidAmount
		case receiverID == 1:
			want = ErrSelfTransfer
		case senderBalance < amount:
			want = ErrInsufficientBalance
		}
		if want == nil {
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			return
		}
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if users.balance(1) != senderBalance || users.total() != before {
			t.Fatalf("balances changed on a rejected transfer")
		}
	})
}

func TestTransfer_UnknownReceiver(t *testing.T) {
	users := newMemUsers(0)
	users.add(1, "sender", 100)

	err := newTestTransfer(users).Transfer(context.Background(), 1, 2, 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, int64(100), users.balance(1))
}

func TestTransfer_ConcurrentWithStakeDebits(t *testing.T) {
	users := newMemUsers(0)
	users.add(1, "sender", 100)
	users.add(2, "receiver", 0)

	userLock := lock.NewKeyLock()
	transfers := NewTransferService(users, userLock, time.Second)
	ledger := NewGameLedger(users, &memTxs{}, userLock, time.Second, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = transfers.Transfer(context.Background(), 1, 2, 15)
		}()
		go func() {
			defer wg.Done()
			_, _ = ledger.Debit(context.Background(), 1, 15, "g")
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, users.balance(1), int64(0))
	assert.Equal(t, int64(10), users.balance(1), "six 15-coin withdrawals fit in 100")
}

func TestValidateTransfer(t *testing.T) {
	users := newMemUsers(0)
	users.add(1, "sender", 50)
	users.add(2, "receiver", 0)
	s := newTestTransfer(users)
	ctx := context.Background()

	assert.NoError(t, s.ValidateTransfer(ctx, 1, 2, 50))
	assert.ErrorIs(t, s.ValidateTransfer(ctx, 1, 2, 51), ErrInsufficientBalance)
	assert.ErrorIs(t, s.ValidateTransfer(ctx, 1, 3, 1), ErrUserNotFound)
	assert.ErrorIs(t, s.ValidateTransfer(ctx, 3, 1, 1), ErrUserNotFound)
	assert.ErrorIs(t, s.ValidateTransfer(ctx, 1, 1, 1), ErrSelfTransfer)
	assert.ErrorIs(t, s.ValidateTransfer(ctx, 1, 2, 0), ErrInvalidAmount)
	assert.Equal(t, int64(50), users.balance(1), "validation never moves coins")
}
