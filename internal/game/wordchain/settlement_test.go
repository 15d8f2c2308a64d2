package wordchain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSettle_SingleSurvivorTakesPot(t *testing.T) {
	g := newGame("g", testChat, KindLobby, 10, alice, time.Now())
	_ = g.Join(bob)
	_ = g.Join(carol)
	g.Player(alice.UserID).Alive = false
	g.Player(bob.UserID).Alive = false

	s := Settle(g)
	assert.Equal(t, int64(30), s.Pot)
	assert.Equal(t, int64(30), s.ShareEach)
	assert.Zero(t, s.RoundingLoss)
	assert.Len(t, s.Winners, 1)
	assert.Len(t, s.Losers, 2)
	assert.False(t, s.Forfeited)
}

func TestSettle_TieSplitsWithRoundingLoss(t *testing.T) {
	g := newGame("g", testChat, KindLobby, 10, alice, time.Now())
	_ = g.Join(bob)
	_ = g.Join(carol)
	_ = g.Join(dave)
	g.Player(dave.UserID).Alive = false

	s := Settle(g)
	assert.Equal(t, int64(40), s.Pot)
	assert.Equal(t, int64(13), s.ShareEach)
	assert.Equal(t, int64(1), s.RoundingLoss)
	assert.Equal(t, int64(39), s.Paid())
}

func TestSettle_NoSurvivorsForfeits(t *testing.T) {
	g := newGame("g", testChat, KindLobby, 10, alice, time.Now())
	_ = g.Join(bob)
	for _, p := range g.Players {
		p.Alive = false
	}

	s := Settle(g)
	assert.True(t, s.Forfeited)
	assert.Zero(t, s.Paid())
	assert.Empty(t, s.Winners)
}

// TestPotConservationProperty checks that stakes always equal payouts plus a
// rounding loss smaller than the number of survivors.
func TestPotConservationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stake := rapid.Int64Range(1, 1000).Draw(t, "stake")
		n := rapid.IntRange(2, 12).Draw(t, "players")

		g := newGame("g", testChat, KindLobby, stake, Participant{UserID: 0}, time.Now())
		for i := 1; i < n; i++ {
			_ = g.Join(Participant{UserID: int64(i), DisplayName: fmt.Sprint(i)})
		}
		alive := rapid.SliceOfN(rapid.Bool(), n, n).Draw(t, "alive")
		survivors := 0
		for i, p := range g.Players {
			p.Alive = alive[i]
			if p.Alive {
				survivors++
			}
		}

		s := Settle(g)
		if s.Pot != stake*int64(n) {
			t.Fatalf("pot %d, want %d", s.Pot, stake*int64(n))
		}
		if survivors == 0 {
			if !s.Forfeited || s.Paid() != 0 {
				t.Fatalf("no survivors must forfeit without payout")
			}
			return
		}
		if s.Paid()+s.RoundingLoss != s.Pot {
			t.Fatalf("paid %d + loss %d != pot %d", s.Paid(), s.RoundingLoss, s.Pot)
		}
		if s.RoundingLoss >= int64(survivors) {
			t.Fatalf("rounding loss %d not below survivors %d", s.RoundingLoss, survivors)
		}
	})
}
