package wordchain

import (
	"slices"
	"time"
)

// Snapshot is a copy of a game that is safe to read without the chat lock.
type Snapshot struct {
	ID         string
	ChatID     int64
	Kind       Kind
	State      State
	Stake      int64
	CreatorID  int64
	Players    []Player
	Current    int
	Words      []string
	LastLetter string
	Generation uint64
	CreatedAt  time.Time
}

func (g *Game) snapshot() *Snapshot {
	players := make([]Player, len(g.Players))
	for i, p := range g.Players {
		players[i] = *p
	}
	return &Snapshot{
		ID:         g.ID,
		ChatID:     g.ChatID,
		Kind:       g.Kind,
		State:      g.State,
		Stake:      g.Stake,
		CreatorID:  g.CreatorID,
		Players:    players,
		Current:    g.Current,
		Words:      slices.Clone(g.Words),
		LastLetter: g.LastLetter,
		Generation: g.Generation,
		CreatedAt:  g.CreatedAt,
	}
}

// Pot is the sum of all stakes.
func (s *Snapshot) Pot() int64 {
	var pot int64
	for _, p := range s.Players {
		pot += p.Stake
	}
	return pot
}

// CurrentPlayer returns the player whose turn it is while the game is Active.
func (s *Snapshot) CurrentPlayer() (Player, bool) {
	if s.State != StateActive || s.Current < 0 || s.Current >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.Current], true
}

// AliveCount returns the number of players still in the game.
func (s *Snapshot) AliveCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Alive {
			n++
		}
	}
	return n
}
