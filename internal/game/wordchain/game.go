// Package wordchain implements the word chain elimination game: lobbies,
// stakes, timed turns, pot settlement and head-to-head challenges.
package wordchain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// State is the lifecycle state of a game.
type State int

const (
	StateWaiting State = iota
	StateActive
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Kind tells how a game was created.
type Kind string

const (
	KindLobby     Kind = "lobby"
	KindChallenge Kind = "challenge"
)

// Participant identifies a chat user.
type Participant struct {
	UserID      int64
	DisplayName string
}

// Player is a participant seated in a game.
type Player struct {
	Participant
	Stake int64
	Alive bool
}

// Game is one word chain round in a chat. A Game is only touched while the
// chat lock is held.
type Game struct {
	ID         string
	ChatID     int64
	Kind       Kind
	State      State
	Stake      int64
	CreatorID  int64
	Players    []*Player
	Current    int
	Words      []string
	LastLetter string
	Generation uint64
	CreatedAt  time.Time

	used map[string]struct{}
}

func newGame(id string, chatID int64, kind Kind, stake int64, creator Participant, now time.Time) *Game {
	g := &Game{
		ID:        id,
		ChatID:    chatID,
		Kind:      kind,
		State:     StateWaiting,
		Stake:     stake,
		CreatorID: creator.UserID,
		CreatedAt: now,
		used:      make(map[string]struct{}),
	}
	g.Players = append(g.Players, &Player{Participant: creator, Stake: stake, Alive: true})
	return g
}

// Player returns the seated player with the given user ID.
func (g *Game) Player(userID int64) *Player {
	for _, p := range g.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// Join seats a participant. Only possible while waiting.
func (g *Game) Join(p Participant) error {
	if g.State != StateWaiting {
		return ErrAlreadyStarted
	}
	if g.Player(p.UserID) != nil {
		return ErrAlreadyJoined
	}
	g.Players = append(g.Players, &Player{Participant: p, Stake: g.Stake, Alive: true})
	return nil
}

// Pot is the sum of all stakes in the game.
func (g *Game) Pot() int64 {
	var pot int64
	for _, p := range g.Players {
		pot += p.Stake
	}
	return pot
}

// activate moves a waiting game to Active, shuffles the turn order once and
// opens turn 0.
func (g *Game) activate(shuffle func(n int, swap func(i, j int))) error {
	if g.State != StateWaiting {
		return ErrAlreadyStarted
	}
	if len(g.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	shuffle(len(g.Players), func(i, j int) {
		g.Players[i], g.Players[j] = g.Players[j], g.Players[i]
	})
	g.State = StateActive
	g.Current = 0
	g.Generation++
	return nil
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() (*Player, error) {
	if g.State != StateActive {
		return nil, ErrNotStarted
	}
	if g.Current < 0 || g.Current >= len(g.Players) {
		return nil, fmt.Errorf("%w: current index %d of %d players", ErrCorruptState, g.Current, len(g.Players))
	}
	p := g.Players[g.Current]
	if !p.Alive {
		return nil, fmt.Errorf("%w: current player %d is eliminated", ErrCorruptState, p.UserID)
	}
	return p, nil
}

// NextAlive returns the first alive player after the current one, cyclically.
func (g *Game) NextAlive() *Player {
	n := len(g.Players)
	for step := 1; step <= n; step++ {
		p := g.Players[(g.Current+step)%n]
		if p.Alive {
			return p
		}
	}
	return nil
}

// Alive returns the players still in the game, in turn order.
func (g *Game) Alive() []*Player {
	alive := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// AliveCount returns the number of players still in the game.
func (g *Game) AliveCount() int {
	n := 0
	for _, p := range g.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

// Used reports whether a normalized word has been played.
func (g *Game) Used(word string) bool {
	_, ok := g.used[word]
	return ok
}

// accept records a normalized word and sets the letter the next word must start with.
func (g *Game) accept(word string) {
	g.used[word] = struct{}{}
	g.Words = append(g.Words, word)
	last, _ := utf8.DecodeLastRuneInString(word)
	g.LastLetter = string(last)
}

// eliminate flips a player to dead. Returns false if already eliminated.
func (g *Game) eliminate(p *Player) bool {
	if !p.Alive {
		return false
	}
	p.Alive = false
	return true
}

// advance opens the next turn for the next alive player. It returns false
// when the game must finish instead: one or no players left, or a full cycle
// found nobody alive.
func (g *Game) advance() bool {
	if g.AliveCount() <= 1 {
		return false
	}
	n := len(g.Players)
	for step := 1; step <= n; step++ {
		idx := (g.Current + step) % n
		if g.Players[idx].Alive {
			g.Current = idx
			g.Generation++
			return true
		}
	}
	return false
}

func participants(players []*Player) []Participant {
	out := make([]Participant, len(players))
	for i, p := range players {
		out[i] = p.Participant
	}
	return out
}
