package wordchain

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
)

// ChallengeState is the lifecycle state of a challenge.
type ChallengeState int

const (
	ChallengeStatePending ChallengeState = iota
	ChallengeStateAccepted
	ChallengeStateDeclined
	ChallengeStateExpired
)

func (s ChallengeState) String() string {
	switch s {
	case ChallengeStatePending:
		return "pending"
	case ChallengeStateAccepted:
		return "accepted"
	case ChallengeStateDeclined:
		return "declined"
	default:
		return "expired"
	}
}

// Challenge is a head-to-head game offer from one user to another.
type Challenge struct {
	ID         string
	ChatID     int64
	Challenger Participant
	Challenged Participant
	Stake      int64
	State      ChallengeState
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Book stores challenges by ID. Its mutex guards the map only; a challenge's
// state changes under the lock of its chat.
type Book struct {
	byID map[string]*Challenge
	mu   sync.RWMutex
}

// NewBook creates an empty challenge book.
func NewBook() *Book {
	return &Book{byID: make(map[string]*Challenge)}
}

func (b *Book) add(c *Challenge) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byID[c.ID] = c
}

func (b *Book) get(id string) (*Challenge, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.byID[id]
	return c, ok
}

func (b *Book) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.byID, id)
}

// inChat returns the challenges of a chat.
func (b *Book) inChat(chatID int64) []*Challenge {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []*Challenge
	for _, c := range b.byID {
		if c.ChatID == chatID {
			out = append(out, c)
		}
	}
	return out
}

// all returns every stored challenge.
func (b *Book) all() []*Challenge {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Challenge, 0, len(b.byID))
	for _, c := range b.byID {
		out = append(out, c)
	}
	return out
}

// Len returns the number of stored challenges, resolved ones included.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}

// IssueChallenge offers a two-player game to another user. The challenger
// must cover the stake now; both balances are checked again on acceptance.
func (m *Manager) IssueChallenge(ctx context.Context, chatID int64, challenger, challenged Participant, stake int64) (*Challenge, error) {
	if challenger.UserID == challenged.UserID {
		return nil, ErrSelfChallenge
	}
	if stake <= 0 || stake > m.opts.MaxCustomStake {
		return nil, ErrInvalidStake
	}

	var issued Challenge
	err := m.withChat(ctx, chatID, func(s *step) error {
		if err := m.requireFunds(ctx, challenger, stake); err != nil {
			return err
		}

		now := m.clock.Now()
		c := &Challenge{
			ID:         m.newID(),
			ChatID:     chatID,
			Challenger: challenger,
			Challenged: challenged,
			Stake:      stake,
			State:      ChallengeStatePending,
			CreatedAt:  now,
			ExpiresAt:  now.Add(m.opts.ChallengeTTL),
		}
		m.challenges.add(c)
		issued = *c

		log.Info().
			Int64("chat_id", chatID).
			Str("challenge_id", c.ID).
			Int64("challenger_id", challenger.UserID).
			Int64("challenged_id", challenged.UserID).
			Int64("stake", stake).
			Msg("Challenge issued")

		s.emit(ChallengeIssued{Header: Header{ChatID: chatID}, Challenge: issued})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &issued, nil
}

// AcceptChallenge answers a pending challenge with yes. Both balances are
// read again; on success both stakes are debited and an Active two-player
// game opens turn 0 in random order. Every other pending challenge of the
// chat expires as superseded.
func (m *Manager) AcceptChallenge(ctx context.Context, challengeID string, userID int64) (Resolution, error) {
	c, ok := m.challenges.get(challengeID)
	if !ok {
		return ResolutionAlreadyHandled, ErrChallengeNotFound
	}

	res := ResolutionResolved
	err := m.withChat(ctx, c.ChatID, func(s *step) error {
		if handled := m.resolvedOrExpired(s, c); handled {
			res = ResolutionAlreadyHandled
			return nil
		}
		if userID != c.Challenged.UserID {
			return ErrNotChallenged
		}
		if _, exists := m.games.Get(c.ChatID); exists {
			return ErrGameExists
		}

		g := newGame(m.newID(), c.ChatID, KindChallenge, c.Stake, c.Challenger, m.clock.Now())
		if err := g.Join(c.Challenged); err != nil {
			return err
		}
		if err := m.games.Add(g); err != nil {
			return err
		}
		if err := m.startLocked(ctx, s, g); err != nil {
			m.games.Remove(g)
			return err
		}

		c.State = ChallengeStateAccepted
		log.Info().
			Int64("chat_id", c.ChatID).
			Str("challenge_id", c.ID).
			Str("game_id", g.ID).
			Msg("Challenge accepted")
		s.emitFirst(ChallengeAccepted{Header: Header{ChatID: c.ChatID, GameID: g.ID}, Challenge: *c})

		for _, other := range m.challenges.inChat(c.ChatID) {
			if other.ID == c.ID || other.State != ChallengeStatePending {
				continue
			}
			other.State = ChallengeStateExpired
			s.emit(ChallengeExpired{Header: Header{ChatID: other.ChatID}, Challenge: *other, Superseded: true})
		}
		return nil
	})
	return res, err
}

// DeclineChallenge answers a pending challenge with no.
func (m *Manager) DeclineChallenge(ctx context.Context, challengeID string, userID int64) (Resolution, error) {
	c, ok := m.challenges.get(challengeID)
	if !ok {
		return ResolutionAlreadyHandled, ErrChallengeNotFound
	}

	res := ResolutionResolved
	err := m.withChat(ctx, c.ChatID, func(s *step) error {
		if handled := m.resolvedOrExpired(s, c); handled {
			res = ResolutionAlreadyHandled
			return nil
		}
		if userID != c.Challenged.UserID {
			return ErrNotChallenged
		}
		c.State = ChallengeStateDeclined
		log.Info().Int64("chat_id", c.ChatID).Str("challenge_id", c.ID).Msg("Challenge declined")
		s.emit(ChallengeDeclined{Header: Header{ChatID: c.ChatID}, Challenge: *c})
		return nil
	})
	return res, err
}

// SweepChallenges expires overdue pending challenges and purges resolved
// ones once their retention is over. It returns the number of challenges expired.
func (m *Manager) SweepChallenges(ctx context.Context) int {
	expired := 0
	for _, c := range m.challenges.all() {
		err := m.withChat(ctx, c.ChatID, func(s *step) error {
			now := m.clock.Now()
			if c.State == ChallengeStatePending && !now.Before(c.ExpiresAt) {
				c.State = ChallengeStateExpired
				expired++
				s.emit(ChallengeExpired{Header: Header{ChatID: c.ChatID}, Challenge: *c})
			}
			// resolved challenges stay one more TTL so late answers get "already handled"
			if c.State != ChallengeStatePending && !now.Before(c.ExpiresAt.Add(m.opts.ChallengeTTL)) {
				m.challenges.remove(c.ID)
			}
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("challenge_id", c.ID).Msg("Challenge sweep skipped")
		}
	}
	if expired > 0 {
		log.Info().Int("expired", expired).Msg("Challenges expired")
	}
	return expired
}

// StartSweeper expires overdue challenges every sweep interval until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context) quartz.Waiter {
	return m.clock.TickerFunc(ctx, m.opts.ChallengeSweep, func() error {
		m.SweepChallenges(ctx)
		return nil
	}, "challenge", "sweep")
}

// resolvedOrExpired reports whether c can no longer be answered, expiring it
// on the spot if its time has passed.
func (m *Manager) resolvedOrExpired(s *step, c *Challenge) bool {
	if c.State != ChallengeStatePending {
		return true
	}
	if !m.clock.Now().Before(c.ExpiresAt) {
		c.State = ChallengeStateExpired
		s.emit(ChallengeExpired{Header: Header{ChatID: c.ChatID}, Challenge: *c})
		return true
	}
	return false
}

// Challenge returns a copy of a stored challenge.
func (m *Manager) Challenge(ctx context.Context, id string) (Challenge, bool) {
	c, ok := m.challenges.get(id)
	if !ok {
		return Challenge{}, false
	}
	var out Challenge
	err := m.withChat(ctx, c.ChatID, func(*step) error {
		out = *c
		return nil
	})
	return out, err == nil
}
