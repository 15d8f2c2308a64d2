package wordchain

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"wordchain-bot/internal/pkg/lock"
)

// Options tunes a Manager.
type Options struct {
	DefaultStake   int64
	MaxCustomStake int64
	JoinWindow     time.Duration
	JoinReminders  []time.Duration // time left in the join window when a reminder is sent
	TurnTimeout    time.Duration
	TurnReminder   time.Duration // time left in the turn when the reminder is sent
	MinWordLength  int
	LockTimeout    time.Duration
	ChallengeTTL   time.Duration
	ChallengeSweep time.Duration
}

// DefaultOptions returns the stock game timings and stakes.
func DefaultOptions() Options {
	return Options{
		DefaultStake:   10,
		MaxCustomStake: 1000,
		JoinWindow:     60 * time.Second,
		JoinReminders:  []time.Duration{30 * time.Second, 15 * time.Second},
		TurnTimeout:    60 * time.Second,
		TurnReminder:   20 * time.Second,
		MinWordLength:  3,
		LockTimeout:    5 * time.Second,
		ChallengeTTL:   5 * time.Minute,
		ChallengeSweep: 30 * time.Second,
	}
}

// Manager runs every word chain game and challenge of the process.
//
// Each operation, including timer callbacks, holds the chat lock for its
// whole read-check-mutate-ledger sequence. Events are collected while the
// lock is held and handed to the Notifier after it is released.
type Manager struct {
	ledger     Ledger
	rules      *Rules
	notifier   Notifier
	clock      quartz.Clock
	sched      *Scheduler
	locks      *lock.KeyLock
	games      *Registry
	challenges *Book
	opts       Options

	shuffle func(n int, swap func(i, j int))
	newID   func() string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a Manager.
func NewManager(ledger Ledger, dict Validator, notifier Notifier, clock quartz.Clock, opts Options) *Manager {
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		ledger:     ledger,
		rules:      NewRules(dict, opts.MinWordLength),
		notifier:   notifier,
		clock:      clock,
		sched:      NewScheduler(clock),
		locks:      lock.NewKeyLock(),
		games:      NewRegistry(),
		challenges: NewBook(),
		opts:       opts,
		shuffle:    rand.Shuffle,
		newID:      uuid.NewString,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Options returns the manager's settings.
func (m *Manager) Options() Options {
	return m.opts
}

// Close stops every pending timer. Callbacks already running finish on a
// cancelled context.
func (m *Manager) Close() {
	m.cancel()
	m.sched.Stop()
}

// step collects the events of one locked operation.
type step struct {
	events []Event
}

func (s *step) emit(ev Event) {
	s.events = append(s.events, ev)
}

func (s *step) emitFirst(ev Event) {
	s.events = slices.Insert(s.events, 0, ev)
}

// withChat runs fn under the chat lock and publishes its events afterwards.
func (m *Manager) withChat(ctx context.Context, chatID int64, fn func(s *step) error) error {
	s := &step{}
	err := m.locks.WithLockContext(ctx, chatID, m.opts.LockTimeout, func() error {
		return fn(s)
	})
	if errors.Is(err, lock.ErrLockTimeout) {
		log.Warn().Int64("chat_id", chatID).Dur("timeout", m.opts.LockTimeout).Msg("Chat lock timeout")
		err = ErrBusy
	}
	for _, ev := range s.events {
		m.notifier.Notify(ctx, ev)
	}
	return err
}

// OpenLobby creates a waiting game with the creator as its only player.
func (m *Manager) OpenLobby(ctx context.Context, chatID int64, creator Participant, stake int64) (*Snapshot, error) {
	if stake <= 0 || stake > m.opts.MaxCustomStake {
		return nil, ErrInvalidStake
	}

	var snap *Snapshot
	err := m.withChat(ctx, chatID, func(s *step) error {
		g, err := m.openLobbyLocked(ctx, s, chatID, creator, stake)
		if err != nil {
			return err
		}
		snap = g.snapshot()
		return nil
	})
	return snap, err
}

func (m *Manager) openLobbyLocked(ctx context.Context, s *step, chatID int64, creator Participant, stake int64) (*Game, error) {
	if _, exists := m.games.Get(chatID); exists {
		return nil, ErrGameExists
	}
	if err := m.requireFunds(ctx, creator, stake); err != nil {
		return nil, err
	}

	g := newGame(m.newID(), chatID, KindLobby, stake, creator, m.clock.Now())
	if err := m.games.Add(g); err != nil {
		return nil, err
	}
	m.armJoinTimers(g)

	log.Info().
		Int64("chat_id", chatID).
		Str("game_id", g.ID).
		Int64("user_id", creator.UserID).
		Int64("stake", stake).
		Msg("Lobby opened")

	s.emit(LobbyOpened{
		Header:     Header{ChatID: chatID, GameID: g.ID},
		Creator:    creator,
		Stake:      stake,
		JoinWindow: m.opts.JoinWindow,
	})
	return g, nil
}

// RequestCustomStake registers a stake prompt for userID. Their next plain
// text message in the chat is read as the stake.
func (m *Manager) RequestCustomStake(ctx context.Context, chatID, userID int64) error {
	return m.withChat(ctx, chatID, func(s *step) error {
		if _, exists := m.games.Get(chatID); exists {
			return ErrGameExists
		}
		if p, ok := m.games.Prompt(chatID); ok && p.UserID != userID {
			return ErrPromptTaken
		}
		m.games.SetPrompt(chatID, StakePrompt{UserID: userID, CreatedAt: m.clock.Now()})
		s.emit(StakePromptOpened{Header: Header{ChatID: chatID}, UserID: userID, Max: m.opts.MaxCustomStake})
		return nil
	})
}

// CancelStakePrompt drops the stake prompt owned by userID.
func (m *Manager) CancelStakePrompt(ctx context.Context, chatID, userID int64) error {
	return m.withChat(ctx, chatID, func(s *step) error {
		p, ok := m.games.Prompt(chatID)
		if !ok || p.UserID != userID {
			return ErrNoStakePrompt
		}
		m.games.ClearPrompt(chatID)
		s.emit(StakePromptClosed{Header: Header{ChatID: chatID}, UserID: userID})
		return nil
	})
}

// HandleText routes a plain text message: the answer to a stake prompt, a
// word from the player whose turn it is, or ordinary chat which is ignored.
func (m *Manager) HandleText(ctx context.Context, chatID int64, user Participant, text string) error {
	return m.withChat(ctx, chatID, func(s *step) error {
		g, ok := m.games.Get(chatID)
		if !ok {
			if p, prompted := m.games.Prompt(chatID); prompted && p.UserID == user.UserID {
				return m.answerStakePrompt(ctx, s, chatID, user, text)
			}
			return nil
		}
		if g.State != StateActive {
			return nil
		}
		cur, err := g.CurrentPlayer()
		if err != nil {
			return m.fail(s, g, err)
		}
		if cur.UserID != user.UserID {
			return nil
		}
		return m.submitLocked(ctx, s, g, cur, text)
	})
}

// answerStakePrompt parses a custom stake. A non-number or an out of range
// value keeps the prompt open; any other outcome clears it.
func (m *Manager) answerStakePrompt(ctx context.Context, s *step, chatID int64, user Participant, text string) error {
	stake, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return ErrStakeNotNumber
	}
	if stake <= 0 || stake > m.opts.MaxCustomStake {
		return ErrInvalidStake
	}
	m.games.ClearPrompt(chatID)
	_, err = m.openLobbyLocked(ctx, s, chatID, user, stake)
	return err
}

// Join seats a user in the waiting game of a chat.
func (m *Manager) Join(ctx context.Context, chatID int64, user Participant) error {
	return m.withChat(ctx, chatID, func(s *step) error {
		g, ok := m.games.Get(chatID)
		if !ok {
			return ErrNoGame
		}
		if g.State != StateWaiting {
			return ErrAlreadyStarted
		}
		if g.Player(user.UserID) != nil {
			return ErrAlreadyJoined
		}
		if err := m.requireFunds(ctx, user, g.Stake); err != nil {
			return err
		}
		if err := g.Join(user); err != nil {
			return err
		}

		log.Info().
			Int64("chat_id", chatID).
			Str("game_id", g.ID).
			Int64("user_id", user.UserID).
			Int("players", len(g.Players)).
			Msg("Player joined")

		s.emit(PlayerJoined{
			Header: Header{ChatID: chatID, GameID: g.ID},
			Player: user,
			Count:  len(g.Players),
			Stake:  g.Stake,
		})
		return nil
	})
}

// Start moves the waiting game to Active on the creator's request.
func (m *Manager) Start(ctx context.Context, chatID, userID int64) error {
	return m.withChat(ctx, chatID, func(s *step) error {
		g, ok := m.games.Get(chatID)
		if !ok {
			return ErrNoGame
		}
		if g.State != StateWaiting {
			return ErrAlreadyStarted
		}
		if g.CreatorID != userID {
			return ErrNotCreator
		}
		return m.startLocked(ctx, s, g)
	})
}

// Cancel removes a waiting game on the creator's request. Nothing has been
// debited yet, so nothing is paid back.
func (m *Manager) Cancel(ctx context.Context, chatID, userID int64) error {
	return m.withChat(ctx, chatID, func(s *step) error {
		g, ok := m.games.Get(chatID)
		if !ok {
			return ErrNoGame
		}
		if g.CreatorID != userID {
			return ErrNotCreator
		}
		if g.State != StateWaiting {
			return ErrGameInProgress
		}
		m.abortLocked(s, g, AbortCancelled, "")
		return nil
	})
}

// SubmitWord plays a word for userID.
func (m *Manager) SubmitWord(ctx context.Context, chatID, userID int64, text string) error {
	return m.withChat(ctx, chatID, func(s *step) error {
		g, ok := m.games.Get(chatID)
		if !ok {
			return ErrNoGame
		}
		if g.State != StateActive {
			return ErrNotStarted
		}
		cur, err := g.CurrentPlayer()
		if err != nil {
			return m.fail(s, g, err)
		}
		if cur.UserID != userID {
			return ErrNotYourTurn
		}
		return m.submitLocked(ctx, s, g, cur, text)
	})
}

// Snapshot returns a copy of the chat's game.
func (m *Manager) Snapshot(chatID int64) (*Snapshot, bool) {
	var snap *Snapshot
	err := m.withChat(m.ctx, chatID, func(*step) error {
		if g, ok := m.games.Get(chatID); ok {
			snap = g.snapshot()
		}
		return nil
	})
	return snap, err == nil && snap != nil
}

// startLocked debits every stake as one batch, shuffles the order and opens
// turn 0. On any debit failure the applied debits are credited back and the
// game stays Waiting.
func (m *Manager) startLocked(ctx context.Context, s *step, g *Game) error {
	if g.State != StateWaiting {
		return ErrAlreadyStarted
	}
	if len(g.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	if err := m.debitStakes(ctx, g); err != nil {
		return err
	}
	if err := g.activate(m.shuffle); err != nil {
		m.refund(ctx, g, g.Players)
		return err
	}
	m.sched.Disarm(g.ChatID)

	log.Info().
		Int64("chat_id", g.ChatID).
		Str("game_id", g.ID).
		Str("kind", string(g.Kind)).
		Int("players", len(g.Players)).
		Int64("pot", g.Pot()).
		Msg("Game started")

	s.emit(GameStarted{
		Header: Header{ChatID: g.ChatID, GameID: g.ID},
		Kind:   g.Kind,
		Order:  participants(g.Players),
		Stake:  g.Stake,
		Pot:    g.Pot(),
	})
	return m.openTurn(s, g)
}

// debitStakes reads every balance fresh, then debits all stakes only if
// every balance covers its stake.
func (m *Manager) debitStakes(ctx context.Context, g *Game) error {
	balances := make([]int64, len(g.Players))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, p := range g.Players {
		eg.Go(func() error {
			b, err := m.ledger.GetBalance(egCtx, p.UserID)
			if err != nil {
				return fmt.Errorf("failed to read balance of %d: %w", p.UserID, err)
			}
			balances[i] = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	for i, p := range g.Players {
		if balances[i] < p.Stake {
			return &InsufficientFundsError{Player: p.Participant, Need: p.Stake, Balance: balances[i]}
		}
	}

	debited := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		ok, err := m.ledger.Debit(ctx, p.UserID, p.Stake, g.ID)
		if err == nil && ok {
			debited = append(debited, p)
			continue
		}

		log.Warn().
			Err(err).
			Int64("chat_id", g.ChatID).
			Str("game_id", g.ID).
			Int64("user_id", p.UserID).
			Int("rolled_back", len(debited)).
			Msg("Stake debit failed after balance check, rolling back batch")
		m.refund(ctx, g, debited)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLedgerConflict, err)
		}
		return fmt.Errorf("%w: %s", ErrLedgerConflict, p.DisplayName)
	}
	return nil
}

func (m *Manager) refund(ctx context.Context, g *Game, players []*Player) {
	for _, p := range players {
		if err := m.ledger.Credit(ctx, p.UserID, p.Stake, CreditRefund, g.ID); err != nil {
			log.Error().
				Err(err).
				Str("game_id", g.ID).
				Int64("user_id", p.UserID).
				Int64("amount", p.Stake).
				Msg("Failed to refund stake")
		}
	}
}

func (m *Manager) requireFunds(ctx context.Context, p Participant, amount int64) error {
	balance, err := m.ledger.GetBalance(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to read balance of %d: %w", p.UserID, err)
	}
	if balance < amount {
		return &InsufficientFundsError{Player: p, Need: amount, Balance: balance}
	}
	return nil
}

// turnTicket is what a turn timer captures. The timer acts only if the same
// game is live, Active, on the same generation and still waiting on the same player.
type turnTicket struct {
	game       *Game
	userID     int64
	generation uint64
}

// openTurn arms the reminder and timeout of the current turn and announces it.
func (m *Manager) openTurn(s *step, g *Game) error {
	cur, err := g.CurrentPlayer()
	if err != nil {
		return m.fail(s, g, err)
	}
	next := g.NextAlive()
	if next == nil {
		next = cur
	}

	m.sched.Disarm(g.ChatID)
	t := turnTicket{game: g, userID: cur.UserID, generation: g.Generation}
	if m.opts.TurnReminder > 0 {
		m.sched.Arm(g.ChatID, m.opts.TurnTimeout-m.opts.TurnReminder, func() { m.onTurnReminder(t) }, "turn", "reminder")
	}
	m.sched.Arm(g.ChatID, m.opts.TurnTimeout, func() { m.onTurnTimeout(t) }, "turn", "timeout")

	var lastWord string
	if n := len(g.Words); n > 0 {
		lastWord = g.Words[n-1]
	}
	s.emit(TurnOpened{
		Header:     Header{ChatID: g.ChatID, GameID: g.ID},
		Player:     cur.Participant,
		Next:       next.Participant,
		Letter:     g.LastLetter,
		LastWord:   lastWord,
		Words:      len(g.Words),
		Alive:      g.AliveCount(),
		Timeout:    m.opts.TurnTimeout,
		Generation: g.Generation,
	})
	return nil
}

func (m *Manager) submitLocked(ctx context.Context, s *step, g *Game, p *Player, text string) error {
	word := NormalizeWord(text)
	if v, broken := m.rules.Check(g, word); broken {
		return m.eliminateLocked(ctx, s, g, p, v)
	}

	g.accept(word)
	log.Debug().
		Int64("chat_id", g.ChatID).
		Str("game_id", g.ID).
		Int64("user_id", p.UserID).
		Str("word", word).
		Msg("Word accepted")
	s.emit(WordAccepted{Header: Header{ChatID: g.ChatID, GameID: g.ID}, Player: p.Participant, Word: word})
	return m.advanceLocked(ctx, s, g)
}

func (m *Manager) eliminateLocked(ctx context.Context, s *step, g *Game, p *Player, v Violation) error {
	if !g.eliminate(p) {
		return nil
	}

	log.Info().
		Int64("chat_id", g.ChatID).
		Str("game_id", g.ID).
		Int64("user_id", p.UserID).
		Str("rule", v.Rule).
		Msg("Player eliminated")
	s.emit(PlayerEliminated{
		Header: Header{ChatID: g.ChatID, GameID: g.ID},
		Player: p.Participant,
		Rule:   v.Rule,
		Reason: v.Reason,
		Alive:  g.AliveCount(),
	})
	return m.advanceLocked(ctx, s, g)
}

func (m *Manager) advanceLocked(ctx context.Context, s *step, g *Game) error {
	if !g.advance() {
		return m.finishLocked(ctx, s, g)
	}
	return m.openTurn(s, g)
}

// finishLocked settles the pot, records every player's result and removes the game.
func (m *Manager) finishLocked(ctx context.Context, s *step, g *Game) error {
	g.State = StateFinished
	m.sched.Disarm(g.ChatID)
	m.games.Remove(g)

	st := Settle(g)
	var uncredited []Participant
	if !st.Forfeited && st.ShareEach > 0 {
		for _, w := range st.Winners {
			if err := m.ledger.Credit(ctx, w.UserID, st.ShareEach, CreditPrize, g.ID); err != nil {
				log.Error().
					Err(err).
					Int64("chat_id", g.ChatID).
					Str("game_id", g.ID).
					Int64("user_id", w.UserID).
					Int64("uncredited", st.ShareEach).
					Msg("Failed to credit pot share")
				uncredited = append(uncredited, w.Participant)
			}
		}
	}
	for _, w := range st.Winners {
		m.recordResult(ctx, g, w.UserID, true, st.ShareEach)
	}
	for _, l := range st.Losers {
		m.recordResult(ctx, g, l.UserID, false, l.Stake)
	}

	log.Info().
		Int64("chat_id", g.ChatID).
		Str("game_id", g.ID).
		Int("winners", len(st.Winners)).
		Int64("pot", st.Pot).
		Int64("share_each", st.ShareEach).
		Int64("rounding_loss", st.RoundingLoss).
		Bool("forfeited", st.Forfeited).
		Msg("Game finished")

	s.emit(GameFinished{
		Header:       Header{ChatID: g.ChatID, GameID: g.ID},
		Summary:      m.summary(g),
		Winners:      participants(st.Winners),
		Losers:       participants(st.Losers),
		Pot:          st.Pot,
		ShareEach:    st.ShareEach,
		RoundingLoss: st.RoundingLoss,
		Forfeited:    st.Forfeited,
		Uncredited:   uncredited,
	})
	for _, p := range uncredited {
		s.emit(ErrorNotice{
			Header: Header{ChatID: g.ChatID, GameID: g.ID},
			Reason: fmt.Sprintf("Could not pay %d coins to %s. An admin will restore it.", st.ShareEach, p.DisplayName),
		})
	}
	return nil
}

func (m *Manager) recordResult(ctx context.Context, g *Game, userID int64, won bool, amount int64) {
	if err := m.ledger.RecordGameResult(ctx, userID, won, amount); err != nil {
		log.Error().
			Err(err).
			Str("game_id", g.ID).
			Int64("user_id", userID).
			Msg("Failed to record game result")
	}
}

// abortLocked removes a game that never settled.
func (m *Manager) abortLocked(s *step, g *Game, reason AbortReason, detail string) {
	g.State = StateFinished
	m.sched.Disarm(g.ChatID)
	m.games.Remove(g)

	log.Info().
		Int64("chat_id", g.ChatID).
		Str("game_id", g.ID).
		Str("reason", string(reason)).
		Msg("Game aborted")

	s.emit(GameAborted{
		Header:  Header{ChatID: g.ChatID, GameID: g.ID},
		Summary: m.summary(g),
		Reason:  reason,
		Detail:  detail,
	})
}

// fail force-finishes a game whose invariants broke. No payout happens.
func (m *Manager) fail(s *step, g *Game, cause error) error {
	log.Error().
		Err(cause).
		Int64("chat_id", g.ChatID).
		Str("game_id", g.ID).
		Str("state", g.State.String()).
		Msg("Game state corrupt, force-finishing without payout")

	m.abortLocked(s, g, AbortCorrupt, cause.Error())
	s.emit(ErrorNotice{
		Header: Header{ChatID: g.ChatID, GameID: g.ID},
		Reason: "Something went wrong and the game was stopped.",
	})
	if errors.Is(cause, ErrCorruptState) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrCorruptState, cause)
}

func (m *Manager) summary(g *Game) Summary {
	return Summary{
		Kind:      g.Kind,
		Stake:     g.Stake,
		CreatorID: g.CreatorID,
		Players:   participants(g.Players),
		Words:     slices.Clone(g.Words),
		CreatedAt: g.CreatedAt,
		EndedAt:   m.clock.Now(),
	}
}

func (m *Manager) armJoinTimers(g *Game) {
	for _, left := range m.opts.JoinReminders {
		m.sched.Arm(g.ChatID, m.opts.JoinWindow-left, func() { m.onJoinReminder(g, left) }, "join", "reminder")
	}
	m.sched.Arm(g.ChatID, m.opts.JoinWindow, func() { m.onJoinDeadline(g) }, "join", "deadline")
}

func (m *Manager) liveTurn(t turnTicket) bool {
	g := t.game
	if !m.games.IsLive(g) || g.State != StateActive || g.Generation != t.generation {
		return false
	}
	cur, err := g.CurrentPlayer()
	return err == nil && cur.UserID == t.userID
}

func (m *Manager) onTurnReminder(t turnTicket) {
	err := m.withChat(m.ctx, t.game.ChatID, func(s *step) error {
		if !m.liveTurn(t) {
			m.logStale(t, "reminder")
			return nil
		}
		p := t.game.Player(t.userID)
		s.emit(TurnReminder{
			Header: Header{ChatID: t.game.ChatID, GameID: t.game.ID},
			Player: p.Participant,
			Letter: t.game.LastLetter,
			Left:   m.opts.TurnReminder,
		})
		return nil
	})
	m.logTimerErr(err, t.game, "turn reminder")
}

func (m *Manager) onTurnTimeout(t turnTicket) {
	err := m.withChat(m.ctx, t.game.ChatID, func(s *step) error {
		if !m.liveTurn(t) {
			m.logStale(t, "timeout")
			return nil
		}
		p := t.game.Player(t.userID)
		return m.eliminateLocked(m.ctx, s, t.game, p, Violation{Rule: RuleTimeout, Reason: "time expired"})
	})
	m.logTimerErr(err, t.game, "turn timeout")
}

func (m *Manager) onJoinReminder(g *Game, left time.Duration) {
	err := m.withChat(m.ctx, g.ChatID, func(s *step) error {
		if !m.games.IsLive(g) || g.State != StateWaiting {
			log.Debug().Str("game_id", g.ID).Msg("Stale join reminder ignored")
			return nil
		}
		s.emit(JoinReminder{
			Header: Header{ChatID: g.ChatID, GameID: g.ID},
			Left:   left,
			Count:  len(g.Players),
		})
		return nil
	})
	m.logTimerErr(err, g, "join reminder")
}

// onJoinDeadline starts the game automatically, or aborts it when it has no
// quorum or the stakes cannot be collected.
func (m *Manager) onJoinDeadline(g *Game) {
	err := m.withChat(m.ctx, g.ChatID, func(s *step) error {
		if !m.games.IsLive(g) || g.State != StateWaiting {
			log.Debug().Str("game_id", g.ID).Msg("Stale join deadline ignored")
			return nil
		}
		if len(g.Players) < 2 {
			m.abortLocked(s, g, AbortNoQuorum, "")
			return nil
		}

		err := m.startLocked(m.ctx, s, g)
		if err == nil || errors.Is(err, ErrCorruptState) {
			return err
		}
		m.abortLocked(s, g, AbortStartFailed, err.Error())
		return nil
	})
	m.logTimerErr(err, g, "join deadline")
}

func (m *Manager) logStale(t turnTicket, kind string) {
	log.Debug().
		Int64("chat_id", t.game.ChatID).
		Str("game_id", t.game.ID).
		Int64("user_id", t.userID).
		Uint64("generation", t.generation).
		Str("timer", kind).
		Msg("Stale turn timer ignored")
}

func (m *Manager) logTimerErr(err error, g *Game, timer string) {
	if err == nil || errors.Is(err, ErrCorruptState) || errors.Is(err, context.Canceled) {
		return
	}
	log.Error().
		Err(err).
		Int64("chat_id", g.ChatID).
		Str("game_id", g.ID).
		Str("timer", timer).
		Msg("Timer callback failed")
}
