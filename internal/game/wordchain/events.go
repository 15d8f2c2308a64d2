package wordchain

import (
	"context"
	"time"
)

// Event is an outcome published by the Manager after the chat lock is released.
type Event interface {
	EventChat() int64
}

// Header is embedded in every event.
type Header struct {
	ChatID int64
	GameID string
}

func (h Header) EventChat() int64 { return h.ChatID }

// Summary describes a game that has ended.
type Summary struct {
	Kind      Kind
	Stake     int64
	CreatorID int64
	Players   []Participant
	Words     []string
	CreatedAt time.Time
	EndedAt   time.Time
}

// AbortReason tells why a game ended without settlement.
type AbortReason string

const (
	AbortCancelled   AbortReason = "cancelled"
	AbortNoQuorum    AbortReason = "no_quorum"
	AbortStartFailed AbortReason = "start_failed"
	AbortCorrupt     AbortReason = "corrupt"
)

type (
	LobbyOpened struct {
		Header
		Creator    Participant
		Stake      int64
		JoinWindow time.Duration
	}

	StakePromptOpened struct {
		Header
		UserID int64
		Max    int64
	}

	StakePromptClosed struct {
		Header
		UserID int64
	}

	PlayerJoined struct {
		Header
		Player Participant
		Count  int
		Stake  int64
	}

	JoinReminder struct {
		Header
		Left  time.Duration
		Count int
	}

	GameStarted struct {
		Header
		Kind  Kind
		Order []Participant
		Stake int64
		Pot   int64
	}

	TurnOpened struct {
		Header
		Player     Participant
		Next       Participant
		Letter     string
		LastWord   string
		Words      int
		Alive      int
		Timeout    time.Duration
		Generation uint64
	}

	TurnReminder struct {
		Header
		Player Participant
		Letter string
		Left   time.Duration
	}

	WordAccepted struct {
		Header
		Player Participant
		Word   string
	}

	PlayerEliminated struct {
		Header
		Player Participant
		Rule   string
		Reason string
		Alive  int
	}

	GameFinished struct {
		Header
		Summary
		Winners      []Participant
		Losers       []Participant
		Pot          int64
		ShareEach    int64
		RoundingLoss int64
		Forfeited    bool
		// Uncredited lists winners whose share the ledger refused. Each is
		// owed ShareEach.
		Uncredited []Participant
	}

	GameAborted struct {
		Header
		Summary
		Reason AbortReason
		Detail string
	}

	ChallengeIssued struct {
		Header
		Challenge Challenge
	}

	ChallengeAccepted struct {
		Header
		Challenge Challenge
	}

	ChallengeDeclined struct {
		Header
		Challenge Challenge
	}

	ChallengeExpired struct {
		Header
		Challenge  Challenge
		Superseded bool
	}

	ErrorNotice struct {
		Header
		Reason string
	}
)

// Notifier receives outcome events. Notify is never called with a chat lock
// held, so implementations may block on I/O.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event)

func (f NotifierFunc) Notify(ctx context.Context, ev Event) { f(ctx, ev) }

// Notifiers fans an event out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, ev Event) {
	for _, n := range ns {
		n.Notify(ctx, ev)
	}
}
