package wordchain

import (
	"errors"
	"fmt"
)

// User-facing errors. Handlers match them with errors.Is and reply to the
// requester; none of them changes game state.
var (
	ErrGameExists          = errors.New("a game is already running in this chat")
	ErrNoGame              = errors.New("no game in this chat")
	ErrNotStarted          = errors.New("game has not started yet")
	ErrAlreadyStarted      = errors.New("game already started")
	ErrAlreadyJoined       = errors.New("already joined")
	ErrNotCreator          = errors.New("only the game creator can do that")
	ErrNotEnoughPlayers    = errors.New("at least 2 players are required")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrGameInProgress      = errors.New("game is in progress")
	ErrSelfChallenge       = errors.New("cannot challenge yourself")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrNotChallenged       = errors.New("only the challenged player can answer")
	ErrInvalidStake        = errors.New("invalid stake")
	ErrStakeNotNumber      = errors.New("stake must be a number")
	ErrPromptTaken         = errors.New("another player is choosing a stake")
	ErrNoStakePrompt       = errors.New("no stake prompt to cancel")
	ErrBusy                = errors.New("chat is busy, try again")
)

// ErrLedgerConflict means a debit failed after the balance pre-check passed,
// usually because of a concurrent spend. Debits already applied in the same
// batch have been returned and the game keeps its previous state. Retryable.
var ErrLedgerConflict = errors.New("balance changed while starting the game, try again")

// ErrCorruptState reports a broken game invariant. The game is force-finished
// without payout.
var ErrCorruptState = errors.New("game state is corrupt")

// InsufficientFundsError names the player whose balance does not cover the stake.
type InsufficientFundsError struct {
	Player  Participant
	Need    int64
	Balance int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s has %d coins, needs %d", e.Player.DisplayName, e.Balance, e.Need)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientBalance
}

// Resolution is the outcome of answering a challenge.
type Resolution int

const (
	// ResolutionResolved means the answer changed the challenge state.
	ResolutionResolved Resolution = iota
	// ResolutionAlreadyHandled means the challenge was no longer pending.
	ResolutionAlreadyHandled
)

func (r Resolution) String() string {
	if r == ResolutionAlreadyHandled {
		return "already_handled"
	}
	return "resolved"
}
