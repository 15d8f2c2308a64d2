package wordchain

import "context"

// CreditKind tells the ledger why coins are returned to a user.
type CreditKind int

const (
	// CreditPrize is a pot share paid to a survivor.
	CreditPrize CreditKind = iota
	// CreditRefund undoes a stake debit of a batch that could not complete.
	CreditRefund
)

// Ledger is the engine's view of user balances. The engine calls it only
// while holding the chat lock, and only after it has decided a mutation is
// valid. Implementations must bound the latency of every call.
type Ledger interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	// Debit withdraws a stake. It reports false without error when the
	// balance no longer covers the amount.
	Debit(ctx context.Context, userID, amount int64, gameID string) (bool, error)
	Credit(ctx context.Context, userID, amount int64, kind CreditKind, gameID string) error
	RecordGameResult(ctx context.Context, userID int64, won bool, amount int64) error
}
