package wordchain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/coder/quartz"

	"wordchain-bot/internal/dictionary"
)

// memLedger is an in-memory Ledger with hooks for injecting failures.
type memLedger struct {
	mu       sync.Mutex
	balances map[int64]int64
	debits   int
	credits  []credit
	results  map[int64][]result

	// rejectDebit makes Debit report false for a user, as if a concurrent
	// spend emptied the balance after the pre-check.
	rejectDebit map[int64]bool
	// failCredit makes Credit return an error for a user.
	failCredit map[int64]bool
}

type credit struct {
	UserID int64
	Amount int64
	Kind   CreditKind
}

type result struct {
	Won    bool
	Amount int64
}

func newMemLedger(balances map[int64]int64) *memLedger {
	b := make(map[int64]int64, len(balances))
	for k, v := range balances {
		b[k] = v
	}
	return &memLedger{
		balances:    b,
		results:     make(map[int64][]result),
		rejectDebit: make(map[int64]bool),
		failCredit:  make(map[int64]bool),
	}
}

func (l *memLedger) GetBalance(_ context.Context, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID], nil
}

func (l *memLedger) Debit(_ context.Context, userID, amount int64, _ string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rejectDebit[userID] || l.balances[userID] < amount {
		return false, nil
	}
	l.balances[userID] -= amount
	l.debits++
	return true, nil
}

func (l *memLedger) Credit(_ context.Context, userID, amount int64, kind CreditKind, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failCredit[userID] {
		return errLedgerDown
	}
	l.balances[userID] += amount
	l.credits = append(l.credits, credit{UserID: userID, Amount: amount, Kind: kind})
	return nil
}

func (l *memLedger) RecordGameResult(_ context.Context, userID int64, won bool, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results[userID] = append(l.results[userID], result{Won: won, Amount: amount})
	return nil
}

func (l *memLedger) balance(userID int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

func (l *memLedger) setBalance(userID, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] = amount
}

func (l *memLedger) debitCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debits
}

func (l *memLedger) creditsOf(kind CreditKind) []credit {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []credit
	for _, c := range l.credits {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

var errLedgerDown = errors.New("ledger unavailable")

// recorder keeps every published event.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func eventsOf[T Event](r *recorder) []T {
	var out []T
	for _, ev := range r.all() {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

var testWords = []string{
	"apple", "eagle", "elephant", "tiger", "rabbit", "tree", "egg", "game",
	"echo", "orange", "engine", "night", "table", "energy", "yellow",
}

const testChat int64 = -1001

var (
	alice = Participant{UserID: 1, DisplayName: "alice"}
	bob   = Participant{UserID: 2, DisplayName: "bob"}
	carol = Participant{UserID: 3, DisplayName: "carol"}
	dave  = Participant{UserID: 4, DisplayName: "dave"}
)

type harness struct {
	m      *Manager
	ledger *memLedger
	rec    *recorder
	clock  *quartz.Mock
}

func newHarness(t *testing.T, balances map[int64]int64) *harness {
	t.Helper()
	return newHarnessWith(t, balances, dictionary.New(testWords))
}

func newHarnessWith(t *testing.T, balances map[int64]int64, dict Validator) *harness {
	t.Helper()
	clock := quartz.NewMock(t)
	ledger := newMemLedger(balances)
	rec := &recorder{}
	m := NewManager(ledger, dict, rec, clock, DefaultOptions())
	// keep join order as turn order
	m.shuffle = func(int, func(i, j int)) {}
	t.Cleanup(m.Close)
	return &harness{m: m, ledger: ledger, rec: rec, clock: clock}
}

func defaultBalances() map[int64]int64 {
	return map[int64]int64{alice.UserID: 100, bob.UserID: 100, carol.UserID: 100, dave.UserID: 100}
}

// acceptAll is a Validator that accepts any word.
type acceptAll struct{}

func (acceptAll) IsValid(string) bool { return true }
