package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"wordchain-bot/internal/model"
	"wordchain-bot/internal/repository"
)

// memUsers mirrors the SQL semantics of repository.UserRepository in memory.
type memUsers struct {
	mu      sync.Mutex
	users   map[int64]*model.User
	initial int64
}

func newMemUsers(initial int64) *memUsers {
	return &memUsers{users: make(map[int64]*model.User), initial: initial}
}

func (m *memUsers) add(id int64, name string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = &model.User{TelegramID: id, Username: name, Balance: balance}
}

func (m *memUsers) balance(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Balance
}

func (m *memUsers) total() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, u := range m.users {
		sum += u.Balance
	}
	return sum
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := strings.TrimPrefix(strings.TrimSpace(username), "@")
	for _, u := range m.users {
		if strings.EqualFold(u.Username, name) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetOrCreate(_ context.Context, id int64, username string) (*model.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, false, nil
	}
	u := &model.User{TelegramID: id, Username: username, Balance: m.initial, CreatedAt: time.Now()}
	m.users[id] = u
	cp := *u
	return &cp, true, nil
}

func (m *memUsers) UpdateUsername(_ context.Context, id int64, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Username = username
	return nil
}

func (m *memUsers) UpdateBalance(_ context.Context, id int64, amount int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if u.Balance+amount < 0 {
		return nil, repository.ErrInsufficientBalance
	}
	u.Balance += amount
	cp := *u
	return &cp, nil
}

func (m *memUsers) Debit(_ context.Context, id int64, amount int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, repository.ErrUserNotFound
	}
	if u.Balance < amount {
		return false, nil
	}
	u.Balance -= amount
	return true, nil
}

func (m *memUsers) Transfer(_ context.Context, fromID, toID int64, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	from, ok := m.users[fromID]
	if !ok {
		return repository.ErrUserNotFound
	}
	to, ok := m.users[toID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if from.Balance < amount {
		return repository.ErrInsufficientBalance
	}
	from.Balance -= amount
	to.Balance += amount
	return nil
}

func (m *memUsers) RecordGameResult(_ context.Context, id int64, won bool, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.GamesPlayed++
	if won {
		u.GamesWon++
		u.TotalCoinsWon += amount
	} else {
		u.TotalCoinsLost += amount
	}
	return nil
}

func (m *memUsers) GetTopUsers(_ context.Context, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Balance != users[j].Balance {
			return users[i].Balance > users[j].Balance
		}
		return users[i].GamesWon > users[j].GamesWon
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// memTxs records transactions and aggregates game types like the SQL queries do.
type memTxs struct {
	mu  sync.Mutex
	txs []model.Transaction
}

func (m *memTxs) Create(_ context.Context, userID int64, amount int64, txType string, description *string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := model.Transaction{ID: int64(len(m.txs) + 1), UserID: userID, Amount: amount, Type: txType, Description: description, CreatedAt: time.Now()}
	m.txs = append(m.txs, tx)
	return &tx, nil
}

func (m *memTxs) ofType(txType string) []model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Transaction
	for _, tx := range m.txs {
		if tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}

func (m *memTxs) GetDailyStats(context.Context, time.Time) ([]*model.DailyRank, error) {
	return nil, nil
}

func (m *memTxs) GetDailyWinners(context.Context, time.Time, int) ([]*model.DailyRank, error) {
	return nil, nil
}

func (m *memTxs) GetDailyLosers(context.Context, time.Time, int) ([]*model.DailyRank, error) {
	return nil, nil
}

func (m *memTxs) GetUserDailyProfit(context.Context, int64, time.Time) (int64, error) {
	return 0, nil
}

// dateTxs answers the daily queries by recording the date it was asked for.
type dateTxs struct {
	memTxs
	asked []time.Time
}

func (d *dateTxs) GetDailyWinners(_ context.Context, date time.Time, _ int) ([]*model.DailyRank, error) {
	d.asked = append(d.asked, date)
	return []*model.DailyRank{{UserID: 1, Username: "alice", NetProfit: 20}}, nil
}

func (d *dateTxs) GetUserDailyProfit(_ context.Context, _ int64, date time.Time) (int64, error) {
	d.asked = append(d.asked, date)
	return -10, nil
}

type memGames struct {
	mu   sync.Mutex
	recs map[string]*model.GameRecord
	err  error
}

func newMemGames() *memGames {
	return &memGames{recs: make(map[string]*model.GameRecord)}
}

func (m *memGames) Save(_ context.Context, rec *model.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *rec
	m.recs[rec.GameID] = &cp
	return nil
}

func (m *memGames) ListByChat(_ context.Context, chatID int64, limit int) ([]*model.GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.GameRecord
	for _, r := range m.recs {
		if r.ChatID == chatID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memGames) get(id string) (*model.GameRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	return r, ok
}
