package wordchain

// Settlement is the payout of a finished game.
//
// For any game with at least one survivor:
// Pot == ShareEach*len(Winners) + RoundingLoss and RoundingLoss < len(Winners).
// With no survivors the pot is forfeited and nobody is paid.
type Settlement struct {
	Pot          int64
	Winners      []*Player
	Losers       []*Player
	ShareEach    int64
	RoundingLoss int64
	Forfeited    bool
}

// Settle splits the pot of a game between its surviving players.
func Settle(g *Game) Settlement {
	s := Settlement{Pot: g.Pot()}
	for _, p := range g.Players {
		if p.Alive {
			s.Winners = append(s.Winners, p)
		} else {
			s.Losers = append(s.Losers, p)
		}
	}

	n := int64(len(s.Winners))
	if n == 0 {
		s.Forfeited = true
		return s
	}
	s.ShareEach = s.Pot / n
	s.RoundingLoss = s.Pot % n
	return s
}

// Paid is the total credited to survivors.
func (s Settlement) Paid() int64 {
	return s.ShareEach * int64(len(s.Winners))
}
