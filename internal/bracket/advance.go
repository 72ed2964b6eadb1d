package bracket

// advance runs after m, a match of round, is completed: first the next round
// is created if round is now fully decided, then the winner is routed into
// it. Both steps are safe to repeat.
func (b *Bracket) advance(round *Round, m *Match) {
	if round == nil || m.Winner == nil {
		return
	}
	if b.Format.createsRounds() {
		b.createNextRound(round)
	}
	if b.Format.routesWinners() {
		b.routeWinner(round.ID, m)
	}
}

func (b *Bracket) createNextRound(current *Round) {
	if !current.Completed() {
		return
	}
	nextID := current.ID + 1
	if b.Round(nextID) != nil {
		return
	}

	count := len(current.Matches) / 2
	if count < 1 {
		// Final decided
		return
	}

	var side BracketSide
	if b.Format == DoubleElimination {
		side = UpperSide
	}
	name := b.Format.nextRoundName(nextID, b.Settings.TeamCount)
	b.Rounds = append(b.Rounds, newRound(nextID, name, count, b.Settings.BestOf, side))

	// Winners decided before the round existed have nowhere to go yet
	for _, m := range current.Matches {
		b.routeWinner(current.ID, m)
	}
}

// Match n feeds match ceil(n/2) of the next round: odd numbers take slot 1,
// even numbers slot 2.
func (b *Bracket) routeWinner(roundID int, m *Match) {
	if m.Winner == nil {
		return
	}
	next := b.Round(roundID + 1)
	if next == nil {
		return
	}
	target := next.matchByNumber((m.Number + 1) / 2)
	if target == nil {
		return
	}

	slot := 2
	if m.Number%2 == 1 {
		slot = 1
	}
	winner := *m.Winner
	target.assign(slot, &winner)
}
