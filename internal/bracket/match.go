package bracket

import (
	"fmt"

	"github.com/AdamBeresnev/bracket-engine/internal/team"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
)

type BracketSide string

const (
	UpperSide      BracketSide = "upper"
	LowerSide      BracketSide = "lower"
	GrandFinalSide BracketSide = "grand_final"
)

type Match struct {
	ID     string `json:"id"`
	Number int    `json:"match_number"`

	Team1 *team.Team `json:"team1"`
	Team2 *team.Team `json:"team2"`

	Score1 int         `json:"score1"`
	Score2 int         `json:"score2"`
	BestOf int         `json:"best_of"`
	Status MatchStatus `json:"status"`
	Winner *team.Team  `json:"winner"`

	// Only set by group and double elimination formats
	GroupID int         `json:"group_id,omitempty"`
	Side    BracketSide `json:"bracket_side,omitempty"`
	Label   string      `json:"label,omitempty"`

	// Zero-based roster positions the generator paired, for robin style formats
	Seeds *[2]int `json:"seeds,omitempty"`
}

func roundMatchID(round, number int) string {
	return fmt.Sprintf("R%dM%d", round, number)
}

func groupMatchID(group, number int) string {
	return fmt.Sprintf("G%dM%d", group, number)
}

func newMatch(id string, number, bestOf int) *Match {
	return &Match{
		ID:     id,
		Number: number,
		BestOf: bestOf,
		Status: MatchPending,
	}
}

// WinThreshold is the number of game wins needed to take a best-of-N match.
func WinThreshold(bestOf int) int {
	return (bestOf + 1) / 2
}

func validBestOf(bestOf int) bool {
	return bestOf > 0 && bestOf%2 == 1
}

func (m *Match) Filled() bool {
	return m.Team1 != nil && m.Team2 != nil
}

func (m *Match) Slot(slot int) *team.Team {
	switch slot {
	case 1:
		return m.Team1
	case 2:
		return m.Team2
	}
	return nil
}

// assign puts t into slot and moves the match between pending and live.
// A completed match is settled again against its new slots.
func (m *Match) assign(slot int, t *team.Team) bool {
	switch slot {
	case 1:
		m.Team1 = t
	case 2:
		m.Team2 = t
	default:
		return false
	}

	switch {
	case m.Status == MatchCompleted:
		m.score(m.Score1, m.Score2)
	case m.Status == MatchPending && m.Filled():
		m.Status = MatchLive
	case m.Status == MatchLive && !m.Filled():
		m.Status = MatchPending
	}
	return true
}

// score records both scores and settles status and winner. It reports
// whether the match is completed afterwards.
func (m *Match) score(score1, score2 int) bool {
	m.Score1 = score1
	m.Score2 = score2

	threshold := WinThreshold(m.BestOf)
	switch {
	case m.Filled() && score1 >= threshold:
		m.Winner = m.Team1
		m.Status = MatchCompleted
	case m.Filled() && score2 >= threshold:
		m.Winner = m.Team2
		m.Status = MatchCompleted
	default:
		m.Winner = nil
		if m.Filled() {
			m.Status = MatchLive
		} else {
			m.Status = MatchPending
		}
	}
	return m.Status == MatchCompleted
}

// setBestOf changes the match length. Scores that would already decide the
// new length are discarded.
func (m *Match) setBestOf(bestOf int) {
	m.BestOf = bestOf
	threshold := WinThreshold(bestOf)
	if m.Score1 >= threshold || m.Score2 >= threshold {
		m.score(0, 0)
		return
	}
	m.score(m.Score1, m.Score2)
}

func sameTeam(a, b *team.Team) bool {
	return a != nil && b != nil && a.ID == b.ID
}

func (m *Match) IsWinner(slot int) bool {
	return m.Status == MatchCompleted && sameTeam(m.Winner, m.Slot(slot))
}

func (m *Match) IsLoser(slot int) bool {
	return m.Status == MatchCompleted && m.Winner != nil && m.Slot(slot) != nil && !sameTeam(m.Winner, m.Slot(slot))
}

// Loser returns the beaten team of a completed match.
func (m *Match) Loser() *team.Team {
	switch {
	case m.IsLoser(1):
		return m.Team1
	case m.IsLoser(2):
		return m.Team2
	}
	return nil
}
