package bracket

import (
	"fmt"
	"math/bits"

	"github.com/AdamBeresnev/bracket-engine/internal/team"
)

type Round struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Matches []*Match `json:"matches"`
}

func newRound(id int, name string, matchCount, bestOf int, side BracketSide) *Round {
	r := &Round{ID: id, Name: name, Matches: make([]*Match, 0, matchCount)}
	for n := 1; n <= matchCount; n++ {
		m := newMatch(roundMatchID(id, n), n, bestOf)
		m.Side = side
		r.Matches = append(r.Matches, m)
	}
	return r
}

func (r *Round) Match(id string) *Match {
	for _, m := range r.Matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *Round) matchByNumber(number int) *Match {
	for _, m := range r.Matches {
		if m.Number == number {
			return m
		}
	}
	return nil
}

// Completed reports whether every match of the round has a winner. An empty
// round is never completed.
func (r *Round) Completed() bool {
	if len(r.Matches) == 0 {
		return false
	}
	for _, m := range r.Matches {
		if m.Status != MatchCompleted {
			return false
		}
	}
	return true
}

type Group struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Size    int          `json:"size"`
	Teams   []*team.Team `json:"teams"`
	Matches []*Match     `json:"matches"`
}

func newGroup(id, size int) *Group {
	return &Group{
		ID:    id,
		Name:  GroupName(id),
		Size:  size,
		Teams: make([]*team.Team, size),
	}
}

func (g *Group) addMatch(bestOf int, label string) *Match {
	m := newMatch(groupMatchID(g.ID, len(g.Matches)+1), len(g.Matches)+1, bestOf)
	m.GroupID = g.ID
	m.Label = label
	g.Matches = append(g.Matches, m)
	return m
}

func (g *Group) Match(id string) *Match {
	for _, m := range g.Matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// GroupName maps 1 -> "Group A", 2 -> "Group B" and so on, falling back to
// the number past Z.
func GroupName(id int) string {
	if id >= 1 && id <= 26 {
		return fmt.Sprintf("Group %c", 'A'+rune(id-1))
	}
	return fmt.Sprintf("Group %d", id)
}

// RoundName names an elimination round by its distance from the final.
func RoundName(round, totalRounds int) string {
	switch totalRounds - round + 1 {
	case 1:
		return "Grand Final"
	case 2:
		return "Semi Finals"
	case 3:
		return "Quarter Finals"
	case 4:
		return "Round of 16"
	case 5:
		return "Round of 32"
	}
	return fmt.Sprintf("Round %d", round)
}

// eliminationRounds is ceil(log2(teamCount)), the number of rounds a knockout
// bracket of teamCount needs.
func eliminationRounds(teamCount int) int {
	if teamCount <= 1 {
		return 0
	}
	return bits.Len(uint(teamCount - 1))
}
