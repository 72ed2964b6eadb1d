package bracket

import (
	"sort"
)

// LayoutRound is the slice of one round that belongs to a single side.
type LayoutRound struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Matches []*Match `json:"matches"`
}

// Layout splits a bracket into the columns a renderer draws. Rounds without
// a side (every format except double elimination) land in Main.
type Layout struct {
	Main   []LayoutRound `json:"main,omitempty"`
	Upper  []LayoutRound `json:"upper,omitempty"`
	Lower  []LayoutRound `json:"lower,omitempty"`
	Final  []LayoutRound `json:"grand_final,omitempty"`
	Groups []*Group      `json:"groups,omitempty"`
}

func (b *Bracket) Layout() Layout {
	sides := map[BracketSide]map[int][]*Match{}
	names := map[int]string{}

	for _, r := range b.Rounds {
		names[r.ID] = r.Name
		for _, m := range r.Matches {
			if sides[m.Side] == nil {
				sides[m.Side] = map[int][]*Match{}
			}
			sides[m.Side][r.ID] = append(sides[m.Side][r.ID], m)
		}
	}

	return Layout{
		Main:   layoutRounds(sides[""], names),
		Upper:  layoutRounds(sides[UpperSide], names),
		Lower:  layoutRounds(sides[LowerSide], names),
		Final:  layoutRounds(sides[GrandFinalSide], names),
		Groups: b.Groups,
	}
}

func layoutRounds(rounds map[int][]*Match, names map[int]string) []LayoutRound {
	if len(rounds) == 0 {
		return nil
	}

	roundNums := make([]int, 0, len(rounds))
	for id := range rounds {
		roundNums = append(roundNums, id)
	}
	sort.Ints(roundNums)

	out := make([]LayoutRound, 0, len(roundNums))
	for _, id := range roundNums {
		matches := rounds[id]
		sort.Slice(matches, func(i, j int) bool {
			return matches[i].Number < matches[j].Number
		})
		out = append(out, LayoutRound{ID: id, Name: names[id], Matches: matches})
	}
	return out
}
