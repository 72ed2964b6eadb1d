package bracket

import (
	"fmt"
)

// structure is what a format generator lays out before any team is placed.
type structure struct {
	rounds []*Round
	groups []*Group

	swissRounds    int
	estimatedWeeks int
}

type generator func(teamCount, bestOf int) structure

var generators = map[Format]generator{
	SingleElimination: generateSingleElimination,
	DoubleElimination: generateDoubleElimination,
	RoundRobin:        generateRoundRobin,
	Swiss:             generateSwiss,
	GSL:               generateGSL,
	GroupStage:        generateGroupStage,
	League:            generateLeague,
	Gauntlet:          generateGauntlet,
}

// Later rounds are created as the bracket progresses
func generateSingleElimination(teamCount, bestOf int) structure {
	name := RoundName(1, eliminationRounds(teamCount))
	return structure{rounds: []*Round{newRound(1, name, teamCount/2, bestOf, "")}}
}

// Only the upper bracket opening round exists up front. Lower bracket and
// grand final rounds are not generated.
func generateDoubleElimination(teamCount, bestOf int) structure {
	name := upperRoundName(1, teamCount)
	return structure{rounds: []*Round{newRound(1, name, teamCount/2, bestOf, UpperSide)}}
}

func generateRoundRobin(teamCount, bestOf int) structure {
	return structure{rounds: roundRobinRounds(teamCount, bestOf)}
}

func generateLeague(teamCount, bestOf int) structure {
	rounds := roundRobinRounds(teamCount, bestOf)
	total := 0
	for _, r := range rounds {
		total += len(r.Matches)
	}
	return structure{
		rounds:         rounds,
		estimatedWeeks: (total + 3) / 4,
	}
}

// Every unordered pair once, chunked into rounds of teamCount/2 matches in
// enumeration order. A team can appear twice in the same round.
func roundRobinRounds(teamCount, bestOf int) []*Round {
	perRound := teamCount / 2
	var rounds []*Round
	var current *Round

	for i := 0; i < teamCount; i++ {
		for j := i + 1; j < teamCount; j++ {
			if current == nil || len(current.Matches) == perRound {
				id := len(rounds) + 1
				current = &Round{ID: id, Name: fmt.Sprintf("Round %d", id), Matches: make([]*Match, 0, perRound)}
				rounds = append(rounds, current)
			}
			n := len(current.Matches) + 1
			m := newMatch(roundMatchID(current.ID, n), n, bestOf)
			m.Seeds = &[2]int{i, j}
			current.Matches = append(current.Matches, m)
		}
	}
	return rounds
}

// Only round 1 is generated; there is no pairing by record for later rounds.
func generateSwiss(teamCount, bestOf int) structure {
	return structure{
		rounds:      []*Round{newRound(1, "Round 1", teamCount/2, bestOf, "")},
		swissRounds: eliminationRounds(teamCount),
	}
}

var gslTemplate = []string{
	"Opening Match 1",
	"Opening Match 2",
	"Winners Match",
	"Losers Match",
	"Decider Match",
}

func generateGSL(teamCount, bestOf int) structure {
	var groups []*Group
	for g := 1; g <= teamCount/4; g++ {
		group := newGroup(g, 4)
		for _, label := range gslTemplate {
			group.addMatch(bestOf, label)
		}
		groups = append(groups, group)
	}
	return structure{groups: groups}
}

const maxStageGroups = 4

// Teams are spread as evenly as possible over up to four groups, each of
// which plays a full round robin. Playoffs are not generated.
func generateGroupStage(teamCount, bestOf int) structure {
	groupCount := (teamCount + 3) / 4
	if groupCount > maxStageGroups {
		groupCount = maxStageGroups
	}

	base, extra := teamCount/groupCount, teamCount%groupCount
	groups := make([]*Group, 0, groupCount)
	for g := 1; g <= groupCount; g++ {
		size := base
		if g <= extra {
			size++
		}
		group := newGroup(g, size)
		for i := 0; i < size; i++ {
			for j := i + 1; j < size; j++ {
				m := group.addMatch(bestOf, "")
				m.Seeds = &[2]int{i, j}
			}
		}
		groups = append(groups, group)
	}
	return structure{groups: groups}
}

// The two lowest seeds open, the survivor then meets each higher seed in
// turn and the top seed waits in the final.
func generateGauntlet(teamCount, bestOf int) structure {
	total := teamCount - 1
	rounds := make([]*Round, 0, total)
	for r := 1; r <= total; r++ {
		name := fmt.Sprintf("Gauntlet Round %d", r)
		if r == total {
			name = "Grand Final"
		}
		round := newRound(r, name, 1, bestOf, "")
		if r == 1 {
			round.Matches[0].Label = fmt.Sprintf("Seed %d vs Seed %d", teamCount-1, teamCount)
		} else {
			round.Matches[0].Label = fmt.Sprintf("Winner vs Seed %d", teamCount-r)
		}
		rounds = append(rounds, round)
	}
	return structure{rounds: rounds}
}
