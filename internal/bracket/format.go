package bracket

import (
	"fmt"
)

type Format string

const (
	SingleElimination Format = "single_elimination"
	DoubleElimination Format = "double_elimination"
	RoundRobin        Format = "round_robin"
	Swiss             Format = "swiss"
	GSL               Format = "gsl"
	GroupStage        Format = "group_stage"
	League            Format = "league"
	Gauntlet          Format = "gauntlet"
)

// Formats lists every supported format in display order.
var Formats = []Format{
	SingleElimination,
	DoubleElimination,
	RoundRobin,
	Swiss,
	GSL,
	GroupStage,
	League,
	Gauntlet,
}

func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if _, ok := generators[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

func (f Format) Valid() bool {
	_, ok := generators[f]
	return ok
}

// Grouped formats keep their matches in groups instead of rounds.
func (f Format) Grouped() bool {
	return f == GSL || f == GroupStage
}

// createsRounds is true for formats whose later rounds appear only once the
// previous round is fully decided.
func (f Format) createsRounds() bool {
	return f == SingleElimination || f == DoubleElimination
}

// routesWinners is true for formats where a match winner moves on to a slot
// of the next round.
func (f Format) routesWinners() bool {
	return f == SingleElimination || f == DoubleElimination || f == Gauntlet
}

// minTeams is the smallest team count the format's generator accepts.
func (f Format) minTeams() int {
	if f == GSL {
		return 4
	}
	return 2
}

// nextRoundName names a round appended after the initial structure.
func (f Format) nextRoundName(round, teamCount int) string {
	switch f {
	case SingleElimination:
		return RoundName(round, eliminationRounds(teamCount))
	case DoubleElimination:
		return upperRoundName(round, teamCount)
	}
	return fmt.Sprintf("Round %d", round)
}

func upperRoundName(round, teamCount int) string {
	if round == eliminationRounds(teamCount) {
		return "Upper Bracket Final"
	}
	return fmt.Sprintf("Upper Bracket Round %d", round)
}
