package bracket

import (
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/team"
	"github.com/google/uuid"
)

var (
	ErrUnknownFormat   = errors.New("unknown bracket format")
	ErrTooFewTeams     = errors.New("not enough teams for format")
	ErrInvalidBestOf   = errors.New("match length must be a positive odd number")
	ErrInvalidDocument = errors.New("invalid bracket document")
)

const (
	DefaultTeamCount = 8
	DefaultBestOf    = 3
)

type Settings struct {
	TeamCount       int  `json:"total_teams"`
	BestOf          int  `json:"best_of"`
	ThirdPlace      bool `json:"third_place"`
	GrandFinalReset bool `json:"grand_final_reset"`

	// Advisory figures recorded by the swiss and league generators
	SwissRounds    int `json:"swiss_rounds,omitempty"`
	EstimatedWeeks int `json:"estimated_weeks,omitempty"`
}

// Bracket is the whole tournament and the unit of persistence. It is not
// safe for concurrent use.
type Bracket struct {
	ID        uuid.UUID
	Name      string
	Format    Format
	Settings  Settings
	Rounds    []*Round
	Groups    []*Group
	Teams     []team.Team
	Public    bool
	UpdatedAt time.Time

	directory team.Directory
}

// New returns an empty bracket with default settings. Teams referenced by
// later operations are resolved against dir.
func New(name string, dir team.Directory) *Bracket {
	return &Bracket{
		ID:     uuid.New(),
		Name:   name,
		Format: SingleElimination,
		Settings: Settings{
			TeamCount: DefaultTeamCount,
			BestOf:    DefaultBestOf,
		},
		directory: dir,
	}
}

// SetDirectory swaps the team source used to resolve ids.
func (b *Bracket) SetDirectory(dir team.Directory) {
	b.directory = dir
}

// Initialize lays out a fresh structure for format, replacing any existing
// rounds or groups.
func (b *Bracket) Initialize(format Format, teamCount, bestOf int) error {
	gen, ok := generators[format]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if teamCount < format.minTeams() {
		return fmt.Errorf("%w: %s needs at least %d, got %d", ErrTooFewTeams, format, format.minTeams(), teamCount)
	}
	if !validBestOf(bestOf) {
		return fmt.Errorf("%w: got %d", ErrInvalidBestOf, bestOf)
	}

	s := gen(teamCount, bestOf)

	b.Format = format
	b.Rounds = s.rounds
	b.Groups = s.groups
	b.Settings.TeamCount = teamCount
	b.Settings.BestOf = bestOf
	b.Settings.SwissRounds = s.swissRounds
	b.Settings.EstimatedWeeks = s.estimatedWeeks
	if b.directory != nil {
		b.Teams = b.directory.Teams()
	}
	b.touch()
	return nil
}

// Clear drops the structure but keeps format and settings so the bracket can
// be generated again.
func (b *Bracket) Clear() {
	b.Rounds = nil
	b.Groups = nil
	b.touch()
}

func (b *Bracket) Round(id int) *Round {
	for _, r := range b.Rounds {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (b *Bracket) Group(id int) *Group {
	for _, g := range b.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Match finds a match by its container id and match id. For grouped formats
// the container is a group, otherwise a round.
func (b *Bracket) Match(containerID int, matchID string) *Match {
	if b.Format.Grouped() {
		if g := b.Group(containerID); g != nil {
			return g.Match(matchID)
		}
		return nil
	}
	if r := b.Round(containerID); r != nil {
		return r.Match(matchID)
	}
	return nil
}

// SelectTeam puts the team with teamID (or nobody, for a nil or unknown id)
// into slot 1 or 2. It returns false only when the match does not exist or
// the slot is invalid.
func (b *Bracket) SelectTeam(roundID int, matchID string, slot int, teamID *int) bool {
	m := b.Match(roundID, matchID)
	if m == nil {
		return false
	}
	if !m.assign(slot, team.Resolve(b.directory, teamID)) {
		return false
	}
	b.touch()
	return true
}

// SetScore records a result. Reaching the win threshold completes the match
// and advances the winner; dropping below it reopens the match without
// touching later rounds.
func (b *Bracket) SetScore(roundID int, matchID string, score1, score2 int) bool {
	m := b.Match(roundID, matchID)
	if m == nil {
		return false
	}
	if m.score(score1, score2) && !b.Format.Grouped() {
		b.advance(b.Round(roundID), m)
	}
	b.touch()
	return true
}

// SetMatchLength changes a match to best of bestOf. Scores already at or past
// the new threshold are reset to zero.
func (b *Bracket) SetMatchLength(roundID int, matchID string, bestOf int) bool {
	if !validBestOf(bestOf) {
		return false
	}
	m := b.Match(roundID, matchID)
	if m == nil {
		return false
	}
	m.setBestOf(bestOf)
	b.touch()
	return true
}

// SelectGroupTeam places a team into a group pool position (1-based).
func (b *Bracket) SelectGroupTeam(groupID, position int, teamID *int) bool {
	g := b.Group(groupID)
	if g == nil || position < 1 || position > len(g.Teams) {
		return false
	}
	g.Teams[position-1] = team.Resolve(b.directory, teamID)
	b.touch()
	return true
}

// AddRound appends an empty swiss round of matchCount matches once the
// current last round is fully decided. Nothing is paired; teams are placed
// with SelectTeam.
func (b *Bracket) AddRound(matchCount int) (*Round, bool) {
	if b.Format != Swiss || matchCount < 1 || len(b.Rounds) == 0 {
		return nil, false
	}
	last := b.Rounds[len(b.Rounds)-1]
	if !last.Completed() {
		return nil, false
	}

	id := last.ID + 1
	r := newRound(id, b.Format.nextRoundName(id, b.Settings.TeamCount), matchCount, b.Settings.BestOf, "")
	b.Rounds = append(b.Rounds, r)
	b.touch()
	return r, true
}

// Champion is the winner of a decided final. Only single elimination and
// gauntlet brackets can produce one.
func (b *Bracket) Champion() *team.Team {
	if b.Format != SingleElimination && b.Format != Gauntlet {
		return nil
	}
	if len(b.Rounds) == 0 {
		return nil
	}
	last := b.Rounds[len(b.Rounds)-1]
	if len(last.Matches) != 1 || last.Matches[0].Status != MatchCompleted {
		return nil
	}
	if b.Format == Gauntlet && last.ID != b.Settings.TeamCount-1 {
		return nil
	}
	return last.Matches[0].Winner
}

func (b *Bracket) touch() {
	b.UpdatedAt = time.Now().UTC()
}
