package bracket

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/team"
	"github.com/google/uuid"
)

// Document is the persisted shape of a Bracket. Teams inside matches are
// stored by id only.
type Document struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Format      Format          `json:"format"`
	Settings    Settings        `json:"settings"`
	Rounds      []RoundDocument `json:"rounds,omitempty"`
	Groups      []GroupDocument `json:"groups,omitempty"`
	Teams       []team.Team     `json:"teams"`
	Public      bool            `json:"is_public"`
	LastUpdated time.Time       `json:"last_updated"`
}

type RoundDocument struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Matches []MatchDocument `json:"matches"`
}

type GroupDocument struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Size    int             `json:"size"`
	TeamIDs []*int          `json:"team_ids"`
	Matches []MatchDocument `json:"matches"`
}

type MatchDocument struct {
	ID       string      `json:"id"`
	Number   int         `json:"match_number"`
	Team1ID  *int        `json:"team1_id"`
	Team2ID  *int        `json:"team2_id"`
	Score1   int         `json:"score1"`
	Score2   int         `json:"score2"`
	BestOf   int         `json:"best_of"`
	Status   MatchStatus `json:"status"`
	WinnerID *int        `json:"winner_id"`
	GroupID  int         `json:"group_id,omitempty"`
	Side     BracketSide `json:"bracket_side,omitempty"`
	Label    string      `json:"label,omitempty"`
	Seeds    *[2]int     `json:"seeds,omitempty"`
}

func teamID(t *team.Team) *int {
	if t == nil {
		return nil
	}
	id := t.ID
	return &id
}

// Encode snapshots b into its persisted form.
func Encode(b *Bracket) Document {
	doc := Document{
		ID:          b.ID,
		Name:        b.Name,
		Format:      b.Format,
		Settings:    b.Settings,
		Teams:       append([]team.Team(nil), b.Teams...),
		Public:      b.Public,
		LastUpdated: b.UpdatedAt,
	}
	for _, r := range b.Rounds {
		rd := RoundDocument{ID: r.ID, Name: r.Name, Matches: make([]MatchDocument, 0, len(r.Matches))}
		for _, m := range r.Matches {
			rd.Matches = append(rd.Matches, encodeMatch(m))
		}
		doc.Rounds = append(doc.Rounds, rd)
	}
	for _, g := range b.Groups {
		gd := GroupDocument{ID: g.ID, Name: g.Name, Size: g.Size, Matches: make([]MatchDocument, 0, len(g.Matches))}
		for _, t := range g.Teams {
			gd.TeamIDs = append(gd.TeamIDs, teamID(t))
		}
		for _, m := range g.Matches {
			gd.Matches = append(gd.Matches, encodeMatch(m))
		}
		doc.Groups = append(doc.Groups, gd)
	}
	return doc
}

func encodeMatch(m *Match) MatchDocument {
	return MatchDocument{
		ID:       m.ID,
		Number:   m.Number,
		Team1ID:  teamID(m.Team1),
		Team2ID:  teamID(m.Team2),
		Score1:   m.Score1,
		Score2:   m.Score2,
		BestOf:   m.BestOf,
		Status:   m.Status,
		WinnerID: teamID(m.Winner),
		GroupID:  m.GroupID,
		Side:     m.Side,
		Label:    m.Label,
		Seeds:    m.Seeds,
	}
}

var (
	roundMatchIDPattern = regexp.MustCompile(`^R(\d+)M(\d+)$`)
	groupMatchIDPattern = regexp.MustCompile(`^G(\d+)M(\d+)$`)
)

// Decode rebuilds a Bracket from doc, resolving team ids against dir.
// Unknown team ids become empty slots. Structural problems are reported as
// ErrInvalidDocument.
func Decode(doc Document, dir team.Directory) (*Bracket, error) {
	if !doc.Format.Valid() {
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidDocument, doc.Format)
	}
	if len(doc.Rounds) > 0 && len(doc.Groups) > 0 {
		return nil, fmt.Errorf("%w: has both rounds and groups", ErrInvalidDocument)
	}
	if doc.Format.Grouped() && len(doc.Rounds) > 0 {
		return nil, fmt.Errorf("%w: %s keeps matches in groups", ErrInvalidDocument, doc.Format)
	}
	if !doc.Format.Grouped() && len(doc.Groups) > 0 {
		return nil, fmt.Errorf("%w: %s keeps matches in rounds", ErrInvalidDocument, doc.Format)
	}

	b := &Bracket{
		ID:        doc.ID,
		Name:      doc.Name,
		Format:    doc.Format,
		Settings:  doc.Settings,
		Teams:     append([]team.Team(nil), doc.Teams...),
		Public:    doc.Public,
		UpdatedAt: doc.LastUpdated,
		directory: dir,
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	for i, rd := range doc.Rounds {
		if rd.ID != i+1 {
			return nil, fmt.Errorf("%w: round %d found at position %d", ErrInvalidDocument, rd.ID, i+1)
		}
		r := &Round{ID: rd.ID, Name: rd.Name, Matches: make([]*Match, 0, len(rd.Matches))}
		for _, md := range rd.Matches {
			if err := checkMatchID(roundMatchIDPattern, md, rd.ID); err != nil {
				return nil, err
			}
			r.Matches = append(r.Matches, decodeMatch(md, dir))
		}
		b.Rounds = append(b.Rounds, r)
	}

	for _, gd := range doc.Groups {
		if gd.ID < 1 || b.Group(gd.ID) != nil {
			return nil, fmt.Errorf("%w: bad or duplicate group id %d", ErrInvalidDocument, gd.ID)
		}
		g := &Group{ID: gd.ID, Name: gd.Name, Size: gd.Size, Teams: make([]*team.Team, len(gd.TeamIDs))}
		for i, id := range gd.TeamIDs {
			g.Teams[i] = team.Resolve(dir, id)
		}
		for _, md := range gd.Matches {
			if err := checkMatchID(groupMatchIDPattern, md, gd.ID); err != nil {
				return nil, err
			}
			g.Matches = append(g.Matches, decodeMatch(md, dir))
		}
		b.Groups = append(b.Groups, g)
	}

	return b, nil
}

func checkMatchID(pattern *regexp.Regexp, md MatchDocument, container int) error {
	parts := pattern.FindStringSubmatch(md.ID)
	if parts == nil {
		return fmt.Errorf("%w: malformed match id %q", ErrInvalidDocument, md.ID)
	}
	c, _ := strconv.Atoi(parts[1])
	n, _ := strconv.Atoi(parts[2])
	if c != container || n != md.Number {
		return fmt.Errorf("%w: match id %q does not match its position", ErrInvalidDocument, md.ID)
	}
	if !validBestOf(md.BestOf) {
		return fmt.Errorf("%w: match %q has best of %d", ErrInvalidDocument, md.ID, md.BestOf)
	}
	return nil
}

func decodeMatch(md MatchDocument, dir team.Directory) *Match {
	m := &Match{
		ID:      md.ID,
		Number:  md.Number,
		Team1:   team.Resolve(dir, md.Team1ID),
		Team2:   team.Resolve(dir, md.Team2ID),
		BestOf:  md.BestOf,
		GroupID: md.GroupID,
		Side:    md.Side,
		Label:   md.Label,
		Seeds:   md.Seeds,
	}
	// Stored status and winner are ignored; both follow from the resolved slots.
	m.score(md.Score1, md.Score2)
	return m
}

// Marshal encodes b as a JSON document.
func Marshal(b *Bracket) ([]byte, error) {
	return json.Marshal(Encode(b))
}

// Unmarshal decodes a JSON document produced by Marshal.
func Unmarshal(data []byte, dir team.Directory) (*Bracket, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return Decode(doc, dir)
}
