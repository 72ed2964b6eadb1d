package team

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

type Team struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Directory is the read-only source of teams a bracket can reference.
type Directory interface {
	Team(id int) (Team, bool)
	Teams() []Team
}

// Roster is an in-memory Directory, ordered by id.
type Roster []Team

func NewRoster(teams []Team) Roster {
	r := make(Roster, len(teams))
	copy(r, teams)
	sort.SliceStable(r, func(i, j int) bool { return r[i].ID < r[j].ID })
	return r
}

func (r Roster) Team(id int) (Team, bool) {
	i := sort.Search(len(r), func(i int) bool { return r[i].ID >= id })
	if i < len(r) && r[i].ID == id {
		return r[i], true
	}
	return Team{}, false
}

func (r Roster) Teams() []Team {
	out := make([]Team, len(r))
	copy(out, r)
	return out
}

// Search returns teams whose name fuzzily matches query, best match first.
// An exact (case-insensitive) name always ranks first.
func (r Roster) Search(query string) []Team {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return r.Teams()
	}

	names := make([]string, len(r))
	for i, t := range r {
		names[i] = strings.ToLower(t.Name)
	}

	ranks := fuzzy.RankFind(query, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		ei, ej := ranks[i].Target == query, ranks[j].Target == query
		if ei != ej {
			return ei
		}
		return ranks[i].Distance < ranks[j].Distance
	})

	out := make([]Team, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, r[rank.OriginalIndex])
	}
	return out
}

// Resolve looks id up in dir and returns a snapshot pointer, or nil when
// id is nil or unknown.
func Resolve(dir Directory, id *int) *Team {
	if id == nil || dir == nil {
		return nil
	}
	t, ok := dir.Team(*id)
	if !ok {
		return nil
	}
	return &t
}
