package team

import (
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster() Roster {
	return NewRoster([]Team{
		{ID: 3, Name: "Cloud9"},
		{ID: 1, Name: "Team Secret"},
		{ID: 2, Name: "FaZe Clan"},
		{ID: 4, Name: "Team Liquid"},
	})
}

func TestRosterLookup(t *testing.T) {
	r := testRoster()

	got, ok := r.Team(3)
	require.True(t, ok)
	assert.Equal(t, "Cloud9", got.Name)

	_, ok = r.Team(99)
	assert.False(t, ok)

	teams := r.Teams()
	require.Len(t, teams, 4)
	assert.Equal(t, 1, teams[0].ID, "roster should be ordered by id")
}

func TestRosterSearch(t *testing.T) {
	r := testRoster()

	testCases := []struct {
		name     string
		query    string
		expected []int
	}{
		{name: "exact name", query: "cloud9", expected: []int{3}},
		{name: "shared prefix", query: "team", expected: []int{1, 4}},
		{name: "no match", query: "sentinels", expected: []int{}},
		{name: "empty query returns everything", query: "  ", expected: []int{1, 2, 3, 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ids := []int{}
			for _, team := range r.Search(tc.query) {
				ids = append(ids, team.ID)
			}
			assert.ElementsMatch(t, tc.expected, ids)
		})
	}
}

func TestResolve(t *testing.T) {
	r := testRoster()

	assert.Nil(t, Resolve(r, nil))
	assert.Nil(t, Resolve(r, utils.Ptr(42)))
	assert.Nil(t, Resolve(nil, utils.Ptr(1)))

	got := Resolve(r, utils.Ptr(2))
	require.NotNil(t, got)
	assert.Equal(t, "FaZe Clan", got.Name)
}
