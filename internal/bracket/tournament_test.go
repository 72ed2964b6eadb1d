package bracket

import (
	"fmt"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/team"
	"github.com/AdamBeresnev/bracket-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster(n int) team.Roster {
	teams := make([]team.Team, 0, n)
	for i := 1; i <= n; i++ {
		teams = append(teams, team.Team{ID: i, Name: fmt.Sprintf("Team %d", i)})
	}
	return team.NewRoster(teams)
}

// seedRoundOne places teams 1..2N into round 1 in order.
func seedRoundOne(t *testing.T, b *Bracket) {
	t.Helper()
	for i, m := range b.Round(1).Matches {
		require.True(t, b.SelectTeam(1, m.ID, 1, utils.Ptr(2*i+1)))
		require.True(t, b.SelectTeam(1, m.ID, 2, utils.Ptr(2*i+2)))
	}
}

func TestSingleEliminationProgression(t *testing.T) {
	b := New("Cup", testRoster(8))
	require.NoError(t, b.Initialize(SingleElimination, 8, 3))
	seedRoundOne(t, b)

	for _, m := range b.Round(1).Matches {
		assert.Equal(t, MatchLive, m.Status)
	}

	require.True(t, b.SetScore(1, "R1M1", 2, 0))
	r1m1 := b.Match(1, "R1M1")
	assert.Equal(t, MatchCompleted, r1m1.Status)
	assert.Equal(t, 1, r1m1.Winner.ID)
	assert.Nil(t, b.Round(2), "round 2 waits for the whole round")

	require.True(t, b.SetScore(1, "R1M2", 0, 2))
	require.True(t, b.SetScore(1, "R1M3", 2, 1))
	assert.Nil(t, b.Round(2))
	require.True(t, b.SetScore(1, "R1M4", 1, 2))

	semis := b.Round(2)
	require.NotNil(t, semis)
	assert.Equal(t, "Semi Finals", semis.Name)
	require.Len(t, semis.Matches, 2)
	assert.Equal(t, 1, semis.Matches[0].Team1.ID)
	assert.Equal(t, 4, semis.Matches[0].Team2.ID)
	assert.Equal(t, 5, semis.Matches[1].Team1.ID)
	assert.Equal(t, 8, semis.Matches[1].Team2.ID)
	for _, m := range semis.Matches {
		assert.Equal(t, MatchLive, m.Status)
		assert.Equal(t, 3, m.BestOf)
	}

	require.True(t, b.SetScore(2, "R2M1", 2, 1))
	assert.Nil(t, b.Round(3))
	require.True(t, b.SetScore(2, "R2M2", 0, 2))

	final := b.Round(3)
	require.NotNil(t, final)
	assert.Equal(t, "Grand Final", final.Name)
	require.Len(t, final.Matches, 1)
	assert.Equal(t, 1, final.Matches[0].Team1.ID)
	assert.Equal(t, 8, final.Matches[0].Team2.ID)
	assert.Nil(t, b.Champion())

	require.True(t, b.SetScore(3, "R3M1", 2, 0))
	assert.Len(t, b.Rounds, 3, "a decided final creates nothing")
	require.NotNil(t, b.Champion())
	assert.Equal(t, 1, b.Champion().ID)
}

func TestRoundCreationIsIdempotent(t *testing.T) {
	b := New("Cup", testRoster(4))
	require.NoError(t, b.Initialize(SingleElimination, 4, 1))
	seedRoundOne(t, b)

	require.True(t, b.SetScore(1, "R1M1", 1, 0))
	require.True(t, b.SetScore(1, "R1M2", 1, 0))
	require.Len(t, b.Rounds, 2)

	// Re-entering the same results must not add another round
	require.True(t, b.SetScore(1, "R1M1", 1, 0))
	require.True(t, b.SetScore(1, "R1M2", 1, 0))
	b.createNextRound(b.Round(1))

	assert.Len(t, b.Rounds, 2)
	assert.Len(t, b.Round(2).Matches, 1)
}

func TestWinnerRoutingSlotParity(t *testing.T) {
	b := New("Cup", testRoster(16))
	require.NoError(t, b.Initialize(SingleElimination, 16, 1))
	seedRoundOne(t, b)

	for _, m := range b.Round(1).Matches {
		require.True(t, b.SetScore(1, m.ID, 0, 1))
	}

	next := b.Round(2)
	require.NotNil(t, next)
	require.Len(t, next.Matches, 4)
	for n := 1; n <= 8; n++ {
		winner := b.Match(1, fmt.Sprintf("R1M%d", n)).Winner
		target := next.matchByNumber((n + 1) / 2)
		require.NotNil(t, target)
		slot := 2
		if n%2 == 1 {
			slot = 1
		}
		assert.Equal(t, winner.ID, target.Slot(slot).ID, "winner of match %d", n)
	}
}

func TestScoreCorrection(t *testing.T) {
	b := New("Cup", testRoster(4))
	require.NoError(t, b.Initialize(SingleElimination, 4, 3))
	seedRoundOne(t, b)

	require.True(t, b.SetScore(1, "R1M1", 2, 1))
	require.True(t, b.SetScore(1, "R1M2", 2, 0))
	final := b.Match(2, "R2M1")
	require.NotNil(t, final)
	assert.Equal(t, 1, final.Team1.ID)

	t.Run("lowering below threshold keeps routed winner", func(t *testing.T) {
		require.True(t, b.SetScore(1, "R1M1", 1, 1))

		m := b.Match(1, "R1M1")
		assert.Equal(t, MatchLive, m.Status)
		assert.Nil(t, m.Winner)
		require.NotNil(t, final.Team1)
		assert.Equal(t, 1, final.Team1.ID)
	})

	t.Run("new winner overwrites routed slot", func(t *testing.T) {
		require.True(t, b.SetScore(1, "R1M1", 1, 2))

		assert.Equal(t, 2, b.Match(1, "R1M1").Winner.ID)
		assert.Equal(t, 2, final.Team1.ID)
		assert.Len(t, b.Rounds, 2)
	})
}

func TestSlotChangeResettlesCompletedMatch(t *testing.T) {
	t.Run("clearing a slot reopens the match", func(t *testing.T) {
		b := New("Cup", testRoster(4))
		require.NoError(t, b.Initialize(SingleElimination, 4, 3))
		seedRoundOne(t, b)
		require.True(t, b.SetScore(1, "R1M1", 2, 0))

		require.True(t, b.SelectTeam(1, "R1M1", 1, nil))

		m := b.Match(1, "R1M1")
		assert.Equal(t, MatchPending, m.Status)
		assert.Nil(t, m.Winner)
		assert.Equal(t, 2, m.Score1, "scores are kept")
	})

	t.Run("swapping the winner's slot hands the win to the new team", func(t *testing.T) {
		b := New("Cup", testRoster(5))
		require.NoError(t, b.Initialize(SingleElimination, 4, 3))
		seedRoundOne(t, b)
		require.True(t, b.SetScore(1, "R1M1", 2, 0))

		require.True(t, b.SelectTeam(1, "R1M1", 1, utils.Ptr(5)))

		m := b.Match(1, "R1M1")
		assert.Equal(t, MatchCompleted, m.Status)
		require.NotNil(t, m.Winner)
		assert.Equal(t, 5, m.Winner.ID)
	})

	t.Run("correction routed into a decided final", func(t *testing.T) {
		b := New("Cup", testRoster(4))
		require.NoError(t, b.Initialize(SingleElimination, 4, 3))
		seedRoundOne(t, b)
		require.True(t, b.SetScore(1, "R1M1", 2, 0))
		require.True(t, b.SetScore(1, "R1M2", 0, 2))
		require.True(t, b.SetScore(2, "R2M1", 2, 1))
		require.Equal(t, 1, b.Champion().ID)

		require.True(t, b.SetScore(1, "R1M1", 0, 2))

		final := b.Match(2, "R2M1")
		require.NotNil(t, final.Team1)
		assert.Equal(t, 2, final.Team1.ID)
		assert.Equal(t, MatchCompleted, final.Status)
		require.NotNil(t, final.Winner)
		assert.Equal(t, final.Team1, final.Winner, "winner always sits in a slot")
		assert.Equal(t, 2, b.Champion().ID)
	})
}

func TestSelectTeam(t *testing.T) {
	b := New("Cup", testRoster(4))
	require.NoError(t, b.Initialize(SingleElimination, 4, 3))

	testCases := []struct {
		name     string
		round    int
		match    string
		slot     int
		teamID   *int
		expected bool
		team     *int
	}{
		{"known team", 1, "R1M1", 1, utils.Ptr(3), true, utils.Ptr(3)},
		{"unknown team clears slot", 1, "R1M1", 1, utils.Ptr(99), true, nil},
		{"nil team clears slot", 1, "R1M2", 2, nil, true, nil},
		{"missing round", 5, "R5M1", 1, utils.Ptr(1), false, nil},
		{"missing match", 1, "R1M9", 1, utils.Ptr(1), false, nil},
		{"bad slot", 1, "R1M1", 3, utils.Ptr(1), false, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok := b.SelectTeam(tc.round, tc.match, tc.slot, tc.teamID)
			assert.Equal(t, tc.expected, ok)
			if !ok {
				return
			}
			got := b.Match(tc.round, tc.match).Slot(tc.slot)
			if tc.team == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tc.team, got.ID)
				assert.Equal(t, fmt.Sprintf("Team %d", *tc.team), got.Name)
			}
		})
	}
}

func TestSetScoreMissingMatch(t *testing.T) {
	b := New("Cup", testRoster(4))
	require.NoError(t, b.Initialize(SingleElimination, 4, 3))
	before := b.UpdatedAt

	assert.False(t, b.SetScore(2, "R2M1", 2, 0))
	assert.False(t, b.SetScore(1, "R2M1", 2, 0))
	assert.Equal(t, before, b.UpdatedAt)
}

func TestSetMatchLength(t *testing.T) {
	b := New("Cup", testRoster(2))
	require.NoError(t, b.Initialize(SingleElimination, 2, 5))
	seedRoundOne(t, b)
	require.True(t, b.SetScore(1, "R1M1", 2, 1))

	assert.False(t, b.SetMatchLength(1, "R1M1", 4))
	assert.False(t, b.SetMatchLength(1, "R1M1", 0))
	assert.False(t, b.SetMatchLength(1, "R1M2", 3))
	assert.Equal(t, 5, b.Match(1, "R1M1").BestOf)

	require.True(t, b.SetMatchLength(1, "R1M1", 3))
	m := b.Match(1, "R1M1")
	assert.Equal(t, 3, m.BestOf)
	assert.Equal(t, 0, m.Score1)
	assert.Equal(t, 0, m.Score2)
	assert.Equal(t, MatchLive, m.Status)
	assert.Nil(t, m.Winner)
}

func TestClear(t *testing.T) {
	testCases := []struct {
		format Format
		teams  int
	}{
		{SingleElimination, 8},
		{GSL, 8},
		{GroupStage, 12},
		{League, 6},
	}

	for _, tc := range testCases {
		t.Run(string(tc.format), func(t *testing.T) {
			b := New("Cup", testRoster(tc.teams))
			require.NoError(t, b.Initialize(tc.format, tc.teams, 5))
			settings := b.Settings

			b.Clear()

			assert.Empty(t, b.Rounds)
			assert.Empty(t, b.Groups)
			assert.Equal(t, tc.format, b.Format)
			assert.Equal(t, settings, b.Settings)
		})
	}
}

func TestGroupedAddressing(t *testing.T) {
	b := New("GSL", testRoster(8))
	require.NoError(t, b.Initialize(GSL, 8, 3))

	require.True(t, b.SelectTeam(2, "G2M1", 1, utils.Ptr(5)))
	require.True(t, b.SelectTeam(2, "G2M1", 2, utils.Ptr(6)))
	assert.False(t, b.SelectTeam(1, "G2M1", 1, utils.Ptr(5)), "match lives in group 2")
	assert.False(t, b.SelectTeam(3, "G3M1", 1, utils.Ptr(5)))

	require.True(t, b.SetScore(2, "G2M1", 2, 0))
	m := b.Match(2, "G2M1")
	assert.Equal(t, MatchCompleted, m.Status)
	assert.Equal(t, 5, m.Winner.ID)

	// No routing inside the group template
	assert.Nil(t, b.Match(2, "G2M3").Team1)
	assert.Empty(t, b.Rounds)

	require.True(t, b.SelectGroupTeam(2, 1, utils.Ptr(5)))
	assert.Equal(t, 5, b.Group(2).Teams[0].ID)
	assert.False(t, b.SelectGroupTeam(2, 5, utils.Ptr(5)))
	assert.False(t, b.SelectGroupTeam(9, 1, utils.Ptr(5)))
}

func TestGauntletRouting(t *testing.T) {
	b := New("Gauntlet", testRoster(4))
	require.NoError(t, b.Initialize(Gauntlet, 4, 1))

	require.True(t, b.SelectTeam(1, "R1M1", 1, utils.Ptr(3)))
	require.True(t, b.SelectTeam(1, "R1M1", 2, utils.Ptr(4)))
	require.True(t, b.SetScore(1, "R1M1", 0, 1))

	r2 := b.Match(2, "R2M1")
	require.NotNil(t, r2.Team1)
	assert.Equal(t, 4, r2.Team1.ID)
	assert.Equal(t, MatchPending, r2.Status)

	require.True(t, b.SelectTeam(2, "R2M1", 2, utils.Ptr(2)))
	require.True(t, b.SetScore(2, "R2M1", 1, 0))
	require.True(t, b.SelectTeam(3, "R3M1", 2, utils.Ptr(1)))
	assert.Nil(t, b.Champion())

	require.True(t, b.SetScore(3, "R3M1", 0, 1))
	assert.Len(t, b.Rounds, 3)
	require.NotNil(t, b.Champion())
	assert.Equal(t, 1, b.Champion().ID)
}

func TestDoubleEliminationUpperBracket(t *testing.T) {
	b := New("Double", testRoster(8))
	require.NoError(t, b.Initialize(DoubleElimination, 8, 1))
	seedRoundOne(t, b)

	for _, m := range b.Round(1).Matches {
		require.True(t, b.SetScore(1, m.ID, 1, 0))
	}

	r2 := b.Round(2)
	require.NotNil(t, r2)
	assert.Equal(t, "Upper Bracket Round 2", r2.Name)
	for _, m := range r2.Matches {
		assert.Equal(t, UpperSide, m.Side)
	}

	for _, m := range r2.Matches {
		require.True(t, b.SetScore(2, m.ID, 1, 0))
	}
	r3 := b.Round(3)
	require.NotNil(t, r3)
	assert.Equal(t, "Upper Bracket Final", r3.Name)
	assert.Nil(t, b.Champion())
}

func TestRoundRobinDoesNotCreateRounds(t *testing.T) {
	b := New("Robin", testRoster(4))
	require.NoError(t, b.Initialize(RoundRobin, 4, 1))
	rounds := len(b.Rounds)

	for _, m := range b.Round(1).Matches {
		require.True(t, b.SelectTeam(1, m.ID, 1, utils.Ptr(m.Seeds[0]+1)))
		require.True(t, b.SelectTeam(1, m.ID, 2, utils.Ptr(m.Seeds[1]+1)))
		require.True(t, b.SetScore(1, m.ID, 1, 0))
	}

	assert.Len(t, b.Rounds, rounds)
	assert.Nil(t, b.Match(2, "R2M1").Team1)
}

func TestAddRound(t *testing.T) {
	b := New("Swiss", testRoster(4))
	require.NoError(t, b.Initialize(Swiss, 4, 1))

	_, ok := b.AddRound(2)
	assert.False(t, ok, "round 1 still open")

	seedRoundOne(t, b)
	for _, m := range b.Round(1).Matches {
		require.True(t, b.SetScore(1, m.ID, 1, 0))
	}
	assert.Len(t, b.Rounds, 1, "swiss never creates rounds by itself")

	_, ok = b.AddRound(0)
	assert.False(t, ok)

	r, ok := b.AddRound(2)
	require.True(t, ok)
	assert.Equal(t, 2, r.ID)
	assert.Equal(t, "Round 2", r.Name)
	assert.Len(t, r.Matches, 2)
	assert.Equal(t, "R2M1", r.Matches[0].ID)
	assert.Same(t, r, b.Round(2))

	_, ok = b.AddRound(2)
	assert.False(t, ok, "round 2 still open")

	se := New("Cup", nil)
	require.NoError(t, se.Initialize(SingleElimination, 4, 1))
	_, ok = se.AddRound(1)
	assert.False(t, ok)
}

func TestInitializeSnapshotsRoster(t *testing.T) {
	b := New("Cup", testRoster(3))
	require.NoError(t, b.Initialize(SingleElimination, 4, 1))
	assert.Len(t, b.Teams, 3)

	b.SetDirectory(testRoster(5))
	require.True(t, b.SelectTeam(1, "R1M1", 1, utils.Ptr(5)))
	assert.Equal(t, 5, b.Match(1, "R1M1").Team1.ID)
}
