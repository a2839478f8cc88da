package internal

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankingRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "nickname", "points", "total_points", "level", "experience", "streak",
	})
}

func TestUserRankings(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("ORDER BY total_points DESC, points DESC").
		WillReturnRows(rankingRows().
			AddRow("u1", "alice", "Ally", 30, 120, 2, 20, 3).
			AddRow("u2", "bob", "", 10, 80, 1, 80, 1))
	mock.ExpectQuery("ORDER BY level DESC, experience DESC").
		WillReturnRows(rankingRows().
			AddRow("u1", "alice", "Ally", 30, 120, 2, 20, 3))
	mock.ExpectQuery("ORDER BY streak DESC, total_points DESC").
		WillReturnRows(rankingRows().
			AddRow("u1", "alice", "Ally", 30, 120, 2, 20, 3))
	mock.ExpectQuery("COALESCE.AVG.total_points").
		WillReturnRows(pgxmock.NewRows([]string{
			"count", "avg_total", "max_total", "avg_level", "max_level", "avg_streak", "max_streak",
		}).AddRow(2, 100.0, 120, 1.55, 2, 2.0, 3))

	report, err := store.UserRankings(context.Background())
	require.NoError(t, err)

	require.Len(t, report.PointsRanking, 2)
	assert.Equal(t, 1, report.PointsRanking[0].Rank)
	assert.Equal(t, 2, report.PointsRanking[1].Rank)
	assert.Equal(t, "Ally", report.PointsRanking[0].DisplayName)
	assert.Equal(t, "bob", report.PointsRanking[1].DisplayName, "display name falls back to login name")

	assert.Equal(t, 2, report.Stats.TotalUsers)
	assert.Equal(t, 100, report.Stats.AvgTotalPoints)
	assert.Equal(t, 1.6, report.Stats.AvgLevel, "averages round to one decimal")
	assert.Equal(t, 3, report.Stats.MaxStreak)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func teamSummaryRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "description", "leader_id", "max_members",
		"leader_name", "leader_nickname", "member_count",
		"total_points", "average_level", "average_streak",
	})
}

func TestTeamRankings(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("HAVING COUNT").
		WillReturnRows(teamSummaryRows().
			AddRow("t1", "Dish Crew", "", "u1", 4, "alice", "Ally", 2, 200, 1.75, 2.0).
			AddRow("t2", "Laundry", "", "u3", 4, "carol", "", 1, 80, 1.0, 0.0))

	report, err := store.TeamRankings(context.Background())
	require.NoError(t, err)

	require.Len(t, report.TeamRanking, 2)
	assert.Equal(t, 1, report.TeamRanking[0].Rank)
	assert.Equal(t, "Ally", report.TeamRanking[0].LeaderDisplayName)
	assert.Equal(t, "carol", report.TeamRanking[1].LeaderDisplayName)
	assert.Equal(t, 1.8, report.TeamRanking[0].AverageLevel, "averages round to one decimal")

	assert.Equal(t, 2, report.Stats.TotalTeams)
	assert.Equal(t, 140, report.Stats.AvgTotalPoints)
	assert.Equal(t, 200, report.Stats.MaxTotalPoints)
	assert.Equal(t, 1.5, report.Stats.AvgMemberCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}
