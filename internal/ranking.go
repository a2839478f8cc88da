package internal

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

const rankingLimit = 50

/* ===================== USERS ===================== */

func (s *Store) queryRanking(ctx context.Context, orderBy string) ([]RankedUser, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, nickname, points, total_points, level, experience, streak
		 FROM users
		 ORDER BY `+orderBy+`
		 LIMIT `+strconv.Itoa(rankingLimit))
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer rows.Close()

	out := []RankedUser{}
	for rows.Next() {
		var r RankedUser
		if err := rows.Scan(&r.ID, &r.Name, &r.Nickname, &r.Points,
			&r.TotalPoints, &r.Level, &r.Experience, &r.Streak); err != nil {
			return nil, err
		}
		r.Rank = len(out) + 1
		r.DisplayName = r.Nickname
		if r.DisplayName == "" {
			r.DisplayName = r.Name
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) userStats(ctx context.Context) (UserStats, error) {
	var st UserStats
	var avgTotal, avgLevel, avgStreak float64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(total_points), 0)::float8,
		        COALESCE(MAX(total_points), 0),
		        COALESCE(AVG(level), 0)::float8,
		        COALESCE(MAX(level), 1),
		        COALESCE(AVG(streak), 0)::float8,
		        COALESCE(MAX(streak), 0)
		 FROM users`,
	).Scan(&st.TotalUsers, &avgTotal, &st.MaxTotalPoints,
		&avgLevel, &st.MaxLevel, &avgStreak, &st.MaxStreak)
	if err != nil {
		return st, mapStoreErr(err)
	}
	st.AvgTotalPoints = int(math.Round(avgTotal))
	st.AvgLevel = round1(avgLevel)
	st.AvgStreak = round1(avgStreak)
	return st, nil
}

// UserRankings builds the three capped leaderboards plus whole-table stats.
// Rankings cap at 50 rows; the stats always cover every user.
func (s *Store) UserRankings(ctx context.Context) (*RankingReport, error) {
	points, err := s.queryRanking(ctx, "total_points DESC, points DESC, level DESC")
	if err != nil {
		return nil, err
	}
	level, err := s.queryRanking(ctx, "level DESC, experience DESC, total_points DESC")
	if err != nil {
		return nil, err
	}
	streak, err := s.queryRanking(ctx, "streak DESC, total_points DESC, level DESC")
	if err != nil {
		return nil, err
	}
	stats, err := s.userStats(ctx)
	if err != nil {
		return nil, err
	}
	return &RankingReport{
		PointsRanking: points,
		LevelRanking:  level,
		StreakRanking: streak,
		Stats:         stats,
	}, nil
}

/* ===================== TEAMS ===================== */

func collectTeamSummaries(rows pgx.Rows) ([]TeamSummary, error) {
	out := []TeamSummary{}
	for rows.Next() {
		var t TeamSummary
		var leaderNickname string
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.MaxMembers,
			&t.LeaderName, &leaderNickname, &t.MemberCount, &t.TotalPoints,
			&t.AverageLevel, &t.AverageStreak); err != nil {
			return nil, err
		}
		t.AverageLevel = round1(t.AverageLevel)
		t.AverageStreak = round1(t.AverageStreak)
		t.LeaderDisplayName = leaderNickname
		if t.LeaderDisplayName == "" {
			t.LeaderDisplayName = t.LeaderName
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TeamRankings aggregates members per team, skipping empty teams. The list
// caps at 50; stats cover every non-empty team.
func (s *Store) TeamRankings(ctx context.Context) (*TeamRankingReport, error) {
	rows, err := s.db.Query(ctx,
		`SELECT t.id, t.name, t.description, t.leader_id, t.max_members,
		        COALESCE(u.name, '') AS leader_name,
		        COALESCE(u.nickname, '') AS leader_nickname,
		        COUNT(tm.user_id) AS member_count,
		        COALESCE(SUM(u2.total_points), 0) AS total_points,
		        COALESCE(AVG(u2.level), 0)::float8 AS average_level,
		        COALESCE(AVG(u2.streak), 0)::float8 AS average_streak
		 FROM teams t
		 LEFT JOIN users u ON u.id = t.leader_id
		 LEFT JOIN team_members tm ON tm.team_id = t.id
		 LEFT JOIN users u2 ON u2.id = tm.user_id
		 GROUP BY t.id, u.name, u.nickname
		 HAVING COUNT(tm.user_id) > 0
		 ORDER BY total_points DESC, average_level DESC, member_count DESC`)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer rows.Close()

	all, err := collectTeamSummaries(rows)
	if err != nil {
		return nil, err
	}

	stats := TeamStats{TotalTeams: len(all)}
	if len(all) > 0 {
		var totalSum, memberSum, levelSum float64
		for _, t := range all {
			totalSum += float64(t.TotalPoints)
			memberSum += float64(t.MemberCount)
			levelSum += t.AverageLevel
			if t.TotalPoints > stats.MaxTotalPoints {
				stats.MaxTotalPoints = t.TotalPoints
			}
			if t.AverageLevel > stats.MaxLevel {
				stats.MaxLevel = t.AverageLevel
			}
		}
		n := float64(len(all))
		stats.AvgTotalPoints = int(math.Round(totalSum / n))
		stats.AvgMemberCount = round1(memberSum / n)
		stats.AvgLevel = round1(levelSum / n)
	}

	if len(all) > rankingLimit {
		all = all[:rankingLimit]
	}
	for i := range all {
		all[i].Rank = i + 1
	}

	return &TeamRankingReport{TeamRanking: all, Stats: stats}, nil
}

/* ===================== HANDLERS ===================== */

func UserRanking(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := store.UserRankings(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func TeamRanking(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := store.TeamRankings(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
