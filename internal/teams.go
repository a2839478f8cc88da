package internal

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const teamCols = "id, name, description, leader_id, max_members, created_at, updated_at"

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func scanTeam(row interface{ Scan(dest ...any) error }) (*Team, error) {
	var t Team
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID,
		&t.MaxMembers, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return &t, nil
}

/* ===================== STORE ===================== */

// CreateTeam inserts the team and its leader membership together. The leader
// must not belong to any team yet.
func (s *Store) CreateTeam(ctx context.Context, name, description, leaderID string) (*Team, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var inTeam bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM team_members WHERE user_id=$1)", leaderID,
	).Scan(&inTeam)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if inTeam {
		return nil, ErrAlreadyInTeam
	}

	id := uuid.NewString()
	t, err := scanTeam(tx.QueryRow(ctx,
		`INSERT INTO teams (id, name, description, leader_id)
		 VALUES ($1,$2,$3,$4)
		 RETURNING `+teamCols,
		id, name, description, leaderID))
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO team_members (team_id, user_id, role) VALUES ($1,$2,'leader')",
		id, leaderID,
	)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) JoinTeam(ctx context.Context, teamID, userID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var maxMembers int
	err = tx.QueryRow(ctx,
		"SELECT max_members FROM teams WHERE id=$1", teamID,
	).Scan(&maxMembers)
	if err != nil {
		return mapStoreErr(err)
	}

	var inTeam bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM team_members WHERE user_id=$1)", userID,
	).Scan(&inTeam)
	if err != nil {
		return mapStoreErr(err)
	}
	if inTeam {
		return ErrAlreadyInTeam
	}

	var count int
	err = tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM team_members WHERE team_id=$1", teamID,
	).Scan(&count)
	if err != nil {
		return mapStoreErr(err)
	}
	if count >= maxMembers {
		return ErrTeamFull
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO team_members (team_id, user_id, role) VALUES ($1,$2,'member')",
		teamID, userID,
	)
	if err != nil {
		return mapStoreErr(err)
	}

	return tx.Commit(ctx)
}

// LeaveTeam removes a membership. A leader may only leave when alone, and that
// leave disbands the team. Returns whether the team was deleted.
func (s *Store) LeaveTeam(ctx context.Context, teamID, userID string) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var role string
	err = tx.QueryRow(ctx,
		"SELECT role FROM team_members WHERE team_id=$1 AND user_id=$2",
		teamID, userID,
	).Scan(&role)
	if err != nil {
		if mapStoreErr(err) == ErrNotFound {
			return false, ErrNotMember
		}
		return false, mapStoreErr(err)
	}

	deleted := false
	if role == "leader" {
		var others int
		err = tx.QueryRow(ctx,
			"SELECT COUNT(*) FROM team_members WHERE team_id=$1 AND user_id != $2",
			teamID, userID,
		).Scan(&others)
		if err != nil {
			return false, mapStoreErr(err)
		}
		if others > 0 {
			return false, ErrLeaderCannotLeave
		}
		// Sole leader: disband. Membership rows go with the team.
		_, err = tx.Exec(ctx, "DELETE FROM teams WHERE id=$1", teamID)
		if err != nil {
			return false, mapStoreErr(err)
		}
		deleted = true
	} else {
		_, err = tx.Exec(ctx,
			"DELETE FROM team_members WHERE team_id=$1 AND user_id=$2",
			teamID, userID,
		)
		if err != nil {
			return false, mapStoreErr(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return deleted, nil
}

// DeleteTeam removes the team when the requester is its leader; membership
// rows cascade.
func (s *Store) DeleteTeam(ctx context.Context, teamID, requesterID string) error {
	tag, err := s.db.Exec(ctx,
		"DELETE FROM teams WHERE id=$1 AND leader_id=$2", teamID, requesterID)
	if err != nil {
		return mapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) teamMembers(ctx context.Context, teamID string) ([]TeamMember, error) {
	rows, err := s.db.Query(ctx,
		`SELECT tm.team_id, tm.user_id, tm.role, tm.joined_at,
		        u.id, u.name, u.nickname, u.level, u.experience, u.points,
		        u.total_points, u.streak, u.last_login, u.is_admin
		 FROM team_members tm
		 JOIN users u ON u.id = tm.user_id
		 WHERE tm.team_id = $1
		 ORDER BY tm.role ASC, tm.joined_at ASC`, teamID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer rows.Close()

	out := []TeamMember{}
	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt,
			&m.User.ID, &m.User.Name, &m.User.Nickname, &m.User.Level, &m.User.Experience,
			&m.User.Points, &m.User.TotalPoints, &m.User.Streak, &m.User.LastLogin,
			&m.User.IsAdmin); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) teamDetail(ctx context.Context, t *Team) (*TeamDetail, error) {
	members, err := s.teamMembers(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	totalPoints := 0
	levelSum := 0
	for _, m := range members {
		totalPoints += m.User.TotalPoints
		levelSum += m.User.Level
	}
	avgLevel := 0.0
	if len(members) > 0 {
		avgLevel = round1(float64(levelSum) / float64(len(members)))
	}

	return &TeamDetail{
		Team:         *t,
		Members:      members,
		MemberCount:  len(members),
		TotalPoints:  totalPoints,
		AverageLevel: avgLevel,
	}, nil
}

func (s *Store) GetTeam(ctx context.Context, teamID string) (*TeamDetail, error) {
	t, err := scanTeam(s.db.QueryRow(ctx,
		"SELECT "+teamCols+" FROM teams WHERE id=$1", teamID))
	if err != nil {
		return nil, err
	}
	return s.teamDetail(ctx, t)
}

// TeamForUser resolves the user's team, or nil when the user is teamless.
func (s *Store) TeamForUser(ctx context.Context, userID string) (*TeamDetail, error) {
	t, err := scanTeam(s.db.QueryRow(ctx,
		`SELECT t.id, t.name, t.description, t.leader_id, t.max_members, t.created_at, t.updated_at
		 FROM team_members tm
		 JOIN teams t ON t.id = tm.team_id
		 WHERE tm.user_id = $1`, userID))
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.teamDetail(ctx, t)
}

// ListTeams returns every team with aggregates, best first.
func (s *Store) ListTeams(ctx context.Context) ([]TeamSummary, error) {
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
		 ORDER BY total_points DESC, member_count DESC`)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer rows.Close()

	return collectTeamSummaries(rows)
}

/* ===================== HANDLERS ===================== */

// requester pulls the acting user id from the X-User-Id header. Team routes
// identify the caller this way rather than through the session cookie.
func requester(c *gin.Context) string {
	return c.GetHeader("X-User-Id")
}

func ListTeams(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := store.ListTeams(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, teams)
	}
}

func CreateTeam(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := requester(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id required"})
			return
		}

		var req struct {
			Name        string `json:"name" binding:"required,max=20"`
			Description string `json:"description" binding:"max=100"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "team name must be 1-20 chars, description up to 100"})
			return
		}

		t, err := store.CreateTeam(c.Request.Context(), req.Name, req.Description, userID)
		if err != nil {
			fail(c, err)
			return
		}

		detail, err := store.teamDetail(c.Request.Context(), t)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "team": detail, "message": "team created"})
	}
}

func GetTeam(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := store.GetTeam(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func DeleteTeam(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := requester(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id required"})
			return
		}
		if err := store.DeleteTeam(c.Request.Context(), c.Param("id"), userID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "team deleted"})
	}
}

func JoinTeam(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := requester(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id required"})
			return
		}
		if err := store.JoinTeam(c.Request.Context(), c.Param("id"), userID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "joined team"})
	}
}

func LeaveTeam(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := requester(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id required"})
			return
		}
		deleted, err := store.LeaveTeam(c.Request.Context(), c.Param("id"), userID)
		if err != nil {
			fail(c, err)
			return
		}
		msg := "left team"
		if deleted {
			msg = "team disbanded"
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
	}
}

func UserTeam(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := store.TeamForUser(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		if detail == nil {
			c.JSON(http.StatusOK, nil)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}
