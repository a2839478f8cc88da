package internal

import (
	"context"
	"net/http"

	sq "github.com/Masterminds/squirrel"
	"github.com/gin-gonic/gin"
)

const questCols = "id, title, description, difficulty, points, category, icon, created_by"

func scanQuest(row interface{ Scan(dest ...any) error }) (*Quest, error) {
	var q Quest
	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.Difficulty,
		&q.Points, &q.Category, &q.Icon, &q.CreatedBy)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return &q, nil
}

/* ===================== STORE ===================== */

// ListQuests returns the catalog, optionally filtered by category.
func (s *Store) ListQuests(ctx context.Context, category string) ([]Quest, error) {
	q := psql.Select("id", "title", "description", "difficulty", "points", "category", "icon", "created_by").
		From("quests")
	if category != "" {
		q = q.Where(sq.Eq{"category": category}).OrderBy("title")
	} else {
		q = q.OrderBy("category", "title")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer rows.Close()

	out := []Quest{}
	for rows.Next() {
		var item Quest
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Difficulty,
			&item.Points, &item.Category, &item.Icon, &item.CreatedBy); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) GetQuest(ctx context.Context, id string) (*Quest, error) {
	return scanQuest(s.db.QueryRow(ctx,
		"SELECT "+questCols+" FROM quests WHERE id=$1", id))
}

// ListUserQuests returns the user's quests joined with the catalog, newest
// selection first, optionally filtered by status.
func (s *Store) ListUserQuests(ctx context.Context, userID, status string) ([]UserQuest, error) {
	q := psql.Select("q.id", "q.title", "q.description", "q.difficulty", "q.points",
		"q.category", "q.icon", "q.created_by", "uq.status", "uq.completed_at").
		From("user_quests uq").
		Join("quests q ON q.id = uq.quest_id").
		Where(sq.Eq{"uq.user_id": userID}).
		OrderBy("uq.created_at DESC")
	if status != "" {
		q = q.Where(sq.Eq{"uq.status": status})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer rows.Close()

	out := []UserQuest{}
	for rows.Next() {
		var item UserQuest
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Difficulty,
			&item.Points, &item.Category, &item.Icon, &item.CreatedBy,
			&item.Status, &item.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// SelectQuest adds a quest to the user's board. No uniqueness check: selecting
// the same quest twice produces two selected rows.
func (s *Store) SelectQuest(ctx context.Context, userID, questID string) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO user_quests (user_id, quest_id, status) VALUES ($1,$2,'selected')",
		userID, questID,
	)
	return mapStoreErr(err)
}

// RemoveQuest drops selected rows only; the completion log is untouched.
func (s *Store) RemoveQuest(ctx context.Context, userID, questID string) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM user_quests WHERE user_id=$1 AND quest_id=$2 AND status='selected'",
		userID, questID,
	)
	return mapStoreErr(err)
}

// CompleteQuest logs a completion and credits the reward in one transaction.
// A crash between the two statements must not leave points without a log row
// or the other way around.
func (s *Store) CompleteQuest(ctx context.Context, userID, questID string) (*Quest, *User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	q, err := scanQuest(tx.QueryRow(ctx,
		"SELECT "+questCols+" FROM quests WHERE id=$1", questID))
	if err != nil {
		return nil, nil, err
	}

	u, err := scanUser(tx.QueryRow(ctx,
		"SELECT "+userCols+" FROM users WHERE id=$1", userID))
	if err != nil {
		return nil, nil, err
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO user_quests (user_id, quest_id, status, completed_at) VALUES ($1,$2,'completed',now())",
		userID, questID,
	)
	if err != nil {
		return nil, nil, mapStoreErr(err)
	}

	applyQuestReward(u, q.Points)

	_, err = tx.Exec(ctx,
		"UPDATE users SET points=$1, experience=$2, level=$3, total_points=$4, updated_at=now() WHERE id=$5",
		u.Points, u.Experience, u.Level, u.TotalPoints, u.ID,
	)
	if err != nil {
		return nil, nil, mapStoreErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return q, u, nil
}

/* ===================== HANDLERS ===================== */

func ListQuests(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		quests, err := store.ListQuests(c.Request.Context(), c.Query("category"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, quests)
	}
}

func ListUserQuests(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		quests, err := store.ListUserQuests(c.Request.Context(), c.Param("id"), c.Query("status"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, quests)
	}
}

func SelectQuest(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			QuestID string `json:"questId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "questId is required"})
			return
		}
		if err := store.SelectQuest(c.Request.Context(), c.Param("id"), req.QuestID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "quest selected"})
	}
}

func RemoveQuest(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		questID := c.Query("questId")
		if questID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "questId is required"})
			return
		}
		if err := store.RemoveQuest(c.Request.Context(), c.Param("id"), questID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "quest removed"})
	}
}

func CompleteQuest(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			QuestID string `json:"questId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "questId is required"})
			return
		}

		q, u, err := store.CompleteQuest(c.Request.Context(), c.Param("id"), req.QuestID)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "quest completed",
			"quest":   q,
			"user": gin.H{
				"points":      u.Points,
				"totalPoints": u.TotalPoints,
				"experience":  u.Experience,
				"level":       u.Level,
			},
		})
	}
}
