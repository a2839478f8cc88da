package internal

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

/* ===================== STORE ===================== */

func (s *Store) CreateQuest(ctx context.Context, q *Quest) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO quests (id, title, description, difficulty, points, category, icon, created_by)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		q.ID, q.Title, q.Description, q.Difficulty, q.Points, q.Category, q.Icon, q.CreatedBy,
	)
	return mapStoreErr(err)
}

func (s *Store) UpdateQuest(ctx context.Context, q *Quest) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE quests SET title=$1, description=$2, difficulty=$3, points=$4, category=$5, icon=$6
		 WHERE id=$7`,
		q.Title, q.Description, q.Difficulty, q.Points, q.Category, q.Icon, q.ID,
	)
	if err != nil {
		return mapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteQuest removes a catalog entry; its user_quests rows cascade away.
func (s *Store) DeleteQuest(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM quests WHERE id=$1", id)
	if err != nil {
		return mapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateReward(ctx context.Context, r *Reward) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO rewards (id, title, description, points, type, duration, icon, created_by)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.Title, r.Description, r.Points, r.Type, r.Duration, r.Icon, r.CreatedBy,
	)
	return mapStoreErr(err)
}

func (s *Store) UpdateReward(ctx context.Context, r *Reward) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE rewards SET title=$1, description=$2, points=$3, type=$4, duration=$5, icon=$6
		 WHERE id=$7`,
		r.Title, r.Description, r.Points, r.Type, r.Duration, r.Icon, r.ID,
	)
	if err != nil {
		return mapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteReward(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM rewards WHERE id=$1", id)
	if err != nil {
		return mapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRewardsByCreator returns only the catalog entries a given admin owns,
// newest first.
func (s *Store) ListRewardsByCreator(ctx context.Context, creatorID string) ([]Reward, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+rewardCols+" FROM rewards WHERE created_by=$1 ORDER BY created_at DESC",
		creatorID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer rows.Close()

	out := []Reward{}
	for rows.Next() {
		var item Reward
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Points,
			&item.Type, &item.Duration, &item.Icon, &item.CreatedBy); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

/* ===================== HANDLERS ===================== */

type questForm struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Difficulty  string `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Points      int    `json:"points" binding:"required,gt=0"`
	Category    string `json:"category" binding:"required"`
	Icon        string `json:"icon" binding:"required"`
}

type rewardForm struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Points      int    `json:"points" binding:"required,gt=0"`
	Type        string `json:"type" binding:"required,oneof=youtube game snack money"`
	Duration    int    `json:"duration" binding:"min=0"`
	Icon        string `json:"icon" binding:"required"`
}

func AdminListQuests(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		quests, err := store.ListQuests(c.Request.Context(), "")
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, quests)
	}
}

func AdminCreateQuest(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form questForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		owner := adminID(c)
		q := &Quest{
			ID:          uuid.NewString(),
			Title:       form.Title,
			Description: form.Description,
			Difficulty:  form.Difficulty,
			Points:      form.Points,
			Category:    form.Category,
			Icon:        form.Icon,
			CreatedBy:   &owner,
		}
		if err := store.CreateQuest(c.Request.Context(), q); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "quest created", "quest": q})
	}
}

func AdminUpdateQuest(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form questForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		q := &Quest{
			ID:          c.Param("id"),
			Title:       form.Title,
			Description: form.Description,
			Difficulty:  form.Difficulty,
			Points:      form.Points,
			Category:    form.Category,
			Icon:        form.Icon,
		}
		if err := store.UpdateQuest(c.Request.Context(), q); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "quest updated", "quest": q})
	}
}

func AdminDeleteQuest(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.DeleteQuest(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "quest deleted"})
	}
}

func AdminListRewards(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rewards, err := store.ListRewardsByCreator(c.Request.Context(), adminID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, rewards)
	}
}

func AdminCreateReward(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form rewardForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		owner := adminID(c)
		r := &Reward{
			ID:          uuid.NewString(),
			Title:       form.Title,
			Description: form.Description,
			Points:      form.Points,
			Type:        form.Type,
			Duration:    form.Duration,
			Icon:        form.Icon,
			CreatedBy:   &owner,
		}
		if err := store.CreateReward(c.Request.Context(), r); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "reward created", "reward": r})
	}
}

func AdminUpdateReward(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form rewardForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		r := &Reward{
			ID:          c.Param("id"),
			Title:       form.Title,
			Description: form.Description,
			Points:      form.Points,
			Type:        form.Type,
			Duration:    form.Duration,
			Icon:        form.Icon,
		}
		if err := store.UpdateReward(c.Request.Context(), r); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "reward updated", "reward": r})
	}
}

func AdminDeleteReward(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.DeleteReward(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "reward deleted"})
	}
}
