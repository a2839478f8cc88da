package internal

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const rewardCols = "id, title, description, points, type, duration, icon, created_by"

func scanReward(row interface{ Scan(dest ...any) error }) (*Reward, error) {
	var r Reward
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Points,
		&r.Type, &r.Duration, &r.Icon, &r.CreatedBy)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return &r, nil
}

/* ===================== STORE ===================== */

// ListRewards returns the catalog, cheapest first.
func (s *Store) ListRewards(ctx context.Context) ([]Reward, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+rewardCols+" FROM rewards ORDER BY points")
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

// RedeemRewards records one redemption per reward id and deducts the declared
// batch cost, all in one transaction.
func (s *Store) RedeemRewards(ctx context.Context, userID string, rewardIDs []string, cost int) (*User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	u, err := scanUser(tx.QueryRow(ctx,
		"SELECT "+userCols+" FROM users WHERE id=$1", userID))
	if err != nil {
		return nil, err
	}
	if u.Points < cost {
		return nil, ErrInsufficientPoints
	}

	for _, id := range rewardIDs {
		_, err = tx.Exec(ctx,
			"INSERT INTO user_rewards (user_id, reward_id) VALUES ($1,$2)",
			userID, id,
		)
		if err != nil {
			return nil, mapStoreErr(err)
		}
	}

	_, err = tx.Exec(ctx,
		"UPDATE users SET points = points - $1, updated_at=now() WHERE id=$2",
		cost, userID,
	)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	u.Points -= cost
	return u, nil
}

// UserRewardHistory reads the redemption log joined with the catalog, newest
// first.
func (s *Store) UserRewardHistory(ctx context.Context, userID string) ([]RewardUse, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.title, r.description, r.points, r.type, r.duration, r.icon, r.created_by, ur.used_at
		 FROM user_rewards ur
		 JOIN rewards r ON r.id = ur.reward_id
		 WHERE ur.user_id = $1
		 ORDER BY ur.used_at DESC`, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer rows.Close()

	out := []RewardUse{}
	for rows.Next() {
		var item RewardUse
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Points,
			&item.Type, &item.Duration, &item.Icon, &item.CreatedBy, &item.UsedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

/* ===================== HANDLERS ===================== */

func ListRewards(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rewards, err := store.ListRewards(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, rewards)
	}
}

func UserRewards(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		history, err := store.UserRewardHistory(ctx, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}

		spent := 0
		for _, use := range history {
			spent += use.Points
		}

		var userView gin.H
		if u, err := store.GetUser(ctx, c.Param("id")); err == nil {
			userView = gin.H{
				"id":          u.ID,
				"name":        u.Name,
				"points":      u.Points,
				"totalPoints": u.TotalPoints,
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"rewards": history,
			"user":    userView,
			"summary": gin.H{
				"totalRewardsUsed": len(history),
				"totalPointsSpent": spent,
			},
		})
	}
}

// RedeemRewards handles one checkout. rewardId may be a comma-delimited batch;
// points is the total cost of the batch.
func RedeemRewards(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RewardID string `json:"rewardId" binding:"required"`
			Points   int    `json:"points" binding:"min=0"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rewardId is required"})
			return
		}

		ids := []string{}
		for _, id := range strings.Split(req.RewardID, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rewardId is required"})
			return
		}

		u, err := store.RedeemRewards(c.Request.Context(), c.Param("id"), ids, req.Points)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":     "rewards redeemed",
			"user":        gin.H{"points": u.Points},
			"usedRewards": ids,
		})
	}
}
