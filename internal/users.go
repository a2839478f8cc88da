package internal

import (
	"context"
	"net/http"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userCols = "id, name, nickname, level, experience, points, total_points, streak, last_login, is_admin"

func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Nickname, &u.Level, &u.Experience,
		&u.Points, &u.TotalPoints, &u.Streak, &u.LastLogin, &u.IsAdmin)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return &u, nil
}

/* ===================== STORE ===================== */

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	return scanUser(s.db.QueryRow(ctx,
		"SELECT "+userCols+" FROM users WHERE id=$1", id))
}

// GetUserByName also returns the stored password so the login handler can run
// its comparison without the password ever entering a User value.
func (s *Store) GetUserByName(ctx context.Context, name string) (*User, string, error) {
	var u User
	var password string
	err := s.db.QueryRow(ctx,
		"SELECT "+userCols+", password FROM users WHERE name=$1", name,
	).Scan(&u.ID, &u.Name, &u.Nickname, &u.Level, &u.Experience,
		&u.Points, &u.TotalPoints, &u.Streak, &u.LastLogin, &u.IsAdmin, &password)
	if err != nil {
		return nil, "", mapStoreErr(err)
	}
	return &u, password, nil
}

func (s *Store) CreateUser(ctx context.Context, name, nickname, password string) (*User, error) {
	u := &User{
		ID:        uuid.NewString(),
		Name:      name,
		Nickname:  nickname,
		Level:     1,
		LastLogin: time.Now().Format(dateLayout),
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, name, nickname, password, last_login)
		 VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Name, u.Nickname, password, u.LastLogin,
	)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return u, nil
}

// UpdateUser applies a sparse set of column changes. Zero rows affected is not
// surfaced as an error.
func (s *Store) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	q := psql.Update("users").
		SetMap(fields).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})
	sql, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, sql, args...)
	return mapStoreErr(err)
}

/* ===================== HANDLERS ===================== */

func GetUser(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := store.GetUser(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// userPatch is the partial-update body for PUT /user/:id. Absent fields are
// left untouched.
type userPatch struct {
	Name        *string `json:"name"`
	Nickname    *string `json:"nickname"`
	Password    *string `json:"password"`
	Level       *int    `json:"level"`
	Experience  *int    `json:"experience"`
	Points      *int    `json:"points"`
	TotalPoints *int    `json:"totalPoints"`
	Streak      *int    `json:"streak"`
	LastLogin   *string `json:"lastLogin"`
}

func (p userPatch) columns() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Nickname != nil {
		m["nickname"] = *p.Nickname
	}
	if p.Password != nil {
		m["password"] = *p.Password
	}
	if p.Level != nil {
		m["level"] = *p.Level
	}
	if p.Experience != nil {
		m["experience"] = *p.Experience
	}
	if p.Points != nil {
		m["points"] = *p.Points
	}
	if p.TotalPoints != nil {
		m["total_points"] = *p.TotalPoints
	}
	if p.Streak != nil {
		m["streak"] = *p.Streak
	}
	if p.LastLogin != nil {
		m["last_login"] = *p.LastLogin
	}
	return m
}

func UpdateUser(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch userPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
			return
		}
		if err := store.UpdateUser(c.Request.Context(), c.Param("id"), patch.columns()); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "user updated"})
	}
}
