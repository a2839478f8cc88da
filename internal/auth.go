package internal

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

func Login(store *Store, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name     string `json:"name" binding:"required"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		ctx := c.Request.Context()

		u, stored, err := store.GetUserByName(ctx, req.Name)
		if errors.Is(err, ErrNotFound) {
			// First login doubles as registration.
			u, err = store.CreateUser(ctx, req.Name, "", req.Password)
			stored = req.Password
		}
		if err != nil {
			fail(c, err)
			return
		}

		// Passwords are optional; when one is set it is compared verbatim.
		if stored != "" && req.Password != stored {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if applyAttendance(u, time.Now()) {
			err = store.UpdateUser(ctx, u.ID, map[string]any{
				"points":       u.Points,
				"total_points": u.TotalPoints,
				"streak":       u.Streak,
				"last_login":   u.LastLogin,
			})
			if err != nil {
				fail(c, err)
				return
			}
		}

		tok, err := signSession(u.ID, secret)
		if err != nil {
			fail(c, err)
			return
		}
		secure := os.Getenv("COOKIE_SECURE") == "1"
		c.SetCookie(cookieName, tok, 86400, "/", "", secure, true)

		c.JSON(http.StatusOK, gin.H{"success": true, "user": u, "message": "login ok"})
	}
}

func Register(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name     string `json:"name" binding:"required"`
			Nickname string `json:"nickname"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		u, err := store.CreateUser(c.Request.Context(), req.Name, req.Nickname, req.Password)
		if errors.Is(err, ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "name already taken"})
			return
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": u, "message": "registered"})
	}
}

func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(cookieName, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func Me(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := store.GetUser(c.Request.Context(), uid(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}
