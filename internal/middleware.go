package internal

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const cookieName = "questboard_session"

type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func signSession(userID, secret string) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "questboard",
		},
	})
	return tok.SignedString([]byte(secret))
}

// Auth resolves the session cookie into a user id on the context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(cookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		tok, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad token"})
			return
		}

		cl, ok := tok.Claims.(*sessionClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad claims"})
			return
		}

		c.Set("uid", cl.UserID)
		c.Next()
	}
}

// RequireAdmin gates the admin group. The Authorization header carries a bare
// user id ("Bearer <userId>") which is resolved to a user row and checked for
// the admin flag.
func RequireAdmin(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		userID := strings.TrimPrefix(authz, "Bearer ")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		u, err := store.GetUser(c.Request.Context(), userID)
		if errors.Is(err, ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		if err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		if !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin only"})
			return
		}

		c.Set("adminID", u.ID)
		c.Next()
	}
}

func uid(c *gin.Context) string {
	v, _ := c.Get("uid")
	s, _ := v.(string)
	return s
}

func adminID(c *gin.Context) string {
	v, _ := c.Get("adminID")
	s, _ := v.(string)
	return s
}
