package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminRouter(store *Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ping", RequireAdmin(store), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"adminId": adminID(c)})
	})
	return r
}

func TestRequireAdmin(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		store, mock := newMockStore(t)
		r := adminRouter(store)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("FROM users WHERE id").
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)
		r := adminRouter(store)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer ghost")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-admin user", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("FROM users WHERE id").
			WithArgs("u1").
			WillReturnRows(userRows().
				AddRow("u1", "alice", "", 1, 0, 0, 0, 0, "2026-08-28", false))
		r := adminRouter(store)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer u1")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("admin passes through", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("FROM users WHERE id").
			WithArgs("boss").
			WillReturnRows(userRows().
				AddRow("boss", "dana", "", 3, 40, 10, 300, 2, "2026-08-28", true))
		r := adminRouter(store)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer boss")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "boss")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionRoundTrip(t *testing.T) {
	tok, err := signSession("u1", "secret")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth("secret"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": uid(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: tok})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestAuthRejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth("secret"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("no cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := signSession("u1", "other")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: tok})
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
