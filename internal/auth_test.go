package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func credentialRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "nickname", "level", "experience", "points",
		"total_points", "streak", "last_login", "is_admin", "password",
	})
}

func authRouter(store *Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", Login(store, "secret"))
	r.POST("/register", Register(store))
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLoginWrongPassword(t *testing.T) {
	store, mock := newMockStore(t)
	today := time.Now().Format(dateLayout)

	mock.ExpectQuery("FROM users WHERE name").
		WithArgs("alice").
		WillReturnRows(credentialRows().
			AddRow("u1", "alice", "", 1, 0, 0, 0, 1, today, false, "hunter2"))

	w := postJSON(authRouter(store), "/login", `{"name":"alice","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginFirstTimeRegisters(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM users WHERE name").
		WithArgs("newbie").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	w := postJSON(authRouter(store), "/login", `{"name":"newbie","password":"pw"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newbie")
	assert.Contains(t, w.Header().Get("Set-Cookie"), cookieName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginAppliesDailyBonus(t *testing.T) {
	store, mock := newMockStore(t)
	yesterday := time.Now().AddDate(0, 0, -1).Format(dateLayout)

	mock.ExpectQuery("FROM users WHERE name").
		WithArgs("alice").
		WillReturnRows(credentialRows().
			AddRow("u1", "alice", "", 1, 0, 10, 40, 2, yesterday, false, ""))
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	w := postJSON(authRouter(store), "/login", `{"name":"alice"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"streak":3`)
	assert.Contains(t, w.Body.String(), `"points":15`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateName(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgErrUnique)

	w := postJSON(authRouter(store), "/register", `{"name":"alice"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
