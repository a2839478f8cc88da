package internal

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteQuestCreditsRewardAtomically(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM quests WHERE id").
		WithArgs("q1").
		WillReturnRows(questRows().
			AddRow("q1", "Tidy your desk", "Clear the desk", "medium", 20, "chores", "🧹", nil))
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs("u1").
		WillReturnRows(userRows().
			AddRow("u1", "alice", "", 1, 90, 10, 50, 2, "2025-06-10", false))
	mock.ExpectExec("INSERT INTO user_quests").
		WithArgs("u1", "q1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE users SET points").
		WithArgs(30, 110, 2, 70, "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	q, u, err := store.CompleteQuest(context.Background(), "u1", "q1")
	require.NoError(t, err)

	assert.Equal(t, "q1", q.ID)
	assert.Equal(t, 30, u.Points)
	assert.Equal(t, 110, u.Experience)
	assert.Equal(t, 70, u.TotalPoints)
	assert.Equal(t, 2, u.Level)
	assert.Equal(t, levelFor(u.Experience), u.Level)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteQuestUnknownQuestRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM quests WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := store.CompleteQuest(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectQuestUnknownQuest(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO user_quests").
		WithArgs("u1", "ghost").
		WillReturnError(&pgErrForeignKey)

	err := store.SelectQuest(context.Background(), "u1", "ghost")
	assert.ErrorIs(t, err, ErrInvalidRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveQuestOnlyTouchesSelectedRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM user_quests WHERE user_id=.. AND quest_id=.. AND status='selected'").
		WithArgs("u1", "q1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, store.RemoveQuest(context.Background(), "u1", "q1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
