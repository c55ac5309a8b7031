package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankithlg/PeerBridge/internal/models"
)

func newConnectionMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func connectionColumns() []string {
	return []string{"id", "sender_id", "receiver_id", "status", "created_at"}
}

func TestConnectionRepositoryFindLatestBetween(t *testing.T) {
	db, mock, cleanup := newConnectionMock(t)
	defer cleanup()
	repo := NewConnectionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(connectionColumns()).
		AddRow("req-2", "bob", "alice", "PENDING", now)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC LIMIT 1")).
		WithArgs("alice", "bob").
		WillReturnRows(rows)

	req, err := repo.FindLatestBetween(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "req-2", req.ID)
	assert.Equal(t, models.ConnectionPending, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepositoryFindLatestBetweenNoHistory(t *testing.T) {
	db, mock, cleanup := newConnectionMock(t)
	defer cleanup()
	repo := NewConnectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC LIMIT 1")).
		WithArgs("alice", "bob").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindLatestBetween(context.Background(), "alice", "bob")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newConnectionMock(t)
	defer cleanup()
	repo := NewConnectionRepository(db)

	mock.ExpectExec("INSERT INTO connection_requests").
		WithArgs(sqlmock.AnyArg(), "alice", "bob", "PENDING", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := &models.ConnectionRequest{SenderID: "alice", ReceiverID: "bob", Status: models.ConnectionPending}
	err := repo.Create(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.False(t, req.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newConnectionMock(t)
	defer cleanup()
	repo := NewConnectionRepository(db)

	ts := time.Now().UTC()
	rows := sqlmock.NewRows(connectionColumns()).
		AddRow("req-1", "alice", "bob", "ACCEPTED", ts)
	mock.ExpectQuery("UPDATE connection_requests SET status").
		WithArgs("req-1", "ACCEPTED", ts, "PENDING").
		WillReturnRows(rows)

	req, err := repo.UpdateStatus(context.Background(), "req-1", models.ConnectionAccepted, ts)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepositoryUpdateStatusAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newConnectionMock(t)
	defer cleanup()
	repo := NewConnectionRepository(db)

	ts := time.Now().UTC()
	mock.ExpectQuery("UPDATE connection_requests SET status").
		WithArgs("req-1", "REJECTED", ts, "PENDING").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), "req-1", models.ConnectionRejected, ts)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepositoryDeleteBetween(t *testing.T) {
	db, mock, cleanup := newConnectionMock(t)
	defer cleanup()
	repo := NewConnectionRepository(db)

	mock.ExpectExec("DELETE FROM connection_requests").
		WithArgs("alice", "bob").
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteBetween(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepositoryExistsAccepted(t *testing.T) {
	db, mock, cleanup := newConnectionMock(t)
	defer cleanup()
	repo := NewConnectionRepository(db)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("alice", "bob", "ACCEPTED").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(true))

	accepted, err := repo.ExistsAccepted(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepositoryListForStudent(t *testing.T) {
	db, mock, cleanup := newConnectionMock(t)
	defer cleanup()
	repo := NewConnectionRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "sender_id", "receiver_id", "status", "created_at",
		"counterpart.id", "counterpart.email", "counterpart.name",
		"counterpart.bio", "counterpart.preferred_mode", "counterpart.available_time",
		"incoming",
	}).AddRow("req-1", "bob", "alice", "PENDING", time.Now(),
		"bob", "bob@example.com", "Bob", "", "online", "evenings", true)
	mock.ExpectQuery("FROM connection_requests cr").
		WithArgs("alice").
		WillReturnRows(rows)

	list, err := repo.ListForStudent(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bob", list[0].Counterpart.Name)
	assert.True(t, list[0].Incoming)
	assert.NoError(t, mock.ExpectationsWereMet())
}
