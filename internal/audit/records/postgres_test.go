package records

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const insertQuery = `(?s)^INSERT\s+INTO\s+audit_records\s*\(id,\s*username,\s*operation,\s*client_timestamp,\s*received_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`

const selectQuery = `(?s)^SELECT\s+id,\s*username,\s*operation,\s*client_timestamp,\s*received_at\s+FROM\s+audit_records\s+ORDER\s+BY\s+received_at\s+DESC\s+LIMIT\s+\$1\s*$`

func TestPostgresSave_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(insertQuery).
		WithArgs("id-1", "alice", "PUBLISH f.txt", "01/05/2024 10:00:00", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &Record{
		ID:              "id-1",
		User:            "alice",
		Operation:       "PUBLISH f.txt",
		ClientTimestamp: "01/05/2024 10:00:00",
		ReceivedAt:      at,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSave_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(insertQuery).WillReturnError(errors.New("db down"))

	err := repo.Save(context.Background(), &Record{ID: "id-1", User: "alice", Operation: "REGISTER"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestPostgresList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "username", "operation", "client_timestamp", "received_at"}).
		AddRow("id-2", "bob", "CONNECT", "ts2", at.Add(time.Second)).
		AddRow("id-1", "alice", "REGISTER", "ts1", at)
	mock.ExpectQuery(selectQuery).WithArgs(2).WillReturnRows(rows)

	got, err := repo.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{ID: "id-2", User: "bob", Operation: "CONNECT", ClientTimestamp: "ts2", ReceivedAt: at.Add(time.Second)},
		{ID: "id-1", User: "alice", Operation: "REGISTER", ClientTimestamp: "ts1", ReceivedAt: at},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList_Unlimited(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQuery).
		WithArgs(nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "operation", "client_timestamp", "received_at"}))

	got, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPostgresList_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQuery).WillReturnError(sql.ErrConnDone)

	_, err := repo.List(context.Background(), 5)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestRunMigrations_UsesGooseSeam(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, d *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, d *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	err = RunMigrations(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations: boom")
}
