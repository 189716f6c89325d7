package db

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter/internal/db/migrations"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	err      error
	deadline bool
}

func (f *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	err := WithTx(context.Background(), b, time.Second, func(context.Context, pgx.Tx) error { return nil })
	require.NoError(t, err)
	assert.True(t, b.tx.committed)
	assert.False(t, b.tx.rolledBack)
	assert.True(t, b.deadline, "begin should run under the acquire timeout")
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")
	err := WithTx(context.Background(), b, 0, func(context.Context, pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, b.tx.committed)
	assert.True(t, b.tx.rolledBack)
	assert.False(t, b.deadline)
}

func TestWithTx_RollsBackAndRethrowsPanic(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	assert.PanicsWithValue(t, "kaboom", func() {
		_ = WithTx(context.Background(), b, 0, func(context.Context, pgx.Tx) error { panic("kaboom") })
	})
	assert.True(t, b.tx.rolledBack)
	assert.False(t, b.tx.committed)
}

func TestWithTx_BeginError(t *testing.T) {
	b := &fakeBeginner{err: context.DeadlineExceeded}
	called := false
	err := WithTx(context.Background(), b, time.Millisecond, func(context.Context, pgx.Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
}

func TestWithTx_CommitError(t *testing.T) {
	commitErr := errors.New("connection reset")
	b := &fakeBeginner{tx: &fakeTx{commitErr: commitErr}}
	err := WithTx(context.Background(), b, 0, func(context.Context, pgx.Tx) error { return nil })
	require.ErrorIs(t, err, commitErr)
}

const gooseVersionQuery = `SELECT version_id, is_applied from goose_db_version ORDER BY id DESC`

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func versionRows(versions ...int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"version_id", "is_applied"})
	for _, v := range versions {
		rows.AddRow(v, true)
	}
	return rows
}

func expectMigration(mock sqlmock.Sqlmock, version int64, statements ...string) {
	mock.ExpectBegin()
	for _, stmt := range statements {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO goose_db_version")).
		WithArgs(version, true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}

func TestRunMigrations_FreshDatabase(t *testing.T) {
	db, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(gooseVersionQuery)).
		WillReturnError(errors.New(`relation "goose_db_version" does not exist`))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE goose_db_version")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO goose_db_version")).
		WithArgs(int64(0), true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(gooseVersionQuery)).WillReturnRows(versionRows(0))

	expectMigration(mock, 1, "CREATE TABLE subscriptions", "CREATE INDEX subscriptions_status_idx")
	expectMigration(mock, 2, "CREATE TABLE subscription_tokens", "CREATE INDEX subscription_tokens_subscriber_id_idx")
	expectMigration(mock, 3, "CREATE TABLE users")

	require.NoError(t, RunMigrations(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UpToDate(t *testing.T) {
	db, mock := newSQLMock(t)

	// version check, listado de versiones y version final: ninguna migracion se ejecuta.
	for i := 0; i < 3; i++ {
		mock.ExpectQuery(regexp.QuoteMeta(gooseVersionQuery)).WillReturnRows(versionRows(3, 2, 1, 0))
	}

	require.NoError(t, RunMigrations(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_FailedStatementRollsBack(t *testing.T) {
	db, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(gooseVersionQuery)).WillReturnRows(versionRows(0))
	mock.ExpectQuery(regexp.QuoteMeta(gooseVersionQuery)).WillReturnRows(versionRows(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE subscriptions")).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := RunMigrations(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationsAreEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"00001_create_subscriptions_table.sql",
		"00002_create_subscription_tokens_table.sql",
		"00003_create_users_table.sql",
	}, files)
}
