// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/orehub/minetrack/internal/model"
	"github.com/orehub/minetrack/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateIssues(ctx context.Context, issues []*model.Issue) error {
	return queryCreateIssues(ctx, s.db, issues)
}

func (s *PostgresStore) GetIssue(ctx context.Context, workspaceID, id string) (*model.Issue, error) {
	return queryGetIssue(ctx, s.db, workspaceID, id)
}

func (s *PostgresStore) GetIssues(ctx context.Context, workspaceID string, ids []string) ([]*model.Issue, error) {
	return queryGetIssues(ctx, s.db, workspaceID, ids)
}

func (s *PostgresStore) TouchIssue(ctx context.Context, id string, at time.Time) error {
	return queryTouchIssue(ctx, s.db, id, at)
}

func (s *PostgresStore) SoftDeleteIssue(ctx context.Context, workspaceID, id string, at time.Time) error {
	return querySoftDeleteIssue(ctx, s.db, workspaceID, id, at)
}

func (s *PostgresStore) ListIssueIDs(ctx context.Context, q store.ListIssuesQuery) ([]string, error) {
	return queryListIssueIDs(ctx, s.db, q)
}

func (s *PostgresStore) CountIssues(ctx context.Context, workspaceID string) (int, error) {
	return queryCountIssues(ctx, s.db, workspaceID)
}

func (s *PostgresStore) CreatePropertyDefinition(ctx context.Context, def *model.PropertyDefinition) error {
	return queryCreatePropertyDefinition(ctx, s.db, def)
}

func (s *PostgresStore) GetPropertyDefinition(ctx context.Context, workspaceID, id string) (*model.PropertyDefinition, error) {
	return queryGetPropertyDefinition(ctx, s.db, workspaceID, id)
}

func (s *PostgresStore) ListPropertyDefinitions(ctx context.Context, workspaceID string) ([]*model.PropertyDefinition, error) {
	return queryListPropertyDefinitions(ctx, s.db, workspaceID)
}

func (s *PostgresStore) SoftDeletePropertyDefinition(ctx context.Context, workspaceID, id string, at time.Time) error {
	return querySoftDeletePropertyDefinition(ctx, s.db, workspaceID, id, at)
}

func (s *PostgresStore) InsertSingleValues(ctx context.Context, rows []model.SingleValue) error {
	return queryInsertSingleValues(ctx, s.db, rows)
}

func (s *PostgresStore) InsertMultiValues(ctx context.Context, rows []model.MultiValue) error {
	return queryInsertMultiValues(ctx, s.db, rows)
}

func (s *PostgresStore) UpsertSingleValue(ctx context.Context, row model.SingleValue) error {
	return queryUpsertSingleValue(ctx, s.db, row)
}

func (s *PostgresStore) AppendMultiValues(ctx context.Context, issueID, propertyID string, rows []model.MultiValue) error {
	return queryAppendMultiValues(ctx, s.db, issueID, propertyID, rows)
}

func (s *PostgresStore) ReplaceMultiValues(ctx context.Context, issueID, propertyID string, rows []model.MultiValue) error {
	return queryReplaceMultiValues(ctx, s.db, issueID, propertyID, rows)
}

func (s *PostgresStore) DeleteMultiValues(ctx context.Context, issueID, propertyID string) error {
	return queryDeleteMultiValues(ctx, s.db, issueID, propertyID)
}

func (s *PostgresStore) GetSingleValues(ctx context.Context, issueIDs []string) ([]model.SingleValue, error) {
	return queryGetSingleValues(ctx, s.db, issueIDs)
}

func (s *PostgresStore) GetMultiValues(ctx context.Context, issueIDs []string) ([]model.MultiValue, error) {
	return queryGetMultiValues(ctx, s.db, issueIDs)
}

func (s *PostgresStore) FindIssueIDsByPredicate(ctx context.Context, workspaceID string, pred model.ValuePredicate) ([]string, error) {
	return queryFindIssueIDsByPredicate(ctx, s.db, workspaceID, pred)
}

func (s *PostgresStore) EnsureCounter(ctx context.Context, entityName string) error {
	return queryEnsureCounter(ctx, s.db, entityName)
}

func (s *PostgresStore) GetCounter(ctx context.Context, entityName string) (int64, error) {
	return queryGetCounter(ctx, s.db, entityName)
}

func (s *PostgresStore) CompareAndSwapCounter(ctx context.Context, entityName string, old, new int64) (bool, error) {
	return queryCompareAndSwapCounter(ctx, s.db, entityName, old, new)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateIssues(ctx context.Context, issues []*model.Issue) error {
	return queryCreateIssues(ctx, s.tx, issues)
}

func (s *txStore) GetIssue(ctx context.Context, workspaceID, id string) (*model.Issue, error) {
	return queryGetIssue(ctx, s.tx, workspaceID, id)
}

func (s *txStore) GetIssues(ctx context.Context, workspaceID string, ids []string) ([]*model.Issue, error) {
	return queryGetIssues(ctx, s.tx, workspaceID, ids)
}

func (s *txStore) TouchIssue(ctx context.Context, id string, at time.Time) error {
	return queryTouchIssue(ctx, s.tx, id, at)
}

func (s *txStore) SoftDeleteIssue(ctx context.Context, workspaceID, id string, at time.Time) error {
	return querySoftDeleteIssue(ctx, s.tx, workspaceID, id, at)
}

func (s *txStore) ListIssueIDs(ctx context.Context, q store.ListIssuesQuery) ([]string, error) {
	return queryListIssueIDs(ctx, s.tx, q)
}

func (s *txStore) CountIssues(ctx context.Context, workspaceID string) (int, error) {
	return queryCountIssues(ctx, s.tx, workspaceID)
}

func (s *txStore) CreatePropertyDefinition(ctx context.Context, def *model.PropertyDefinition) error {
	return queryCreatePropertyDefinition(ctx, s.tx, def)
}

func (s *txStore) GetPropertyDefinition(ctx context.Context, workspaceID, id string) (*model.PropertyDefinition, error) {
	return queryGetPropertyDefinition(ctx, s.tx, workspaceID, id)
}

func (s *txStore) ListPropertyDefinitions(ctx context.Context, workspaceID string) ([]*model.PropertyDefinition, error) {
	return queryListPropertyDefinitions(ctx, s.tx, workspaceID)
}

func (s *txStore) SoftDeletePropertyDefinition(ctx context.Context, workspaceID, id string, at time.Time) error {
	return querySoftDeletePropertyDefinition(ctx, s.tx, workspaceID, id, at)
}

func (s *txStore) InsertSingleValues(ctx context.Context, rows []model.SingleValue) error {
	return queryInsertSingleValues(ctx, s.tx, rows)
}

func (s *txStore) InsertMultiValues(ctx context.Context, rows []model.MultiValue) error {
	return queryInsertMultiValues(ctx, s.tx, rows)
}

func (s *txStore) UpsertSingleValue(ctx context.Context, row model.SingleValue) error {
	return queryUpsertSingleValue(ctx, s.tx, row)
}

func (s *txStore) AppendMultiValues(ctx context.Context, issueID, propertyID string, rows []model.MultiValue) error {
	return queryAppendMultiValues(ctx, s.tx, issueID, propertyID, rows)
}

func (s *txStore) ReplaceMultiValues(ctx context.Context, issueID, propertyID string, rows []model.MultiValue) error {
	return queryReplaceMultiValues(ctx, s.tx, issueID, propertyID, rows)
}

func (s *txStore) DeleteMultiValues(ctx context.Context, issueID, propertyID string) error {
	return queryDeleteMultiValues(ctx, s.tx, issueID, propertyID)
}

func (s *txStore) GetSingleValues(ctx context.Context, issueIDs []string) ([]model.SingleValue, error) {
	return queryGetSingleValues(ctx, s.tx, issueIDs)
}

func (s *txStore) GetMultiValues(ctx context.Context, issueIDs []string) ([]model.MultiValue, error) {
	return queryGetMultiValues(ctx, s.tx, issueIDs)
}

func (s *txStore) FindIssueIDsByPredicate(ctx context.Context, workspaceID string, pred model.ValuePredicate) ([]string, error) {
	return queryFindIssueIDsByPredicate(ctx, s.tx, workspaceID, pred)
}

func (s *txStore) EnsureCounter(ctx context.Context, entityName string) error {
	return queryEnsureCounter(ctx, s.tx, entityName)
}

func (s *txStore) GetCounter(ctx context.Context, entityName string) (int64, error) {
	return queryGetCounter(ctx, s.tx, entityName)
}

func (s *txStore) CompareAndSwapCounter(ctx context.Context, entityName string, old, new int64) (bool, error) {
	return queryCompareAndSwapCounter(ctx, s.tx, entityName, old, new)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
