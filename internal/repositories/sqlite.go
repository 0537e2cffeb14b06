package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviweb/internal/shared"
	"github.com/mattn/go-sqlite3"
)

// SQLiteDataManager implements [models.DataManager] and [models.ReviewStore] over the
// User, Movie and Review tables. IDs come from AUTOINCREMENT, so NextUserID and NextMovieID
// report [models.AutoID] instead of a concrete value.
type SQLiteDataManager struct {
	db     *sql.DB
	logger *log.Logger
}

// NewSQLiteDataManager wraps an already migrated database.
func NewSQLiteDataManager(db *sql.DB, logger *log.Logger) *SQLiteDataManager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SQLiteDataManager{db: db, logger: shared.WithLogger(logger, "backend", shared.BackendSQLite)}
}

// OpenSQLiteDataManager opens the database at path, applies pending migrations and returns a ready manager.
func OpenSQLiteDataManager(ctx context.Context, path string, logger *log.Logger) (*SQLiteDataManager, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStorage, err)
	}

	applied, err := shared.RunMigrations(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", shared.ErrStorage, err)
	}

	m := NewSQLiteDataManager(db, logger)
	if applied > 0 {
		m.logger.Info("applied migrations", "count", applied, "path", path)
	}
	return m, nil
}

// Name returns the backend name.
func (m *SQLiteDataManager) Name() string { return shared.BackendSQLite }

// DB exposes the underlying connection pool.
func (m *SQLiteDataManager) DB() *sql.DB { return m.db }

// Close closes the connection pool.
func (m *SQLiteDataManager) Close() error {
	return m.db.Close()
}

// fail logs a driver error and wraps it as a storage failure.
func (m *SQLiteDataManager) fail(op string, err error, kv ...any) error {
	m.logger.Error("storage operation failed", append([]any{"op", op, "error", err}, kv...)...)
	return fmt.Errorf("%w: failed to %s: %w", shared.ErrStorage, op, err)
}

// isForeignKeyViolation reports whether err is a SQLite foreign key constraint failure.
func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func rowsAffected(result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}
