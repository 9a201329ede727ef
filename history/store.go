// Package history keeps a SQLite ledger of gardening runs.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ryclarke/gardener/garden"
	"github.com/ryclarke/gardener/logging"
)

// ErrLocked is returned when another process holds the ledger.
var ErrLocked = errors.New("history database is locked")

// gormLogger wraps the gardener logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error",
			"error", err,
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else {
		logging.Logger.Debug("gorm query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	}
}

// newGormLogger traces queries only when debug logging is enabled.
func newGormLogger() logger.Interface {
	if logging.Logger.Enabled(context.Background(), slog.LevelDebug) {
		return (&gormLogger{}).LogMode(logger.Info)
	}

	return (&gormLogger{}).LogMode(logger.Silent)
}

// Store records gardening runs in SQLite.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Store, error) {
	// Expand home directory if present
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[1:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA foreign_keys=ON")

	if err := db.AutoMigrate(&RunModel{}, &RepositoryModel{}, &ActionModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", wrapLocked(err))
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// SaveRun records a run report along with every repository result and action.
func (s *Store) SaveRun(ctx context.Context, report *garden.Report) error {
	run := RunModel{
		ID:           report.RunID,
		Owner:        report.Owner,
		DryRun:       report.DryRun,
		StartedAt:    report.StartedAt.UTC(),
		FinishedAt:   report.FinishedAt.UTC(),
		Applied:      report.Applied(),
		Failed:       report.Failed() != nil,
		Error:        errorText(report.Err),
		Repositories: make([]RepositoryModel, 0, len(report.Repositories)),
	}

	for _, repo := range report.Repositories {
		if repo == nil {
			continue
		}

		model := RepositoryModel{
			Name:         repo.Repo.Name,
			PullRequests: repo.PullRequests,
			Failures:     len(repo.Failures),
			Error:        errorText(repo.Failed()),
			Actions:      make([]ActionModel, 0, len(repo.Applied)),
		}

		for _, action := range repo.Applied {
			model.Actions = append(model.Actions, ActionModel{
				Rule:        action.Rule,
				PullRequest: action.PullRequest,
				Kind:        string(action.Kind),
				Number:      action.Number,
				Label:       action.Label,
				Body:        action.Body,
			})
		}

		run.Repositories = append(run.Repositories, model)
	}

	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("failed to save run %s: %w", report.RunID, wrapLocked(err))
	}

	return nil
}

// Recent returns the latest runs, newest first, with their repository results.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunModel, error) {
	var runs []RunModel

	err := s.db.WithContext(ctx).
		Preload("Repositories", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("started_at desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", wrapLocked(err))
	}

	return runs, nil
}

// Actions returns the actions recorded for a run, in the order they were applied.
func (s *Store) Actions(ctx context.Context, runID string) ([]ActionModel, error) {
	var actions []ActionModel

	err := s.db.WithContext(ctx).
		Joins("JOIN run_repositories ON run_repositories.id = run_actions.repository_id").
		Where("run_repositories.run_id = ?", runID).
		Order("run_actions.id").
		Find(&actions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list actions of run %s: %w", runID, wrapLocked(err))
	}

	return actions, nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

// wrapLocked marks SQLite busy and locked errors with ErrLocked.
func wrapLocked(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
		return fmt.Errorf("%w: %w", ErrLocked, err)
	}

	return err
}
