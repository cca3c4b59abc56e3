// Package history persists evaluations to a SQLite database.
package history

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/tevino/abool/v2"
	"github.com/zeebo/blake3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandrolain/gostringed/pkg/types"
)

// ErrPruneRunning is returned by Prune while another prune is in progress.
var ErrPruneRunning = errors.New("history: prune already running")

// Store records evaluations.
type Store struct {
	db      *gorm.DB
	session string
	now     func() time.Time
	pruning *abool.AtomicBool
}

// Open opens (creating if needed) the history database at path.
// Use ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise open its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}

	return &Store{
		db:      db,
		session: uuid.NewString(),
		now:     time.Now,
		pruning: abool.New(),
	}, nil
}

// SessionID returns the identifier attached to entries recorded by s.
func (s *Store) SessionID() string {
	return s.session
}

// Record stores one evaluation. evalErr is the evaluation failure, if any;
// only its code is kept.
func (s *Store) Record(ctx context.Context, program, input, output string, evalErr error) error {
	entry := &Entry{
		SessionID:   s.session,
		Fingerprint: Fingerprint(program),
		Program:     program,
		Input:       input,
		Output:      output,
		ErrorCode:   errorCode(evalErr),
		CreatedAt:   s.now().UnixNano(),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Frequent returns the most evaluated programs, most frequent first.
func (s *Store) Frequent(ctx context.Context, limit int) ([]ProgramCount, error) {
	var counts []ProgramCount
	err := s.db.WithContext(ctx).Model(&Entry{}).
		Select("fingerprint, MAX(program) AS program, COUNT(*) AS count").
		Group("fingerprint").
		Order("count DESC, fingerprint").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// Prune marks entries older than olderThan as deleted and returns how many
// were marked. Concurrent calls fail with ErrPruneRunning.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if !s.pruning.SetToIf(false, true) {
		return 0, ErrPruneRunning
	}
	defer s.pruning.UnSet()

	cutoff := s.now().Add(-olderThan).UnixNano()
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune history: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Purge permanently removes the entries marked as deleted.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Unscoped().Where("deleted = ?", 1).Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge history: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Fingerprint returns the hex-encoded BLAKE3 hash of program.
func Fingerprint(program string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(program))
	return hex.EncodeToString(h.Sum(nil))
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var serr *types.Error
	if errors.As(err, &serr) {
		return string(serr.Code)
	}
	return "error"
}
