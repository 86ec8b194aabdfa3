package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrUnavailable means the backing database could not be reached or the
	// store has been closed.
	ErrUnavailable = errors.New("chat store unavailable")
	// ErrCorrupt means a stored history blob exists but cannot be decoded.
	// Distinct from "chat never existed", which is an empty history, because
	// it indicates data loss.
	ErrCorrupt = errors.New("stored chat history is corrupt")
)

// Store owns the chats table. All per-id read-modify-write sequences run
// inside a transaction and behind a single write mutex; one local user
// session writes at a time, and sqlite has a single writer anyway.
type Store struct {
	db *gorm.DB

	mu     sync.Mutex
	closed bool
}

// Open connects to the sqlite database at path and ensures the schema
// exists. Calling it again on the same path is harmless.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(gormsqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := db.AutoMigrate(&ChatRecord{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", ErrUnavailable, err)
	}
	return &Store{db: db}, nil
}

// NewChatID mints a fresh chat identifier. No store I/O: ids are speculative
// and only hit the database when the first exchange is persisted.
func NewChatID() string {
	return uuid.NewString()
}

func (s *Store) conn() (*gorm.DB, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.db == nil {
		return nil, fmt.Errorf("%w: store is closed", ErrUnavailable)
	}
	return s.db, nil
}

// UpsertChat inserts the chat or replaces its name and history. created_at
// is fixed by the first successful write for an id and preserved on every
// later one; updated_at moves on each write.
func (s *Store) UpsertChat(ctx context.Context, id string, name *string, history []Turn) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if history == nil {
		history = []Turn{}
	}
	blob, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		rec := ChatRecord{
			ID:        id,
			Name:      name,
			History:   string(blob),
			CreatedAt: now,
			UpdatedAt: now,
		}

		var existing ChatRecord
		err := tx.Select("created_at").Where("id = ?", id).First(&existing).Error
		switch {
		case err == nil:
			rec.CreatedAt = existing.CreatedAt
			return tx.Save(&rec).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&rec).Error
		default:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	})
}

// ListChats returns summaries for every chat, most recently active first.
func (s *Store) ListChats(ctx context.Context) ([]Summary, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []Summary
	if err := db.WithContext(ctx).
		Model(&ChatRecord{}).
		Select("id", "name", "updated_at").
		Order("updated_at DESC, id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return rows, nil
}

// GetHistory returns the stored turn sequence. A chat that does not exist or
// has nothing stored yields an empty slice, not an error; a blob that exists
// but cannot be decoded yields ErrCorrupt.
func (s *Store) GetHistory(ctx context.Context, id string) ([]Turn, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rec ChatRecord
	err = db.WithContext(ctx).Select("history").Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if rec.History == "" {
		return []Turn{}, nil
	}
	var turns []Turn
	if err := json.Unmarshal([]byte(rec.History), &turns); err != nil {
		return nil, fmt.Errorf("chat %s: %w: %v", id, ErrCorrupt, err)
	}
	return turns, nil
}

// GetName returns the stored display name, or nil when the chat does not
// exist or has never been named.
func (s *Store) GetName(ctx context.Context, id string) (*string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rec ChatRecord
	err = db.WithContext(ctx).Select("name").Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return rec.Name, nil
}

// DeleteChat removes the chat. Deleting an id that was never persisted is a
// no-op that reports zero rows, not an error.
func (s *Store) DeleteChat(ctx context.Context, id string) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&ChatRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}

// Close releases the underlying connection. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.db == nil {
		return nil
	}
	s.closed = true
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return sqlDB.Close()
}
