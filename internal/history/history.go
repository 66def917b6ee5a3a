// Package history keeps the most recent generations in a local SQLite file.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DefaultLimit is the number of items kept after each save.
const DefaultLimit = 10

// ErrNotFound is returned when no item has the requested ID.
var ErrNotFound = errors.New("history item not found")

// Item is one saved generation. Data holds the full result as JSON.
type Item struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Type      string         `gorm:"column:type;not null;index" json:"type"`
	Subtype   string         `gorm:"column:subtype" json:"subtype"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
}

func (Item) TableName() string { return "history_item" }

// Store reads and writes history items.
type Store struct {
	db    *gorm.DB
	limit int
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return New(db)
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Item{}); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &Store{db: db, limit: DefaultLimit}, nil
}

// SetLimit changes how many items are kept. Values below one are ignored.
func (s *Store) SetLimit(n int) {
	if n > 0 {
		s.limit = n
	}
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save inserts item and drops everything beyond the newest limit items.
// A missing ID or CreatedAt is filled in.
func (s *Store) Save(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("save history: %w", err)
		}

		keep := tx.Model(&Item{}).Select("id").Order("created_at DESC").Limit(s.limit)
		res := tx.Where("id NOT IN (?)", keep).Delete(&Item{})
		if res.Error != nil {
			return fmt.Errorf("prune history: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			log.Debug().Int64("removed", res.RowsAffected).Int("limit", s.limit).Msg("pruned history")
		}
		return nil
	})
}

// List returns all items, newest first.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}

// Get returns the item with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	var item Item
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return &item, nil
}

// Delete removes one item.
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Item{})
	if res.Error != nil {
		return fmt.Errorf("delete history: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every item.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&Item{}).Error; err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
