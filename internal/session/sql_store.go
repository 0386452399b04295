package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const sqlSessionRowID = 1

type sessionRow struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"not null"`
	ExpiresAt time.Time
	UpdatedAt time.Time
}

func (sessionRow) TableName() string {
	return "sessions"
}

// SQLStore keeps the session in a single-row table.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore migrates the sessions table and returns a store backed by db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("session database must not be nil")
	}
	if err := db.AutoMigrate(&sessionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sessions table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Load(ctx context.Context) (Record, error) {
	var row sessionRow
	err := s.db.WithContext(ctx).First(&row, sqlSessionRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNoSession
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load session: %w", err)
	}
	return Record{Token: row.Token, ExpiresAt: row.ExpiresAt}, nil
}

func (s *SQLStore) Save(ctx context.Context, record Record) error {
	row := sessionRow{ID: sqlSessionRowID, Token: record.Token, ExpiresAt: record.ExpiresAt}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&sessionRow{}, sqlSessionRowID).Error; err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
