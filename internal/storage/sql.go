package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SQL keeps every key as one row of kv_records. Works on postgres and sqlite.
type SQL struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db, now: time.Now}
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	var row struct {
		Value string
	}
	result := s.db.WithContext(ctx).Raw(`
		SELECT value
		FROM kv_records
		WHERE record_key = ?
		LIMIT 1
	`, key).Scan(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("read %s: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return []byte(row.Value), nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if s.db == nil {
		return ErrUnavailable
	}
	err := s.db.WithContext(ctx).Exec(`
		INSERT INTO kv_records (record_key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (record_key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), s.now().UTC()).Error
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if s.db == nil {
		return ErrUnavailable
	}
	if err := s.db.WithContext(ctx).Exec(`DELETE FROM kv_records WHERE record_key = ?`, key).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
