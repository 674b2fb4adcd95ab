package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Entry is one stored record.
type Entry struct {
	Key       string `gorm:"column:storage_key;primaryKey;size:255"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "cart_storage_entries"
}

// Conn is the slice of db.Client the SQL store needs.
type Conn interface {
	DB() *gorm.DB
	AutoMigrate(ctx context.Context, models ...any) error
}

// SQL is a KV on a single gorm-managed table.
type SQL struct {
	conn Conn
	db   *gorm.DB
}

func NewSQL(conn Conn) *SQL {
	return &SQL{conn: conn, db: conn.DB()}
}

// Migrate creates the backing table.
func (s *SQL) Migrate(ctx context.Context) error {
	return s.conn.AutoMigrate(ctx, &Entry{})
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Save(&entry).Error
}
