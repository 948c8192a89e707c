package storage

import (
	"time"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SQLiteAdapter implements the history and audit repositories using
// GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// SearchHistoryModel is the GORM model for the bounded search log.
type SearchHistoryModel struct {
	ID          uint      `gorm:"primaryKey"`
	CVEID       string    `gorm:"column:cve_id;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	SearchTime  time.Time `gorm:"column:search_time;index"`
}

// TableName keeps the table name stable across model renames.
func (SearchHistoryModel) TableName() string { return "search_history" }

// NewSQLiteAdapter initializes the database and migrates schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Trace storage operations alongside the HTTP spans.
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	// Auto Migrate
	if err := db.AutoMigrate(&SearchHistoryModel{}, &domain.AuditLog{}); err != nil {
		return nil, err
	}

	return &SQLiteAdapter{db: db}, nil
}

// Close releases the underlying connection pool.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
