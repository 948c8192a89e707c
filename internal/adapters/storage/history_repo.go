package storage

import (
	"context"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ensure compliance
var _ ports.HistoryRepository = (*SQLiteAdapter)(nil)

// Upsert records a lookup keyed by CVE id and trims the table to the
// retention window. A repeated search overwrites the existing entry's
// description and timestamp instead of appending a duplicate.
func (a *SQLiteAdapter) Upsert(ctx context.Context, entry domain.SearchEntry) error {
	model := SearchHistoryModel{
		CVEID:       entry.CVEID,
		Description: entry.Description,
		SearchTime:  entry.SearchTime,
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cve_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "search_time"}),
		}).Create(&model).Error
		if err != nil {
			return err
		}

		// Keep only the most recent entries. Sub-second timestamp ties
		// break on insertion order via the rowid.
		return tx.Exec(`
			DELETE FROM search_history
			WHERE id NOT IN (
				SELECT id FROM search_history
				ORDER BY search_time DESC, id DESC
				LIMIT ?
			)
		`, domain.HistoryLimit).Error
	})
}

// List returns the retained entries, most recent first.
func (a *SQLiteAdapter) List(ctx context.Context) ([]domain.SearchEntry, error) {
	var models []SearchHistoryModel
	err := a.db.WithContext(ctx).
		Order("search_time desc, id desc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SearchEntry, len(models))
	for i, m := range models {
		entries[i] = domain.SearchEntry{
			ID:          m.ID,
			CVEID:       m.CVEID,
			Description: m.Description,
			SearchTime:  m.SearchTime,
		}
	}
	return entries, nil
}

// Clear removes all entries. Idempotent.
func (a *SQLiteAdapter) Clear(ctx context.Context) error {
	return a.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&SearchHistoryModel{}).Error
}
