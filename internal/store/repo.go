/**
 * @description
 * Persistence layer for odds records.
 * The Repository interface keeps the store's upsert discipline testable
 * without Postgres; GormRepository is the production implementation, one row
 * per (game_id, source) with an OnConflict upsert on the composite key.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/jackc/pgconn (transient serialization-failure detection)
 */

package store

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/gridline-project/backend/internal/models"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists odds records keyed by (game_id, source).
type Repository interface {
	// Load returns the current record for a key, or nil when none exists.
	Load(ctx context.Context, gameID, source string) (*models.OddsRecord, error)
	// Save upserts a record on the composite key.
	Save(ctx context.Context, rec *models.OddsRecord) error
	// ListByGame returns all current records for one game.
	ListByGame(ctx context.Context, gameID string) ([]models.OddsRecord, error)
	// ListMoved returns records among the given games whose last write moved
	// a tracked line, newest first.
	ListMoved(ctx context.Context, gameIDs []string) ([]models.OddsRecord, error)
}

// GormRepository is the Postgres-backed Repository.
type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) Load(ctx context.Context, gameID, source string) (*models.OddsRecord, error) {
	var rec models.OddsRecord
	err := r.DB.WithContext(ctx).
		Where("game_id = ? AND source = ?", gameID, source).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// mutable columns overwritten on conflict; game_id/source/created_at stay.
var upsertColumns = []string{
	"spread_home_line", "spread_away_line", "spread_home_price", "spread_away_price",
	"spread_movement",
	"moneyline_home", "moneyline_away",
	"total_line", "total_over_price", "total_under_price", "total_movement",
	"player_props", "history", "updated_at",
}

func (r *GormRepository) Save(ctx context.Context, rec *models.OddsRecord) error {
	const maxRetries = 3
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = r.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "game_id"}, {Name: "source"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).Create(rec).Error
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "40P01" || pgErr.Code == "40001") {
			backoff := time.Duration(attempt*50+rand.Intn(50)) * time.Millisecond
			time.Sleep(backoff)
			continue
		}
		return err
	}
	return err
}

func (r *GormRepository) ListByGame(ctx context.Context, gameID string) ([]models.OddsRecord, error) {
	var recs []models.OddsRecord
	err := r.DB.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("source ASC").
		Find(&recs).Error
	return recs, err
}

func (r *GormRepository) ListMoved(ctx context.Context, gameIDs []string) ([]models.OddsRecord, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	var recs []models.OddsRecord
	err := r.DB.WithContext(ctx).
		Where("game_id IN ?", gameIDs).
		Where("spread_movement <> 'none' OR total_movement <> 'none'").
		Order("updated_at DESC").
		Find(&recs).Error
	return recs, err
}
