/**
 * @description
 * Game database model (canonical event catalog).
 * Maps to the 'games' table in PostgreSQL. The odds pipeline treats this
 * entity as a read-only join key; only the catalog sync writes it.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"time"
)

// Game lifecycle states
const (
	GameScheduled  = "scheduled"
	GameInProgress = "in-progress"
	GameCompleted  = "completed"
)

// Game represents a single canonical scheduled matchup
type Game struct {
	ID       string `gorm:"primaryKey;column:id" json:"id"`
	ESPNID   string `gorm:"column:espn_id;uniqueIndex" json:"espn_id"`
	HomeName string `gorm:"column:home_name" json:"home_name"`
	HomeAbbr string `gorm:"column:home_abbr" json:"home_abbr"`
	AwayName string `gorm:"column:away_name" json:"away_name"`
	AwayAbbr string `gorm:"column:away_abbr" json:"away_abbr"`

	GameTime time.Time `gorm:"column:game_time;index:idx_games_time_status" json:"game_time"`
	Week     int       `gorm:"column:week;index:idx_games_week_season" json:"week"`
	Season   int       `gorm:"column:season;index:idx_games_week_season" json:"season"`

	Venue       string `gorm:"column:venue" json:"venue"`
	Conference  string `gorm:"column:conference" json:"conference"`
	TVBroadcast string `gorm:"column:tv_broadcast" json:"tv_broadcast"`

	Status string `gorm:"column:status;default:scheduled;index:idx_games_time_status" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName overrides the table name used by Game to `games`
func (Game) TableName() string {
	return "games"
}
