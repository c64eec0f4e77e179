/**
 * @description
 * Odds database models.
 * One OddsRecord row per (game_id, source) pair holds the current market
 * triplet; the bounded trend history is embedded as a jsonb column.
 *
 * @dependencies
 * - gorm.io/gorm
 * - database/sql/driver (custom jsonb Scanner/Valuer types)
 */

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Movement describes the direction a tracked line moved between two
// consecutive writes for the same (game, source) key.
type Movement string

const (
	MoveUp   Movement = "up"
	MoveDown Movement = "down"
	MoveNone Movement = "none"
)

// Supported sources. Quotes from anything outside this set are rejected
// during normalization.
const (
	SourceDraftKings = "DraftKings"
	SourceFanDuel    = "FanDuel"
	SourceBetMGM     = "BetMGM"
	SourceCaesars    = "Caesars"
	SourceBetRivers  = "BetRivers"
	SourceESPNBet    = "ESPN BET"
	SourceBet365     = "Bet365"
	SourceESPN       = "ESPN"
)

// KnownSource reports whether source belongs to the enumerated set.
func KnownSource(source string) bool {
	switch source {
	case SourceDraftKings, SourceFanDuel, SourceBetMGM, SourceCaesars,
		SourceBetRivers, SourceESPNBet, SourceBet365, SourceESPN:
		return true
	}
	return false
}

// OddsSnapshot is an immutable point-in-time copy of the tracked values of a
// record, captured *before* an update overwrites them. Nil means the field
// was absent at capture time, not zero.
type OddsSnapshot struct {
	Timestamp      time.Time `json:"timestamp"`
	SpreadHomeLine *float64  `json:"spread_home_line"`
	TotalLine      *float64  `json:"total_line"`
	MoneylineHome  *float64  `json:"moneyline_home"`
	MoneylineAway  *float64  `json:"moneyline_away"`
}

// SnapshotList stores the capped history as a jsonb column, oldest first.
type SnapshotList []OddsSnapshot

// Scan implements the sql.Scanner interface
func (l *SnapshotList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("type assertion failed for SnapshotList")
	}
}

// Value implements the driver.Valuer interface
func (l SnapshotList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// PlayerProp is a per-player market carried through from sources that offer
// props. Stored as-is; props are not movement-tracked.
type PlayerProp struct {
	PlayerName string   `json:"player_name"`
	Team       string   `json:"team"`
	Market     string   `json:"market"`
	Line       *float64 `json:"line"`
	OverPrice  *float64 `json:"over_price"`
	UnderPrice *float64 `json:"under_price"`
}

// PlayerPropList stores player props as a jsonb column.
type PlayerPropList []PlayerProp

// Scan implements the sql.Scanner interface
func (l *PlayerPropList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("type assertion failed for PlayerPropList")
	}
}

// Value implements the driver.Valuer interface
func (l PlayerPropList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// OddsRecord is the current price record for one (game, source) pair.
// All line/price fields are pointers: nil means the source did not quote
// that field, which must never be conflated with a zero value.
type OddsRecord struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	GameID string `gorm:"column:game_id;uniqueIndex:idx_odds_game_source" json:"game_id"`
	Source string `gorm:"column:source;uniqueIndex:idx_odds_game_source" json:"source"`

	SpreadHomeLine  *float64 `gorm:"column:spread_home_line" json:"spread_home_line"`
	SpreadAwayLine  *float64 `gorm:"column:spread_away_line" json:"spread_away_line"`
	SpreadHomePrice *float64 `gorm:"column:spread_home_price" json:"spread_home_price"`
	SpreadAwayPrice *float64 `gorm:"column:spread_away_price" json:"spread_away_price"`
	SpreadMovement  Movement `gorm:"column:spread_movement;default:none" json:"spread_movement"`

	MoneylineHome *float64 `gorm:"column:moneyline_home" json:"moneyline_home"`
	MoneylineAway *float64 `gorm:"column:moneyline_away" json:"moneyline_away"`

	TotalLine       *float64 `gorm:"column:total_line" json:"total_line"`
	TotalOverPrice  *float64 `gorm:"column:total_over_price" json:"total_over_price"`
	TotalUnderPrice *float64 `gorm:"column:total_under_price" json:"total_under_price"`
	TotalMovement   Movement `gorm:"column:total_movement;default:none" json:"total_movement"`

	PlayerProps PlayerPropList `gorm:"column:player_props;type:jsonb" json:"player_props"`

	History SnapshotList `gorm:"column:history;type:jsonb" json:"history"`

	UpdatedAt time.Time `gorm:"column:updated_at;index" json:"updated_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName overrides the table name used by OddsRecord to `odds_records`
func (OddsRecord) TableName() string {
	return "odds_records"
}

// Snapshot captures the record's current tracked values as an immutable
// history entry.
func (r *OddsRecord) Snapshot(at time.Time) OddsSnapshot {
	return OddsSnapshot{
		Timestamp:      at,
		SpreadHomeLine: copyFloat(r.SpreadHomeLine),
		TotalLine:      copyFloat(r.TotalLine),
		MoneylineHome:  copyFloat(r.MoneylineHome),
		MoneylineAway:  copyFloat(r.MoneylineAway),
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
