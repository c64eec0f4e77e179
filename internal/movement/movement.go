/**
 * @description
 * Line-movement detector.
 * Pure comparison of the previously stored record against a newly normalized
 * triplet for the same (game, source) key. Only the spread home line and the
 * total line are movement-tracked; moneyline and prices are stored but never
 * classified.
 *
 * @notes
 * - Absence is not a movement signal: if either operand is nil (no prior
 *   record, or the field was absent on either side) the classification is
 *   MoveNone.
 */

package movement

import (
	"github.com/gridline-project/backend/internal/models"
	"github.com/gridline-project/backend/internal/normalize"
)

// Movements holds the per-line classification for one write.
type Movements struct {
	Spread models.Movement
	Total  models.Movement
}

// Classify compares a single tracked line across two writes.
func Classify(old, new *float64) models.Movement {
	if old == nil || new == nil {
		return models.MoveNone
	}
	switch {
	case *new > *old:
		return models.MoveUp
	case *new < *old:
		return models.MoveDown
	default:
		return models.MoveNone
	}
}

// Detect classifies the tracked lines of a new triplet against the previous
// record. prev == nil means first write: no baseline, no movement.
func Detect(prev *models.OddsRecord, next normalize.MarketTriplet) Movements {
	if prev == nil {
		return Movements{Spread: models.MoveNone, Total: models.MoveNone}
	}
	return Movements{
		Spread: Classify(prev.SpreadHomeLine, next.Spread.HomeLine),
		Total:  Classify(prev.TotalLine, next.Total.Line),
	}
}
