package movement

import (
	"testing"

	"github.com/gridline-project/backend/internal/models"
	"github.com/gridline-project/backend/internal/normalize"
)

func ptr(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		old  *float64
		new  *float64
		want models.Movement
	}{
		{"up", ptr(-3.5), ptr(-3.0), models.MoveUp},
		{"down", ptr(55.5), ptr(54.0), models.MoveDown},
		{"equal", ptr(-7.0), ptr(-7.0), models.MoveNone},
		{"old absent", nil, ptr(-3.5), models.MoveNone},
		{"new absent", ptr(-3.5), nil, models.MoveNone},
		{"both absent", nil, nil, models.MoveNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.old, tt.new); got != tt.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", tt.old, tt.new, got, tt.want)
			}
		})
	}
}

func TestDetectFirstWriteHasNoBaseline(t *testing.T) {
	next := normalize.MarketTriplet{}
	next.Spread.HomeLine = ptr(-3.5)
	next.Total.Line = ptr(55.5)

	got := Detect(nil, next)
	if got.Spread != models.MoveNone || got.Total != models.MoveNone {
		t.Errorf("first write must classify as none, got %+v", got)
	}
}

func TestDetectTracksSpreadAndTotalIndependently(t *testing.T) {
	prev := &models.OddsRecord{
		SpreadHomeLine: ptr(-3.5),
		TotalLine:      ptr(55.5),
	}

	next := normalize.MarketTriplet{}
	next.Spread.HomeLine = ptr(-3.0) // moved toward the dog
	next.Total.Line = ptr(54.0)      // moved under

	got := Detect(prev, next)
	if got.Spread != models.MoveUp {
		t.Errorf("spread: got %v, want up", got.Spread)
	}
	if got.Total != models.MoveDown {
		t.Errorf("total: got %v, want down", got.Total)
	}
}

func TestDetectAbsentFieldWithinExistingRecord(t *testing.T) {
	// Record exists but never quoted a total: still no movement signal.
	prev := &models.OddsRecord{SpreadHomeLine: ptr(-3.5)}

	next := normalize.MarketTriplet{}
	next.Spread.HomeLine = ptr(-3.5)
	next.Total.Line = ptr(55.5)

	got := Detect(prev, next)
	if got.Total != models.MoveNone {
		t.Errorf("absent prior total must classify as none, got %v", got.Total)
	}
	if got.Spread != models.MoveNone {
		t.Errorf("unchanged spread must classify as none, got %v", got.Spread)
	}
}
