package tracks

import (
	"time"

	"github.com/planbiir/gthin/internal/store"
	"github.com/planbiir/gthin/internal/thin"
	"github.com/planbiir/gthin/internal/track"
)

type ThinRequest struct {
	Policy thin.Spec     `json:"policy"`
	Points []track.Point `json:"points"`
}

type TrackResponse struct {
	Record store.Record `json:"record"`
	Stats  track.Stats  `json:"stats"`
	Files  []FileInfo   `json:"files"`
}

// FileInfo describes one source file of a stored track in date order. Index
// is what DELETE /tracks/:id/files/:index expects.
type FileInfo struct {
	Index     int        `json:"index"`
	Name      string     `json:"name"`
	Segments  int        `json:"segments"`
	Points    int        `json:"points"`
	StartTime *time.Time `json:"start_time"`
}

type SegmentResult struct {
	TrackIndex   int         `json:"track_index"`
	SegmentIndex int         `json:"segment_index"`
	Before       track.Stats `json:"before"`
	After        track.Stats `json:"after"`
}

type ThinningResponse struct {
	Policy   thin.Spec       `json:"policy"`
	Segments []SegmentResult `json:"segments"`
}
