package track

import (
	"fmt"
	"math"
	"time"
)

const unknown = "unknown"

// FormatInterval renders an average sampling interval at a single unit.
func FormatInterval(d *time.Duration) string {
	if d == nil {
		return unknown
	}
	seconds := math.Round(d.Seconds())
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.0fs", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.0fm", math.Round(seconds/60))
	default:
		return fmt.Sprintf("%.0fh", math.Round(seconds/3600))
	}
}

// FormatDistance renders kilometers, switching to meters below 1 km.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%.0fm", math.Round(km*1000))
	}
	return fmt.Sprintf("%.1fkm", km)
}

// FormatDuration renders a duration using its two most significant units.
func FormatDuration(d *time.Duration) string {
	if d == nil {
		return unknown
	}
	total := int64(math.Floor(d.Seconds()))
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatTimeRange renders start and end, omitting the date on the end side
// when both fall on the same day.
func FormatTimeRange(start, end *time.Time) string {
	if start == nil || end == nil {
		return unknown
	}
	const full = "2006-01-02 15:04"
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy == ey && sm == em && sd == ed {
		return fmt.Sprintf("%s - %s", start.Format(full), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start.Format(full), end.Format(full))
}
