package analyze

import (
	"fmt"
	"time"
)

// TimeAgo describes how long ago something happened, coarsening as the
// duration grows: "3m 12s ago", "5h 2m ago", "4d ago", then "More than a
// month ago" and "More than a year ago".
func TimeAgo(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)

	days := seconds / 86400
	switch {
	case days > 365:
		return "More than a year ago"
	case days > 31:
		return "More than a month ago"
	case days >= 1:
		return fmt.Sprintf("%dd ago", days)
	}

	hours := seconds / 3600
	minutes := seconds % 3600 / 60
	if hours >= 1 {
		return fmt.Sprintf("%dh %dm ago", hours, minutes)
	}
	return fmt.Sprintf("%dm %ds ago", minutes, seconds%60)
}
