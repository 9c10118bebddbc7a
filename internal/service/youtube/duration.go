package youtube

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// isoDuration matches the subset of ISO 8601 durations the Data API emits: P[nD][T[nH][nM][nS]].
var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// maxDurationSeconds is the largest value the duration_seconds column holds.
const maxDurationSeconds = math.MaxInt32

// ParseVideoDuration converts ISO 8601 duration to seconds
// Example: "PT4M13S" -> 253 seconds
func ParseVideoDuration(duration string) (int, error) {
	match := isoDuration.FindStringSubmatch(duration)
	if match == nil || duration == "P" || strings.HasSuffix(duration, "T") {
		return 0, fmt.Errorf("invalid duration format: %q", duration)
	}

	units := [...]int{86400, 3600, 60, 1}
	total := 0
	for i, unit := range units {
		if match[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(match[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration component in %q: %w", duration, err)
		}
		if n > (maxDurationSeconds-total)/unit {
			return 0, fmt.Errorf("duration %q out of range", duration)
		}
		total += n * unit
	}

	return total, nil
}

// FormatVideoDuration renders seconds as PT#H#M#S, omitting zero components.
func FormatVideoDuration(seconds int) string {
	if seconds <= 0 {
		return "PT0S"
	}

	var b strings.Builder
	b.WriteString("PT")
	if h := seconds / 3600; h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m := seconds % 3600 / 60; m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s := seconds % 60; s > 0 {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}
