package tui

import (
	"fmt"
	"strings"

	"github.com/epalmerini/queuescope/internal/api"
)

// Aggregate counters over the current event list, recomputed on every
// render.

// activeCount returns how many events are in the "active" state,
// compared case-insensitively.
func activeCount(events []api.Event) int {
	n := 0
	for _, ev := range events {
		if normalizeState(ev.State) == "active" {
			n++
		}
	}
	return n
}

// uniqueQueueCount returns the number of distinct non-empty queue names.
func uniqueQueueCount(events []api.Event) int {
	seen := make(map[string]struct{})
	for _, ev := range events {
		if ev.QueueName != "" {
			seen[ev.QueueName] = struct{}{}
		}
	}
	return len(seen)
}

func normalizeState(state string) string {
	return strings.ToLower(strings.TrimSpace(state))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
