package daily

import (
	"github.com/kotoba-app/kotoba-api/internal/domain"
)

// ComputeStreak derives the current streak from the completed sessions in
// history plus today's session. It is the single source of truth for streak
// math: both the completion path and the day-rollover path call it, so an
// incremental update can never diverge from a full recompute.
//
// The streak is the length of the maximal run of consecutive completed
// calendar days ending at today or, if today's quota is still open, at
// yesterday. A run that ended two or more days ago counts as broken and
// yields zero.
func ComputeStreak(history []domain.DailyWordsSession, current *domain.DailyWordsSession, today domain.Date) int {
	completed := make(map[string]bool, len(history)+1)
	for _, sess := range history {
		if sess.IsCompleted && !sess.Date.IsZero() {
			completed[sess.Date.String()] = true
		}
	}
	if current != nil && current.IsCompleted && !current.Date.IsZero() {
		completed[current.Date.String()] = true
	}

	day := today
	if !completed[day.String()] {
		day = day.AddDays(-1)
		if !completed[day.String()] {
			return 0
		}
	}

	streak := 0
	for completed[day.String()] {
		streak++
		day = day.AddDays(-1)
	}
	return streak
}
