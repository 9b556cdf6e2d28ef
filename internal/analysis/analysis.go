// Package analysis derives the admin dashboard counters and queue priority
// from stored reports.
package analysis

import (
	"campusreport/backend/internal/config"
	"campusreport/backend/internal/lifecycle"
	"campusreport/backend/internal/models"
)

// Summary is the status breakdown shown above the admin report list.
type Summary struct {
	Total    int64                         `json:"total"`
	Open     int64                         `json:"open"`
	Closed   int64                         `json:"closed"`
	ByStatus map[models.ReportStatus]int64 `json:"by_status"`
}

// Summarize folds per-status counts into a Summary. Every known status is
// present in ByStatus, even when its count is zero.
func Summarize(counts map[models.ReportStatus]int64) Summary {
	s := Summary{ByStatus: make(map[models.ReportStatus]int64, len(models.Statuses))}
	for _, st := range models.Statuses {
		s.ByStatus[st] = 0
	}
	for st, n := range counts {
		s.ByStatus[st] += n
		s.Total += n
		if lifecycle.IsTerminal(st) {
			s.Closed += n
		} else {
			s.Open += n
		}
	}
	return s
}

// GetPriority returns the queue priority for a report category.
// It returns 0 if the category is not recognized.
func GetPriority(categoryColumn int) int {
	return config.CategoryPriority[categoryColumn]
}
