package analysis

import (
	"testing"

	"campusreport/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize(map[models.ReportStatus]int64{
		models.StatusIncoming:   4,
		models.StatusInProgress: 2,
		models.StatusResolved:   3,
		models.StatusRejected:   1,
	})

	assert.EqualValues(t, 10, s.Total)
	assert.EqualValues(t, 6, s.Open)
	assert.EqualValues(t, 4, s.Closed)
	assert.EqualValues(t, 0, s.ByStatus[models.StatusVerified])
	assert.Len(t, s.ByStatus, len(models.Statuses))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Len(t, s.ByStatus, len(models.Statuses))
}

func TestGetPriority(t *testing.T) {
	tests := []struct {
		category int
		want     int
	}{
		{1, 3},
		{2, 2},
		{3, 1},
		{9, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetPriority(tt.category))
	}
}
