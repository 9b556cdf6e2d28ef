package storage

import (
	"context"
	"errors"
	"time"

	"campusreport/backend/internal/config"
	"campusreport/backend/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateTicket = errors.New("ticket code already exists")
	ErrCorruptRecord   = errors.New("stored record failed integrity check")
)

// ReportFilter narrows the admin report listing. Zero values mean "any".
type ReportFilter struct {
	Statuses       []models.ReportStatus
	ReportType     models.ReportType
	CategoryColumn int
	Search         string
	Limit          int
	Offset         int
}

// Normalized clamps Limit and Offset into the allowed range.
func (f ReportFilter) Normalized() ReportFilter {
	if f.Limit <= 0 {
		f.Limit = config.DefaultListLimit
	}
	if f.Limit > config.MaxListLimit {
		f.Limit = config.MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

type Storage interface {
	// CreateReport inserts r and returns ErrDuplicateTicket when its ticket
	// code is already taken.
	CreateReport(ctx context.Context, r *models.Report) error
	SaveAttachment(ctx context.Context, a *models.Attachment) error

	// GetReportByID loads a report with its attachments and all feedback.
	GetReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	// FindReportByTicketAndEmail loads the report matching both values with
	// reporter-visible feedback only.
	FindReportByTicketAndEmail(ctx context.Context, ticketCode, email string) (*models.Report, error)
	ListReports(ctx context.Context, f ReportFilter) ([]models.Report, int64, error)
	CountByStatus(ctx context.Context) (map[models.ReportStatus]int64, error)

	UpdateReportStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus, updatedAt time.Time) error

	// CreateFeedback appends fb and refreshes the owning report's updated_at.
	CreateFeedback(ctx context.Context, fb *models.Feedback, touchedAt time.Time) error
	ListFeedback(ctx context.Context, reportID uuid.UUID) ([]models.Feedback, error)

	SaveDonation(ctx context.Context, d *models.Donation) error
}
