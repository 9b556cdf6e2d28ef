package report

import (
	"context"
	"log"
	"time"

	"campusreport/backend/internal/access"
	"campusreport/backend/internal/analysis"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/storage"
	"campusreport/backend/internal/validation"

	"github.com/google/uuid"
)

// nextUpdatedAt returns now, or one microsecond past prev when the clock has
// not moved beyond it.
func nextUpdatedAt(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}

// UpdateStatus moves a report to the requested status. Writing the current
// status again returns ErrNoChange without touching the store. Concurrent
// writers are last-write-wins.
func (s *Service) UpdateStatus(ctx context.Context, caller access.Caller, id uuid.UUID, p validation.StatusPayload) (*models.Report, error) {
	adminID, err := caller.RequireAdmin()
	if err != nil {
		return nil, err
	}
	target, err := validation.ValidateStatus(p)
	if err != nil {
		return nil, err
	}

	r, err := s.Storage.GetReportByID(ctx, id)
	if err != nil {
		return nil, persistence("get report", err)
	}
	from := r.Status
	if err := s.Machine.Transition(from, target); err != nil {
		return nil, err
	}

	updatedAt := nextUpdatedAt(r.UpdatedAt, s.now())
	if err := s.Storage.UpdateReportStatus(ctx, id, target, updatedAt); err != nil {
		return nil, persistence("update status", err)
	}
	r.Status = target
	r.UpdatedAt = updatedAt

	s.Metrics.StatusChanged(string(from), string(target))
	log.Printf("INFO: Admin %s moved report %s from %s to %s", adminID, r.TicketCode, from, target)
	return r, nil
}

// FeedbackReceipt is the result of recording a feedback entry.
type FeedbackReceipt struct {
	Feedback *models.Feedback
	// DeliveryLink opens a prefilled WhatsApp chat or email for the manual
	// out-of-band delivery. Empty for the dashboard channel.
	DeliveryLink string
}

// SendFeedback records an admin message on a report. An empty channel falls
// back to the reporter's preferred channel. The system only records the
// message; WhatsApp and email delivery stay with the admin.
func (s *Service) SendFeedback(ctx context.Context, caller access.Caller, id uuid.UUID, p validation.FeedbackPayload) (*FeedbackReceipt, error) {
	adminID, err := caller.RequireAdmin()
	if err != nil {
		return nil, err
	}
	message, channel, err := validation.ValidateFeedback(p)
	if err != nil {
		return nil, err
	}

	r, err := s.Storage.GetReportByID(ctx, id)
	if err != nil {
		return nil, persistence("get report", err)
	}
	if channel == "" {
		channel = r.PreferredFeedbackChannel
	}

	now := s.now()
	fb := &models.Feedback{
		ReportID:          r.ID,
		AdminUserID:       adminID,
		Message:           message,
		SentVia:           channel,
		VisibleToReporter: true,
		CreatedAt:         now,
	}
	if err := s.Storage.CreateFeedback(ctx, fb, nextUpdatedAt(r.UpdatedAt, now)); err != nil {
		return nil, persistence("create feedback", err)
	}

	s.Metrics.FeedbackRecorded(string(channel))
	log.Printf("INFO: Admin %s sent feedback on report %s via %s", adminID, r.TicketCode, channel)
	return &FeedbackReceipt{Feedback: fb, DeliveryLink: DeliveryLink(channel, r, message)}, nil
}

// ReportPage is one page of the admin report list.
type ReportPage struct {
	Reports []models.Report
	Total   int64
	Summary analysis.Summary
}

func (s *Service) ListReports(ctx context.Context, caller access.Caller, f storage.ReportFilter) (*ReportPage, error) {
	if _, err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	reports, total, err := s.Storage.ListReports(ctx, f)
	if err != nil {
		return nil, persistence("list reports", err)
	}
	counts, err := s.Storage.CountByStatus(ctx)
	if err != nil {
		return nil, persistence("count reports", err)
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return &ReportPage{Reports: reports, Total: total, Summary: analysis.Summarize(counts)}, nil
}

// GetReport returns a report with its attachments and every feedback entry.
func (s *Service) GetReport(ctx context.Context, caller access.Caller, id uuid.UUID) (*models.Report, error) {
	if _, err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	r, err := s.Storage.GetReportByID(ctx, id)
	if err != nil {
		return nil, persistence("get report", err)
	}
	return r, nil
}

// FindReportByTicket resolves a ticket code for admin tooling.
func (s *Service) FindReportByTicket(ctx context.Context, caller access.Caller, code string) (*models.Report, error) {
	if _, err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	reports, _, err := s.Storage.ListReports(ctx, storage.ReportFilter{Search: code})
	if err != nil {
		return nil, persistence("find report", err)
	}
	for _, r := range reports {
		if r.TicketCode == code {
			return s.GetReport(ctx, caller, r.ID)
		}
	}
	return nil, ErrNotFound
}

// ListFeedback returns every feedback entry on a report, oldest first.
func (s *Service) ListFeedback(ctx context.Context, caller access.Caller, id uuid.UUID) ([]models.Feedback, error) {
	if _, err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	list, err := s.Storage.ListFeedback(ctx, id)
	if err != nil {
		return nil, persistence("list feedback", err)
	}
	return list, nil
}

// AllowedTransitions lists the statuses an admin may move the report to.
func (s *Service) AllowedTransitions(ctx context.Context, caller access.Caller, id uuid.UUID) ([]models.ReportStatus, error) {
	r, err := s.GetReport(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.Machine.Targets(r.Status), nil
}
