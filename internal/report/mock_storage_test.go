package report_test

import (
	"context"
	"time"

	"campusreport/backend/internal/models"
	"campusreport/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateReport(ctx context.Context, r *models.Report) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *MockStorage) SaveAttachment(ctx context.Context, a *models.Attachment) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockStorage) GetReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockStorage) FindReportByTicketAndEmail(ctx context.Context, ticketCode, email string) (*models.Report, error) {
	args := m.Called(ticketCode, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockStorage) ListReports(ctx context.Context, f storage.ReportFilter) ([]models.Report, int64, error) {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) CountByStatus(ctx context.Context) (map[models.ReportStatus]int64, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.ReportStatus]int64), args.Error(1)
}

func (m *MockStorage) UpdateReportStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus, updatedAt time.Time) error {
	args := m.Called(id, status, updatedAt)
	return args.Error(0)
}

func (m *MockStorage) CreateFeedback(ctx context.Context, fb *models.Feedback, touchedAt time.Time) error {
	args := m.Called(fb, touchedAt)
	return args.Error(0)
}

func (m *MockStorage) ListFeedback(ctx context.Context, reportID uuid.UUID) ([]models.Feedback, error) {
	args := m.Called(reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feedback), args.Error(1)
}

func (m *MockStorage) SaveDonation(ctx context.Context, d *models.Donation) error {
	args := m.Called(d)
	return args.Error(0)
}

// failingObjects rejects uploads whose content is a key of fail, or every
// upload when fail is nil.
type failingObjects struct {
	fail map[string]bool
	err  error
}

func (f *failingObjects) Upload(ctx context.Context, bucket, key string, content []byte, contentType string) error {
	if f.fail == nil || f.fail[string(content)] {
		return f.err
	}
	return nil
}

func (f *failingObjects) PublicURL(bucket, key string) string {
	return "https://files.example/" + bucket + "/" + key
}

type recordingNotifier struct {
	reports []*models.Report
	err     error
}

func (n *recordingNotifier) NotifyNewReport(ctx context.Context, r *models.Report) error {
	n.reports = append(n.reports, r)
	return n.err
}
