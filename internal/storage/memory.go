package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"campusreport/backend/internal/models"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It backs the "memory"
// storage driver and the service tests.
type MemoryStore struct {
	mu sync.RWMutex

	reports     map[uuid.UUID]*models.Report
	tickets     map[string]uuid.UUID
	attachments map[uuid.UUID][]models.Attachment
	feedback    map[uuid.UUID][]models.Feedback
	donations   []models.Donation

	nextAttachmentID uint
	nextFeedbackID   uint

	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports:     make(map[uuid.UUID]*models.Report),
		tickets:     make(map[string]uuid.UUID),
		attachments: make(map[uuid.UUID][]models.Attachment),
		feedback:    make(map[uuid.UUID][]models.Feedback),
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) CreateReport(_ context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.tickets[r.TicketCode]; taken {
		return ErrDuplicateTicket
	}
	_ = r.BeforeCreate(nil)
	now := m.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	row := *r
	row.Attachments = nil
	row.Feedback = nil
	m.reports[row.ID] = &row
	m.tickets[row.TicketCode] = row.ID
	return nil
}

func (m *MemoryStore) SaveAttachment(_ context.Context, a *models.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reports[a.ReportID]; !ok {
		return ErrNotFound
	}
	m.nextAttachmentID++
	a.ID = m.nextAttachmentID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.Now()
	}
	m.attachments[a.ReportID] = append(m.attachments[a.ReportID], *a)
	return nil
}

// assemble copies the stored row and its children; caller holds the lock.
func (m *MemoryStore) assemble(id uuid.UUID, visibleOnly bool) *models.Report {
	row, ok := m.reports[id]
	if !ok {
		return nil
	}
	r := *row
	r.Attachments = append([]models.Attachment(nil), m.attachments[id]...)
	r.Feedback = nil
	for _, fb := range m.feedback[id] {
		if visibleOnly && !fb.VisibleToReporter {
			continue
		}
		r.Feedback = append(r.Feedback, fb)
	}
	sortFeedback(r.Feedback)
	return &r
}

func sortFeedback(list []models.Feedback) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func (m *MemoryStore) GetReportByID(_ context.Context, id uuid.UUID) (*models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r := m.assemble(id, false)
	if r == nil {
		return nil, ErrNotFound
	}
	if err := checked(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (m *MemoryStore) FindReportByTicketAndEmail(_ context.Context, ticketCode, email string) (*models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.tickets[ticketCode]
	if !ok || m.reports[id].Email != email {
		return nil, ErrNotFound
	}
	r := m.assemble(id, true)
	r.Attachments = nil
	if err := checked(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (f ReportFilter) matches(r *models.Report) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if st == r.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ReportType != "" && f.ReportType != r.ReportType {
		return false
	}
	if f.CategoryColumn != 0 && f.CategoryColumn != r.CategoryColumn {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.TicketCode), needle) &&
			!strings.Contains(strings.ToLower(r.ReporterName), needle) {
			return false
		}
	}
	return true
}

func (m *MemoryStore) ListReports(_ context.Context, f ReportFilter) ([]models.Report, int64, error) {
	f = f.Normalized()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []models.Report
	for _, row := range m.reports {
		if f.matches(row) {
			r := *row
			hits = append(hits, r)
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if !hits[i].CreatedAt.Equal(hits[j].CreatedAt) {
			return hits[i].CreatedAt.After(hits[j].CreatedAt)
		}
		return hits[i].TicketCode > hits[j].TicketCode
	})

	total := int64(len(hits))
	if f.Offset >= len(hits) {
		return []models.Report{}, total, nil
	}
	hits = hits[f.Offset:]
	if len(hits) > f.Limit {
		hits = hits[:f.Limit]
	}
	for i := range hits {
		if err := checked(&hits[i]); err != nil {
			return nil, 0, err
		}
	}
	return hits, total, nil
}

func (m *MemoryStore) CountByStatus(_ context.Context) (map[models.ReportStatus]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[models.ReportStatus]int64)
	for _, row := range m.reports {
		counts[row.Status]++
	}
	return counts, nil
}

func (m *MemoryStore) UpdateReportStatus(_ context.Context, id uuid.UUID, status models.ReportStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.reports[id]
	if !ok {
		return ErrNotFound
	}
	row.Status = status
	row.UpdatedAt = updatedAt
	return nil
}

func (m *MemoryStore) CreateFeedback(_ context.Context, fb *models.Feedback, touchedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.reports[fb.ReportID]
	if !ok {
		return ErrNotFound
	}
	m.nextFeedbackID++
	fb.ID = m.nextFeedbackID
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = m.Now()
	}
	m.feedback[fb.ReportID] = append(m.feedback[fb.ReportID], *fb)
	row.UpdatedAt = touchedAt
	return nil
}

func (m *MemoryStore) ListFeedback(_ context.Context, reportID uuid.UUID) ([]models.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := append([]models.Feedback{}, m.feedback[reportID]...)
	sortFeedback(list)
	return list, nil
}

func (m *MemoryStore) SaveDonation(_ context.Context, d *models.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_ = d.BeforeCreate(nil)
	if d.CreatedAt.IsZero() {
		d.CreatedAt = m.Now()
	}
	m.donations = append(m.donations, *d)
	return nil
}

// Donations returns a copy of every saved donation in insertion order.
func (m *MemoryStore) Donations() []models.Donation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Donation(nil), m.donations...)
}
