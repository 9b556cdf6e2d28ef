package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campusreport/backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service is the PostgreSQL implementation of Storage.
type Service struct {
	DB *gorm.DB
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Migrate creates or updates the portal tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Report{},
		&models.Attachment{},
		&models.Feedback{},
		&models.Donation{},
	)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func feedbackOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc, id asc")
}

func visibleFeedback(db *gorm.DB) *gorm.DB {
	return db.Where("visible_to_reporter = ?", true).Order("created_at asc, id asc")
}

func checked(r *models.Report) error {
	if err := r.CheckIntegrity(); err != nil {
		log.Printf("ERROR: %v", err)
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return nil
}

func (s *Service) CreateReport(ctx context.Context, r *models.Report) error {
	err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(r).Error
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTicket
		}
		log.Printf("ERROR: Failed to save report %s: %v", r.TicketCode, err)
		return err
	}
	return nil
}

func (s *Service) SaveAttachment(ctx context.Context, a *models.Attachment) error {
	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		log.Printf("ERROR: Failed to save attachment %s for report %s: %v", a.FilePath, a.ReportID, err)
		return err
	}
	return nil
}

func (s *Service) GetReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var r models.Report
	err := s.DB.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Feedback", feedbackOrder).
		Where("id = ?", id).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get report %s: %v", id, err)
		return nil, err
	}
	if err := checked(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) FindReportByTicketAndEmail(ctx context.Context, ticketCode, email string) (*models.Report, error) {
	var r models.Report
	err := s.DB.WithContext(ctx).
		Preload("Feedback", visibleFeedback).
		Where("ticket_code = ? AND email = ?", ticketCode, email).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := checked(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) ListReports(ctx context.Context, f ReportFilter) ([]models.Report, int64, error) {
	f = f.Normalized()

	q := s.DB.WithContext(ctx).Model(&models.Report{})
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		q = q.Where("status = ANY(?)", pq.Array(statuses))
	}
	if f.ReportType != "" {
		q = q.Where("report_type = ?", string(f.ReportType))
	}
	if f.CategoryColumn != 0 {
		q = q.Where("category_column = ?", f.CategoryColumn)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("ticket_code ILIKE ? OR reporter_name ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		log.Printf("ERROR: Failed to count reports: %v", err)
		return nil, 0, err
	}

	var reports []models.Report
	if err := q.Order("created_at desc").Limit(f.Limit).Offset(f.Offset).Find(&reports).Error; err != nil {
		log.Printf("ERROR: Failed to list reports: %v", err)
		return nil, 0, err
	}
	for i := range reports {
		if err := checked(&reports[i]); err != nil {
			return nil, 0, err
		}
	}
	return reports, total, nil
}

func (s *Service) CountByStatus(ctx context.Context) (map[models.ReportStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.DB.WithContext(ctx).Model(&models.Report{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[models.ReportStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.ReportStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (s *Service) UpdateReportStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus, updatedAt time.Time) error {
	res := s.DB.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		log.Printf("ERROR: Failed to update status of report %s: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) CreateFeedback(ctx context.Context, fb *models.Feedback, touchedAt time.Time) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Report{}).Where("id = ?", fb.ReportID).Update("updated_at", touchedAt)
		if res.Error != nil {
			log.Printf("ERROR: Failed to touch report %s: %v", fb.ReportID, res.Error)
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Create(fb).Error; err != nil {
			log.Printf("ERROR: Failed to save feedback for report %s: %v", fb.ReportID, err)
			return err
		}
		return nil
	})
}

func (s *Service) ListFeedback(ctx context.Context, reportID uuid.UUID) ([]models.Feedback, error) {
	var list []models.Feedback
	if err := feedbackOrder(s.DB.WithContext(ctx).Where("report_id = ?", reportID)).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) SaveDonation(ctx context.Context, d *models.Donation) error {
	if err := s.DB.WithContext(ctx).Create(d).Error; err != nil {
		log.Printf("ERROR: Failed to save donation from %s: %v", d.Name, err)
		return err
	}
	return nil
}
