// Package report holds the portal's business rules: report intake, reporter
// tracking, admin triage and feedback, and donation confirmations.
package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campusreport/backend/internal/access"
	"campusreport/backend/internal/config"
	"campusreport/backend/internal/lifecycle"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/objectstore"
	"campusreport/backend/internal/observability"
	"campusreport/backend/internal/storage"
	"campusreport/backend/internal/ticket"
	"campusreport/backend/internal/validation"
)

// Notifier is told about every newly created report.
type Notifier interface {
	NotifyNewReport(ctx context.Context, r *models.Report) error
}

// File is one uploaded file as received from the form.
type File struct {
	Name        string
	Content     []byte
	ContentType string
}

// Service handles the business logic for reports.
type Service struct {
	Storage  storage.Storage
	Objects  objectstore.Store
	Tickets  *ticket.Generator
	Machine  *lifecycle.Machine
	Guard    access.LookupGuard
	Notifier Notifier
	Metrics  *observability.Metrics

	AttachmentBucket string
	DonationBucket   string
	// Location interprets incident times submitted without a zone.
	Location *time.Location
	Now      func() time.Time
}

// NewService creates a report service with the permissive lifecycle and
// crypto-random tickets.
func NewService(s storage.Storage, objects objectstore.Store) *Service {
	return &Service{
		Storage:          s,
		Objects:          objects,
		Tickets:          ticket.NewGenerator(),
		Machine:          lifecycle.NewPermissive(),
		AttachmentBucket: "attachments",
		DonationBucket:   "attachments",
		Location:         time.UTC,
		Now:              time.Now,
	}
}

// now is truncated to the store's microsecond precision so that timestamps
// compare the same before and after a round trip.
func (s *Service) now() time.Time {
	return s.Now().UTC().Truncate(time.Microsecond)
}

// SubmitResult is what a reporter gets back after submitting.
type SubmitResult struct {
	Report       *models.Report
	TicketCode   string
	UploadErrors []*UploadError
}

// SubmitReport validates the payload, creates the report with a fresh ticket
// and then uploads each file independently. Upload failures are collected in
// the result and never undo the report.
func (s *Service) SubmitReport(ctx context.Context, p validation.ReportPayload, files []File) (*SubmitResult, error) {
	in, err := validation.ValidateReport(p, s.Location)
	if err != nil {
		return nil, err
	}
	if len(files) > config.MaxAttachments {
		return nil, validation.Field("attachments", "max", fmt.Sprintf("maksimal %d lampiran", config.MaxAttachments))
	}

	now := s.now()
	r := &models.Report{
		CategoryColumn:           in.CategoryColumn,
		ReportType:               in.ReportType,
		ReporterName:             in.ReporterName,
		StudyProgram:             in.StudyProgram,
		NIM:                      in.NIM,
		WhatsApp:                 in.WhatsApp,
		Email:                    in.Email,
		Chronology:               in.Chronology,
		IncidentTime:             in.IncidentTime,
		Status:                   models.StatusIncoming,
		PreferredFeedbackChannel: in.PreferredFeedbackChannel,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if err := s.createWithTicket(ctx, r); err != nil {
		return nil, err
	}
	log.Printf("INFO: Report %s created (%s)", r.TicketCode, r.ReportType)

	res := &SubmitResult{Report: r, TicketCode: r.TicketCode}
	for _, f := range files {
		a, err := s.storeAttachment(ctx, r, f)
		if err != nil {
			log.Printf("WARNING: Attachment %q for report %s failed: %v", f.Name, r.TicketCode, err)
			s.Metrics.UploadFailed("attachment")
			res.UploadErrors = append(res.UploadErrors, &UploadError{FileName: f.Name, Err: err})
			continue
		}
		r.Attachments = append(r.Attachments, *a)
	}

	s.Metrics.ReportSubmitted(string(r.ReportType))
	if s.Notifier != nil {
		if err := s.Notifier.NotifyNewReport(ctx, r); err != nil {
			log.Printf("WARNING: New report alert for %s not sent: %v", r.TicketCode, err)
		}
	}
	return res, nil
}

// createWithTicket retries ticket generation on uniqueness violations only.
func (s *Service) createWithTicket(ctx context.Context, r *models.Report) error {
	for attempt := 1; attempt <= config.TicketMaxAttempts; attempt++ {
		code, err := s.Tickets.NextAt(r.CreatedAt)
		if err != nil {
			return &PersistenceError{Op: "generate ticket", Err: err}
		}
		r.TicketCode = code

		err = s.Storage.CreateReport(ctx, r)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrDuplicateTicket) {
			return persistence("create report", err)
		}
		log.Printf("WARNING: Ticket %s already taken (attempt %d/%d)", code, attempt, config.TicketMaxAttempts)
	}
	return ErrTooManyAttempts
}

func (s *Service) storeAttachment(ctx context.Context, r *models.Report, f File) (*models.Attachment, error) {
	if err := checkFile(f); err != nil {
		return nil, err
	}
	key := objectstore.AttachmentKey(r.ID, f.Name, f.Content)
	if err := s.Objects.Upload(ctx, s.AttachmentBucket, key, f.Content, contentType(f)); err != nil {
		return nil, err
	}
	a := &models.Attachment{ReportID: r.ID, FilePath: key, FileName: f.Name, CreatedAt: s.now()}
	if err := s.Storage.SaveAttachment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func checkFile(f File) error {
	if len(f.Content) == 0 {
		return ErrEmptyFile
	}
	if len(f.Content) > config.MaxAttachmentBytes {
		return ErrFileTooLarge
	}
	return nil
}

func contentType(f File) string {
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		return f.ContentType
	}
	return objectstore.DetectContentType(f.Content)
}

// AttachmentURL is the public location of a stored attachment.
func (s *Service) AttachmentURL(a models.Attachment) string {
	return s.Objects.PublicURL(s.AttachmentBucket, a.FilePath)
}

// GetReportByTicketAndEmail is the reporter's tracking lookup. Any mismatch
// yields ErrNotFound. clientKey identifies the caller for throttling; empty
// disables it.
func (s *Service) GetReportByTicketAndEmail(ctx context.Context, clientKey string, p validation.TrackingPayload) (*models.TrackingView, error) {
	ticketCode, email, err := validation.ValidateTracking(p)
	if err != nil {
		return nil, err
	}

	if s.Guard != nil && clientKey != "" {
		blocked, err := s.Guard.Blocked(ctx, clientKey)
		if err != nil {
			log.Printf("WARNING: Lookup guard unavailable: %v", err)
		} else if blocked {
			s.Metrics.TrackingLookup("throttled")
			return nil, ErrThrottled
		}
	}

	r, err := s.Storage.FindReportByTicketAndEmail(ctx, ticketCode, email)
	if errors.Is(err, storage.ErrNotFound) {
		s.Metrics.TrackingLookup("not_found")
		if s.Guard != nil && clientKey != "" {
			if gerr := s.Guard.RecordFailure(ctx, clientKey); gerr != nil {
				log.Printf("WARNING: Failed to record lookup failure: %v", gerr)
			}
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistence("find report", err)
	}

	s.Metrics.TrackingLookup("found")
	view := r.ToTrackingView()
	return &view, nil
}

// SubmitDonation uploads the proof of transfer and records the donation.
// Nothing is recorded when the upload fails.
func (s *Service) SubmitDonation(ctx context.Context, p validation.DonationPayload, proof *File) (*models.Donation, error) {
	in, err := validation.ValidateDonation(p, proof != nil && len(proof.Content) > 0)
	if err != nil {
		return nil, err
	}
	if err := checkFile(*proof); err != nil {
		return nil, &UploadError{FileName: proof.Name, Err: err}
	}

	now := s.now()
	key := objectstore.DonationProofKey(now, proof.Name, proof.Content)
	if err := s.Objects.Upload(ctx, s.DonationBucket, key, proof.Content, contentType(*proof)); err != nil {
		s.Metrics.UploadFailed("donation_proof")
		log.Printf("ERROR: Donation proof upload failed: %v", err)
		return nil, &UploadError{FileName: proof.Name, Err: err}
	}

	d := &models.Donation{
		Name:              in.Name,
		StudyProgram:      in.StudyProgram,
		TransferAmount:    in.TransferAmount,
		TransferProofPath: key,
		CreatedAt:         now,
	}
	if err := s.Storage.SaveDonation(ctx, d); err != nil {
		return nil, persistence("save donation", err)
	}
	s.Metrics.DonationRecorded()
	return d, nil
}
