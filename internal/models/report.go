package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportStatus is the workflow state of a report.
type ReportStatus string

const (
	StatusIncoming   ReportStatus = "incoming"
	StatusInProgress ReportStatus = "in_progress"
	StatusVerified   ReportStatus = "verified"
	StatusResolved   ReportStatus = "resolved"
	StatusRejected   ReportStatus = "rejected"
)

// Statuses lists every status in workflow order.
var Statuses = []ReportStatus{StatusIncoming, StatusInProgress, StatusVerified, StatusResolved, StatusRejected}

// ReportType is the closed set of complaint kinds a reporter can pick.
type ReportType string

const (
	TypeAcademic       ReportType = "academic"
	TypeFacility       ReportType = "facility"
	TypeViolence       ReportType = "violence_bullying_harassment"
	TypeAdministrative ReportType = "administrative"
)

var ReportTypes = []ReportType{TypeAcademic, TypeFacility, TypeViolence, TypeAdministrative}

// FeedbackChannel is the medium through which a reporter wants to hear back.
type FeedbackChannel string

const (
	ChannelWhatsApp  FeedbackChannel = "wa"
	ChannelDashboard FeedbackChannel = "dashboard"
	ChannelEmail     FeedbackChannel = "email"
)

var FeedbackChannels = []FeedbackChannel{ChannelWhatsApp, ChannelDashboard, ChannelEmail}

func (s ReportStatus) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (t ReportType) Valid() bool {
	for _, v := range ReportTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (c FeedbackChannel) Valid() bool {
	for _, v := range FeedbackChannels {
		if v == c {
			return true
		}
	}
	return false
}

// Report is one submitted complaint together with its children.
// TicketCode is assigned once at creation and never updated.
type Report struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TicketCode string    `gorm:"type:text;not null;uniqueIndex" json:"ticket_code"`

	CategoryColumn int        `gorm:"not null" json:"category_column"`
	ReportType     ReportType `gorm:"type:text;not null" json:"report_type"`

	ReporterName string `gorm:"type:text;not null" json:"reporter_name"`
	StudyProgram string `gorm:"type:text;not null" json:"study_program"`
	NIM          string `gorm:"column:nim;type:text;not null" json:"nim"`
	WhatsApp     string `gorm:"column:whatsapp;type:text;not null" json:"whatsapp"`
	Email        string `gorm:"type:text;not null;index" json:"email"`

	Chronology   string    `gorm:"type:text;not null" json:"chronology"`
	IncidentTime time.Time `gorm:"not null" json:"incident_time"`

	Status                   ReportStatus    `gorm:"type:text;not null;index" json:"status"`
	PreferredFeedbackChannel FeedbackChannel `gorm:"type:text;not null" json:"preferred_feedback_channel"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attachments []Attachment `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Feedback    []Feedback   `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"feedback,omitempty"`
}

func (Report) TableName() string { return "reports" }

// BeforeCreate assigns a UUID when none has been set yet.
func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// CheckIntegrity verifies the enumerated fields of a row loaded from the store.
func (r *Report) CheckIntegrity() error {
	if r.ID == uuid.Nil || r.TicketCode == "" {
		return fmt.Errorf("report row missing identity")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("report %s has unknown status %q", r.TicketCode, r.Status)
	}
	if !r.ReportType.Valid() {
		return fmt.Errorf("report %s has unknown type %q", r.TicketCode, r.ReportType)
	}
	if !r.PreferredFeedbackChannel.Valid() {
		return fmt.Errorf("report %s has unknown feedback channel %q", r.TicketCode, r.PreferredFeedbackChannel)
	}
	for i := range r.Feedback {
		if !r.Feedback[i].SentVia.Valid() {
			return fmt.Errorf("feedback %d has unknown channel %q", r.Feedback[i].ID, r.Feedback[i].SentVia)
		}
	}
	return nil
}

// Attachment is a file uploaded together with a report. Rows are insert-only.
type Attachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReportID  uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	FilePath  string    `gorm:"type:text;not null" json:"file_path"`
	FileName  string    `gorm:"type:text;not null" json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Attachment) TableName() string { return "report_attachments" }

// Feedback is an admin-authored message on a report. Rows are append-only.
type Feedback struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ReportID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"report_id"`
	AdminUserID       string          `gorm:"type:text;not null" json:"admin_user_id"`
	Message           string          `gorm:"type:text;not null" json:"message"`
	SentVia           FeedbackChannel `gorm:"type:text;not null" json:"sent_via"`
	VisibleToReporter bool            `gorm:"not null" json:"visible_to_reporter"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
}

func (Feedback) TableName() string { return "report_feedback" }

// Donation is one philanthropy transfer confirmation.
type Donation struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"type:text;not null" json:"name"`
	StudyProgram      string    `gorm:"type:text;not null" json:"study_program"`
	TransferAmount    int64     `gorm:"not null" json:"transfer_amount"`
	TransferProofPath string    `gorm:"type:text;not null" json:"transfer_proof_path"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Donation) TableName() string { return "fai_filantropi" }

func (d *Donation) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
