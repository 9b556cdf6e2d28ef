package validation

import (
	"strings"
	"time"

	"campusreport/backend/internal/models"
)

// ReportPayload is the raw report submission as received from the form.
type ReportPayload struct {
	CategoryColumn           int    `json:"category_column" form:"category_column" validate:"oneof=1 2 3"`
	ReportType               string `json:"report_type" form:"report_type" validate:"required,oneof=academic facility violence_bullying_harassment administrative"`
	ReporterName             string `json:"reporter_name" form:"reporter_name" validate:"reporter_name"`
	StudyProgram             string `json:"study_program" form:"study_program" validate:"study_program"`
	NIM                      string `json:"nim" form:"nim" validate:"nim"`
	IncidentTime             string `json:"incident_time" form:"incident_time" validate:"required,datetime_any"`
	WhatsApp                 string `json:"whatsapp" form:"whatsapp" validate:"whatsapp"`
	Email                    string `json:"email" form:"email" validate:"required,email"`
	Chronology               string `json:"chronology" form:"chronology" validate:"chronology"`
	PreferredFeedbackChannel string `json:"preferred_feedback_channel" form:"preferred_feedback_channel" validate:"required,oneof=wa dashboard email"`
}

// ReportInput is a validated, normalized report submission.
type ReportInput struct {
	CategoryColumn           int
	ReportType               models.ReportType
	ReporterName             string
	StudyProgram             string
	NIM                      string
	IncidentTime             time.Time
	WhatsApp                 string
	Email                    string
	Chronology               string
	PreferredFeedbackChannel models.FeedbackChannel
}

func (p ReportPayload) trimmed() ReportPayload {
	p.ReportType = strings.TrimSpace(p.ReportType)
	p.ReporterName = strings.TrimSpace(p.ReporterName)
	p.StudyProgram = strings.TrimSpace(p.StudyProgram)
	p.NIM = strings.TrimSpace(p.NIM)
	p.IncidentTime = strings.TrimSpace(p.IncidentTime)
	p.WhatsApp = strings.TrimSpace(p.WhatsApp)
	p.Email = strings.TrimSpace(p.Email)
	p.Chronology = strings.TrimSpace(p.Chronology)
	p.PreferredFeedbackChannel = strings.TrimSpace(p.PreferredFeedbackChannel)
	return p
}

// ValidateReport checks p and returns the normalized record. Zone-less
// incident times are interpreted in loc.
func ValidateReport(p ReportPayload, loc *time.Location) (*ReportInput, error) {
	p = p.trimmed()
	if errs := check(p); len(errs) > 0 {
		return nil, errs
	}

	incident, err := ParseDateTime(p.IncidentTime, loc)
	if err != nil {
		return nil, Field("incident_time", "datetime_any", "waktu tidak valid")
	}

	return &ReportInput{
		CategoryColumn:           p.CategoryColumn,
		ReportType:               models.ReportType(p.ReportType),
		ReporterName:             p.ReporterName,
		StudyProgram:             p.StudyProgram,
		NIM:                      p.NIM,
		IncidentTime:             incident,
		WhatsApp:                 p.WhatsApp,
		Email:                    p.Email,
		Chronology:               p.Chronology,
		PreferredFeedbackChannel: models.FeedbackChannel(p.PreferredFeedbackChannel),
	}, nil
}
