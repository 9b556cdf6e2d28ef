package models

import "time"

// TrackingFeedback is a feedback entry as the reporter sees it.
type TrackingFeedback struct {
	Message   string          `json:"message"`
	SentVia   FeedbackChannel `json:"sent_via"`
	CreatedAt time.Time       `json:"created_at"`
}

// TrackingView is the reporter-facing projection of a report. Admin
// identities and hidden feedback never appear in it.
type TrackingView struct {
	TicketCode               string             `json:"ticket_code"`
	CategoryColumn           int                `json:"category_column"`
	ReportType               ReportType         `json:"report_type"`
	ReporterName             string             `json:"reporter_name"`
	Status                   ReportStatus       `json:"status"`
	PreferredFeedbackChannel FeedbackChannel    `json:"preferred_feedback_channel"`
	IncidentTime             time.Time          `json:"incident_time"`
	CreatedAt                time.Time          `json:"created_at"`
	UpdatedAt                time.Time          `json:"updated_at"`
	Feedback                 []TrackingFeedback `json:"feedback"`
}

// ToTrackingView projects r for the reporter.
func (r *Report) ToTrackingView() TrackingView {
	v := TrackingView{
		TicketCode:               r.TicketCode,
		CategoryColumn:           r.CategoryColumn,
		ReportType:               r.ReportType,
		ReporterName:             r.ReporterName,
		Status:                   r.Status,
		PreferredFeedbackChannel: r.PreferredFeedbackChannel,
		IncidentTime:             r.IncidentTime,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
		Feedback:                 make([]TrackingFeedback, 0, len(r.Feedback)),
	}
	for _, fb := range r.Feedback {
		if !fb.VisibleToReporter {
			continue
		}
		v.Feedback = append(v.Feedback, TrackingFeedback{
			Message:   fb.Message,
			SentVia:   fb.SentVia,
			CreatedAt: fb.CreatedAt,
		})
	}
	return v
}
