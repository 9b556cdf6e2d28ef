package validation

import (
	"strings"

	"campusreport/backend/internal/models"
)

// FeedbackPayload is an admin message on a report. An empty channel means
// "use the reporter's preferred channel".
type FeedbackPayload struct {
	Message string `json:"message" form:"message" validate:"required"`
	Channel string `json:"channel" form:"channel" validate:"omitempty,oneof=wa dashboard email"`
}

// ValidateFeedback trims the message and rejects blank text or unknown channels.
func ValidateFeedback(p FeedbackPayload) (string, models.FeedbackChannel, error) {
	p.Message = strings.TrimSpace(p.Message)
	p.Channel = strings.TrimSpace(p.Channel)
	if errs := check(p); len(errs) > 0 {
		return "", "", errs
	}
	return p.Message, models.FeedbackChannel(p.Channel), nil
}

// StatusPayload carries an admin's target status.
type StatusPayload struct {
	Status string `json:"status" form:"status" validate:"required,oneof=incoming in_progress verified resolved rejected"`
}

func ValidateStatus(p StatusPayload) (models.ReportStatus, error) {
	p.Status = strings.TrimSpace(p.Status)
	if errs := check(p); len(errs) > 0 {
		return "", errs
	}
	return models.ReportStatus(p.Status), nil
}

// TrackingPayload is the reporter's lookup pair.
type TrackingPayload struct {
	Ticket string `json:"ticket" form:"ticket" validate:"required"`
	Email  string `json:"email" form:"email" validate:"required"`
}

func ValidateTracking(p TrackingPayload) (ticket, email string, err error) {
	p.Ticket = strings.TrimSpace(p.Ticket)
	p.Email = strings.TrimSpace(p.Email)
	if errs := check(p); len(errs) > 0 {
		return "", "", errs
	}
	return p.Ticket, p.Email, nil
}
