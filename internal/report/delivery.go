package report

import (
	"net/url"
	"strings"

	"campusreport/backend/internal/models"
)

// DeliveryLink builds the link an admin follows to deliver a message by hand.
// It returns "" for the dashboard channel and when contact data is missing.
func DeliveryLink(channel models.FeedbackChannel, r *models.Report, message string) string {
	switch channel {
	case models.ChannelWhatsApp:
		number := NormalizeWhatsApp(r.WhatsApp)
		if number == "" {
			return ""
		}
		return "https://wa.me/" + number + "?text=" + url.QueryEscape(message)
	case models.ChannelEmail:
		if r.Email == "" {
			return ""
		}
		q := url.Values{}
		q.Set("subject", "Tindak lanjut laporan "+r.TicketCode)
		q.Set("body", message)
		// mailto wants %20, not "+".
		return "mailto:" + r.Email + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
	default:
		return ""
	}
}

// NormalizeWhatsApp keeps digits only and rewrites the Indonesian trunk
// prefix 0 to the 62 country code.
func NormalizeWhatsApp(raw string) string {
	var b strings.Builder
	for _, c := range raw {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	return digits
}
