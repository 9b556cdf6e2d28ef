package telegram

import (
	"context"
	"fmt"
	"strings"

	"campusreport/backend/internal/analysis"
	"campusreport/backend/internal/config"
	"campusreport/backend/internal/localization"
	"campusreport/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI the portal uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// AdminNotifier posts a plain-text alert to the admin chat for every new
// report. It never includes the reporter's contact details.
type AdminNotifier struct {
	Bot       Sender
	ChatID    int64
	Localizer *localization.Localizer
}

func NewAdminNotifier(bot Sender, chatID int64, l *localization.Localizer) *AdminNotifier {
	return &AdminNotifier{Bot: bot, ChatID: chatID, Localizer: l}
}

func (n *AdminNotifier) NotifyNewReport(_ context.Context, r *models.Report) error {
	msg := tgbotapi.NewMessage(n.ChatID, formatReportAlert(n.Localizer, r))
	if _, err := n.Bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func label(l *localization.Localizer, key string) string {
	if l == nil {
		return key
	}
	return l.GetString(localization.DefaultLanguage, key)
}

func formatReportAlert(l *localization.Localizer, r *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", label(l, "alert.new_report"), r.TicketCode)
	if c, ok := config.Categories[r.CategoryColumn]; ok {
		fmt.Fprintf(&b, "Kategori: %s (prioritas %d)\n", c.Title, analysis.GetPriority(r.CategoryColumn))
	}
	fmt.Fprintf(&b, "Jenis: %s\n", label(l, "type."+string(r.ReportType)))
	fmt.Fprintf(&b, "Prodi: %s\n", r.StudyProgram)
	fmt.Fprintf(&b, "Waktu kejadian: %s\n", r.IncidentTime.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Umpan balik via: %s\n", label(l, "channel."+string(r.PreferredFeedbackChannel)))
	if len(r.Attachments) > 0 {
		fmt.Fprintf(&b, "Lampiran: %d\n", len(r.Attachments))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatReport(l *localization.Localizer, r *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]\n", r.TicketCode, label(l, "status."+string(r.Status)))
	fmt.Fprintf(&b, "Pelapor: %s (%s)\n", r.ReporterName, r.StudyProgram)
	fmt.Fprintf(&b, "Jenis: %s\n", label(l, "type."+string(r.ReportType)))
	fmt.Fprintf(&b, "Diperbarui: %s\n", r.UpdatedAt.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Umpan balik: %d", len(r.Feedback))
	return b.String()
}

func formatSummary(l *localization.Localizer, s analysis.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d (terbuka %d, selesai %d)", s.Total, s.Open, s.Closed)
	for _, st := range models.Statuses {
		fmt.Fprintf(&b, "\n%s: %d", label(l, "status."+string(st)), s.ByStatus[st])
	}
	return b.String()
}
