// Package telegram connects the portal to the admins' Telegram chat: it
// pushes new-report alerts and answers a few read-only admin commands.
package telegram

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"campusreport/backend/internal/access"
	"campusreport/backend/internal/localization"
	"campusreport/backend/internal/report"
	"campusreport/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = "Perintah:\n/ringkasan - jumlah laporan per status\n/tiket <kode> - detail satu laporan"

// BotService answers admin commands sent to the bot. Only messages from the
// configured admin chat are served.
type BotService struct {
	BotAPI      *tgbotapi.BotAPI
	Reports     *report.Service
	AdminChatID int64
	Localizer   *localization.Localizer
}

func NewBotService(bot *tgbotapi.BotAPI, reports *report.Service, adminChatID int64, l *localization.Localizer) *BotService {
	return &BotService{BotAPI: bot, Reports: reports, AdminChatID: adminChatID, Localizer: l}
}

// Run is the main loop for receiving Telegram updates. It returns when ctx
// is done.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			s.BotAPI.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			reply := s.handleCommand(ctx, update.Message)
			if reply == "" {
				continue
			}
			if _, err := s.BotAPI.Send(tgbotapi.NewMessage(update.Message.Chat.ID, reply)); err != nil {
				log.Printf("ERROR: Failed to answer Telegram command: %v", err)
			}
		}
	}
}

// handleCommand returns the reply text for msg, or "" when the bot should
// stay silent.
func (s *BotService) handleCommand(ctx context.Context, msg *tgbotapi.Message) string {
	if msg.Chat.ID != s.AdminChatID {
		log.Printf("WARNING: Ignoring Telegram command from chat %d", msg.Chat.ID)
		return ""
	}
	adminID := "telegram"
	if msg.From != nil {
		adminID = "telegram:" + strconv.FormatInt(msg.From.ID, 10)
	}
	caller := access.Admin(adminID)

	switch msg.Command() {
	case "ringkasan":
		page, err := s.Reports.ListReports(ctx, caller, storage.ReportFilter{Limit: 1})
		if err != nil {
			log.Printf("ERROR: Summary for Telegram failed: %v", err)
			return label(s.Localizer, "error.internal")
		}
		return formatSummary(s.Localizer, page.Summary)
	case "tiket":
		code := strings.ToUpper(strings.TrimSpace(msg.CommandArguments()))
		if code == "" {
			return "Gunakan: /tiket RPT-YYYYMMDD-XXXX"
		}
		r, err := s.Reports.FindReportByTicket(ctx, caller, code)
		if errors.Is(err, report.ErrNotFound) {
			return label(s.Localizer, "error.not_found")
		}
		if err != nil {
			log.Printf("ERROR: Ticket lookup for Telegram failed: %v", err)
			return label(s.Localizer, "error.internal")
		}
		return formatReport(s.Localizer, r)
	case "start", "help":
		return helpText
	default:
		return ""
	}
}
