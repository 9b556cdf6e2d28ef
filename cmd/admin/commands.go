package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"campusreport/backend/internal/access"
	"campusreport/backend/internal/analysis"
	"campusreport/backend/internal/auth"
	"campusreport/backend/internal/config"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/objectstore"
	"campusreport/backend/internal/report"
	"campusreport/backend/internal/storage"
	"campusreport/backend/internal/validation"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	adminID      string
	statusFilter string
	listLimit    int
	channel      string
	tokenTTL     time.Duration

	cfg *config.Config
	svc *report.Service

	// openService is replaced in tests.
	openService = func(cfg *config.Config) (*report.Service, error) {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		s := report.NewService(storage.NewStorageService(db), objectstore.NewMemory())
		s.Location = cfg.Location
		return s, nil
	}

	rootCmd = &cobra.Command{
		Use:           "admin",
		Short:         "Operate the campus report portal from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			return err
		},
	}

	listCmd = &cobra.Command{
		Use:     "list",
		Short:   "List the newest reports",
		PreRunE: connect,
		RunE:    runList,
	}
	showCmd = &cobra.Command{
		Use:     "show [ticket]",
		Short:   "Show one report with its feedback",
		Args:    cobra.ExactArgs(1),
		PreRunE: connect,
		RunE:    runShow,
	}
	statusCmd = &cobra.Command{
		Use:     "status [ticket] [status]",
		Short:   "Move a report to a new status",
		Args:    cobra.ExactArgs(2),
		PreRunE: connect,
		RunE:    runStatus,
	}
	feedbackCmd = &cobra.Command{
		Use:     "feedback [ticket] [message]",
		Short:   "Record a feedback message on a report",
		Args:    cobra.MinimumNArgs(2),
		PreRunE: connect,
		RunE:    runFeedback,
	}
	tokenCmd = &cobra.Command{
		Use:   "token [admin-id]",
		Short: "Issue an admin bearer token signed with AUTH_JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE:  runToken,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&adminID, "as", "cli", "admin identity recorded on changes")
	listCmd.Flags().StringVar(&statusFilter, "status", "", "comma separated statuses to include")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum number of reports")
	feedbackCmd.Flags().StringVar(&channel, "channel", "", "wa, dashboard or email (default: the reporter's preference)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")

	rootCmd.AddCommand(listCmd, showCmd, statusCmd, feedbackCmd, tokenCmd)
}

func connect(cmd *cobra.Command, args []string) error {
	var err error
	svc, err = openService(cfg)
	return err
}

func caller() access.Caller {
	return access.Admin(adminID)
}

func findByTicket(cmd *cobra.Command, code string) (*models.Report, error) {
	return svc.FindReportByTicket(cmd.Context(), caller(), strings.ToUpper(strings.TrimSpace(code)))
}

func runList(cmd *cobra.Command, args []string) error {
	f := storage.ReportFilter{Limit: listLimit}
	for _, s := range strings.Split(statusFilter, ",") {
		if s = strings.TrimSpace(s); s != "" {
			f.Statuses = append(f.Statuses, models.ReportStatus(s))
		}
	}
	page, err := svc.ListReports(cmd.Context(), caller(), f.Normalized())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range page.Reports {
		fmt.Fprintf(out, "%s  %-12s  P%d  %-30s  %s\n",
			r.TicketCode, r.Status, analysis.GetPriority(r.CategoryColumn), r.ReportType, r.CreatedAt.Format(time.DateTime))
	}
	fmt.Fprintf(out, "%d of %d reports, %d open, %d closed\n", len(page.Reports), page.Total, page.Summary.Open, page.Summary.Closed)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	r, err := findByTicket(cmd, args[0])
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), r)
	return nil
}

func printReport(out io.Writer, r *models.Report) {
	fmt.Fprintf(out, "Ticket:    %s\n", r.TicketCode)
	fmt.Fprintf(out, "ID:        %s\n", r.ID)
	fmt.Fprintf(out, "Status:    %s\n", r.Status)
	fmt.Fprintf(out, "Type:      %s (column %d)\n", r.ReportType, r.CategoryColumn)
	fmt.Fprintf(out, "Reporter:  %s, %s, %s\n", r.ReporterName, r.StudyProgram, r.NIM)
	fmt.Fprintf(out, "Contact:   %s / %s (prefers %s)\n", r.WhatsApp, r.Email, r.PreferredFeedbackChannel)
	fmt.Fprintf(out, "Incident:  %s\n", r.IncidentTime.Format(time.RFC3339))
	fmt.Fprintf(out, "\n%s\n", r.Chronology)
	for _, a := range r.Attachments {
		fmt.Fprintf(out, "  [file] %s -> %s\n", a.FileName, a.FilePath)
	}
	for _, fb := range r.Feedback {
		fmt.Fprintf(out, "  [%s via %s by %s] %s\n", fb.CreatedAt.Format(time.DateTime), fb.SentVia, fb.AdminUserID, fb.Message)
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	r, err := findByTicket(cmd, args[0])
	if err != nil {
		return err
	}
	updated, err := svc.UpdateStatus(cmd.Context(), caller(), r.ID, validation.StatusPayload{Status: args[1]})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.TicketCode, updated.Status)
	return nil
}

func runFeedback(cmd *cobra.Command, args []string) error {
	r, err := findByTicket(cmd, args[0])
	if err != nil {
		return err
	}
	receipt, err := svc.SendFeedback(cmd.Context(), caller(), r.ID, validation.FeedbackPayload{
		Message: strings.Join(args[1:], " "),
		Channel: channel,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Feedback %d recorded via %s\n", receipt.Feedback.ID, receipt.Feedback.SentVia)
	if receipt.DeliveryLink != "" {
		fmt.Fprintf(out, "Deliver it: %s\n", receipt.DeliveryLink)
	}
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("admin id must not be empty")
	}
	token, err := auth.IssueToken(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, args[0], tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
