package config

import "time"

const (
	// Reporter identity
	MinReporterNameLength = 2
	MinStudyProgramLength = 2
	MinNIMLength          = 5
	MinWhatsAppLength     = 9
	MinChronologyLength   = 20

	// Ticket
	TicketPrefix       = "RPT-"
	TicketSuffixLength = 4
	TicketMaxAttempts  = 5

	// Donation (rupiah)
	MinTransferAmount = 1000

	// Uploads
	MaxAttachmentBytes = 10 << 20
	MaxAttachments     = 10

	// Tracking lookups
	LookupMaxFailures = 10
	LookupWindow      = 15 * time.Minute

	// Admin listing
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Category describes one entry of the fixed three-column taxonomy shown on the landing page.
type Category struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var Categories = map[int]Category{
	1: {ID: 1, Title: "Lapor Darurat & Pelanggaran", Description: "Perundungan, kekerasan seksual, pelecehan, dan tindakan serius lainnya."},
	2: {ID: 2, Title: "Pendampingan & Konseling", Description: "Kehilangan, tekanan hidup, masalah pribadi, dan kondisi emosional."},
	3: {ID: 3, Title: "Masalah Fasilitas & Akademik", Description: "Fasilitas kampus, layanan akademik, sistem administrasi, dosen."},
}

// CategoryPriority ranks categories for the admin queue; higher is more urgent.
// Emergencies and violations come first.
var CategoryPriority = map[int]int{
	1: 3,
	2: 2,
	3: 1,
}
