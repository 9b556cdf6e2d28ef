package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"campusreport/backend/internal/config"
	"campusreport/backend/internal/report"
	"campusreport/backend/internal/validation"

	"github.com/gin-gonic/gin"
)

type uploadErrorView struct {
	FileName string `json:"file_name"`
	Message  string `json:"message"`
}

type submitResponse struct {
	TicketCode   string            `json:"ticket_code"`
	Message      string            `json:"message"`
	UploadErrors []uploadErrorView `json:"upload_errors"`
}

// SubmitReport accepts multipart (with "attachments" files) or JSON.
func (h *Handler) SubmitReport(c *gin.Context) {
	var p validation.ReportPayload
	if err := c.ShouldBind(&p); err != nil {
		h.badRequest(c, err, &p)
		return
	}

	files, err := readFiles(c, "attachments", "attachments[]")
	if err != nil {
		h.badRequest(c, err, nil)
		return
	}

	res, err := h.Reports.SubmitReport(c.Request.Context(), p, files)
	if err != nil {
		h.writeError(c, err, false)
		return
	}

	resp := submitResponse{
		TicketCode:   res.TicketCode,
		Message:      h.text(c, "report.submitted"),
		UploadErrors: make([]uploadErrorView, 0, len(res.UploadErrors)),
	}
	for _, ue := range res.UploadErrors {
		resp.UploadErrors = append(resp.UploadErrors, uploadErrorView{FileName: ue.FileName, Message: h.uploadMessage(c, ue.Err)})
	}
	if len(resp.UploadErrors) > 0 {
		resp.Message = h.text(c, "report.submitted_partial")
	}
	c.JSON(http.StatusCreated, resp)
}

// TrackReport is the reporter's ticket + email lookup.
func (h *Handler) TrackReport(c *gin.Context) {
	var p validation.TrackingPayload
	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&p)
	} else {
		err = c.ShouldBind(&p)
	}
	if err != nil {
		h.badRequest(c, err, &p)
		return
	}

	view, err := h.Reports.GetReportByTicketAndEmail(c.Request.Context(), c.ClientIP(), p)
	if err != nil {
		h.writeError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":       view,
		"status_label": h.text(c, "status."+string(view.Status)),
	})
}

// SubmitDonation expects multipart with the transfer proof in "proof".
func (h *Handler) SubmitDonation(c *gin.Context) {
	var p validation.DonationPayload
	if err := c.ShouldBind(&p); err != nil {
		h.badRequest(c, err, &p)
		return
	}

	files, err := readFiles(c, "proof")
	if err != nil {
		h.badRequest(c, err, nil)
		return
	}
	var proof *report.File
	if len(files) > 0 {
		proof = &files[0]
	}

	d, err := h.Reports.SubmitDonation(c.Request.Context(), p, proof)
	if err != nil {
		h.writeError(c, err, false)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  h.text(c, "donation.submitted"),
		"donation": d,
	})
}

// readFiles collects the uploaded files under any of fields. A request that
// is not multipart has no files.
func readFiles(c *gin.Context, fields ...string) ([]report.File, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	var files []report.File
	for _, field := range fields {
		for _, fh := range form.File[field] {
			f, err := readFile(fh)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
		}
	}
	return files, nil
}

// readFile reads at most one byte past the size limit so the service can
// still tell that the file is too large.
func readFile(fh *multipart.FileHeader) (report.File, error) {
	src, err := fh.Open()
	if err != nil {
		return report.File{}, err
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, config.MaxAttachmentBytes+1))
	if err != nil {
		return report.File{}, err
	}
	return report.File{Name: fh.Filename, Content: content, ContentType: fh.Header.Get("Content-Type")}, nil
}
