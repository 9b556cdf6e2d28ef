package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strconv"

	"campusreport/backend/internal/lifecycle"
	"campusreport/backend/internal/report"
	"campusreport/backend/internal/validation"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// writeError maps service errors to HTTP. Persistence failures carry the
// underlying message only when verbose is set (admin routes).
func (h *Handler) writeError(c *gin.Context, err error, verbose bool) {
	var (
		verrs validation.Errors
		perr  *report.PersistenceError
		uerr  *report.UploadError
	)
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation", Message: h.text(c, "error.validation"), Fields: verrs})
	case errors.Is(err, report.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: h.text(c, "error.not_found")})
	case errors.Is(err, report.ErrNoChange):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no_change", Message: h.text(c, "error.no_change")})
	case errors.Is(err, lifecycle.ErrTransitionNotAllowed), errors.Is(err, lifecycle.ErrUnknownStatus):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "transition_not_allowed", Message: h.text(c, "error.transition")})
	case errors.Is(err, report.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: h.text(c, "error.unauthorized")})
	case errors.Is(err, report.ErrThrottled):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "throttled", Message: h.text(c, "error.throttled")})
	case errors.Is(err, report.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file_too_large", Message: h.text(c, "error.file_too_large")})
	case errors.Is(err, report.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty_file", Message: h.text(c, "error.file_empty")})
	case errors.As(err, &uerr):
		log.Printf("ERROR: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "upload", Message: h.text(c, "error.upload")})
	case errors.As(err, &perr):
		log.Printf("ERROR: %v", err)
		msg := h.text(c, "error.internal")
		if verbose {
			msg = perr.Error()
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "persistence", Message: msg})
	case errors.Is(err, report.ErrTooManyAttempts):
		log.Printf("ERROR: %v", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "unavailable", Message: h.text(c, "error.internal")})
	default:
		log.Printf("ERROR: Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal", Message: h.text(c, "error.internal")})
	}
}

// uploadMessage is the reporter-facing text for a failed file. Storage and
// network details stay in the server log.
func (h *Handler) uploadMessage(c *gin.Context, err error) string {
	switch {
	case errors.Is(err, report.ErrFileTooLarge):
		return h.text(c, "error.file_too_large")
	case errors.Is(err, report.ErrEmptyFile):
		return h.text(c, "error.file_empty")
	default:
		return h.text(c, "error.upload")
	}
}

// badRequest answers a payload that could not be decoded. payload is the
// struct the request was bound into, or nil when the body itself is broken.
func (h *Handler) badRequest(c *gin.Context, err error, payload any) {
	log.Printf("WARNING: Bad request on %s: %v", c.FullPath(), err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation",
		Message: h.text(c, "error.validation"),
		Fields:  bindErrors(c, err, payload),
	})
}

// bindErrors names the fields gin could not convert. JSON decoding reports
// the field itself; form binding does not, so numeric form fields are
// re-parsed to find the culprit.
func bindErrors(c *gin.Context, err error, payload any) validation.Errors {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return validation.Field(ute.Field, "type", "format tidak valid")
	}

	var out validation.Errors
	if payload != nil {
		t := reflect.TypeOf(payload)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			switch f.Type.Kind() {
			case reflect.Int, reflect.Int64:
			default:
				continue
			}
			name := f.Tag.Get("form")
			raw, ok := c.GetPostForm(name)
			if !ok {
				raw, ok = c.GetQuery(name)
			}
			if !ok || raw == "" {
				continue
			}
			if _, perr := strconv.ParseInt(raw, 10, 64); perr != nil {
				out = append(out, validation.FieldError{Field: name, Rule: "type", Message: "harus berupa angka"})
			}
		}
	}
	if len(out) == 0 {
		return validation.Field("payload", "invalid", "format data tidak valid")
	}
	return out
}
