package handler_test

import (
	"bytes"
	"context"
	"errors"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusreport/backend/internal/access"
	"campusreport/backend/internal/api/handler"
	"campusreport/backend/internal/auth"
	"campusreport/backend/internal/config"
	"campusreport/backend/internal/localization"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/objectstore"
	"campusreport/backend/internal/observability"
	"campusreport/backend/internal/report"
	"campusreport/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type fixture struct {
	router  *gin.Engine
	store   *storage.MemoryStore
	objects *objectstore.Memory
	token   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	return newFixtureWith(t, store, store)
}

// newFixtureWith lets a test put a different Storage in front of store.
func newFixtureWith(t *testing.T, store *storage.MemoryStore, backend storage.Storage) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	objects := objectstore.NewMemory()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	svc := report.NewService(backend, objects)
	svc.Metrics = metrics
	svc.Guard = access.NewMemoryGuard(2, time.Minute)

	l, err := localization.New()
	require.NoError(t, err)

	h := handler.NewHandler(svc, l, metrics)
	h.Gatherer = reg
	h.JWTSecret = secret

	token, err := auth.IssueToken(secret, "", "admin-1", time.Hour)
	require.NoError(t, err)

	return &fixture{router: handler.NewRouter(h), store: store, objects: objects, token: token}
}

func (f *fixture) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func reportBody() map[string]any {
	return map[string]any{
		"category_column":            3,
		"report_type":                "facility",
		"reporter_name":              "Ayu",
		"study_program":              "Informatika",
		"nim":                        "12345",
		"incident_time":              "2026-03-01T09:30:00Z",
		"whatsapp":                   "081234567",
		"email":                      "ayu@x.com",
		"chronology":                 "Lampu di lorong gedung B.",
		"preferred_feedback_channel": "wa",
	}
}

func (f *fixture) submit(t *testing.T) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/reports", reportBody(), false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["ticket_code"].(string)
}

func (f *fixture) reportID(t *testing.T, ticketCode string) string {
	t.Helper()
	w := f.do(t, http.MethodGet, "/api/admin/reports?q="+ticketCode, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	reports := decode(t, w)["reports"].([]any)
	require.Len(t, reports, 1)
	return reports[0].(map[string]any)["id"].(string)
}

func TestHealthAndCategories(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/categories", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode(t, w)["categories"].([]any)
	require.Len(t, cats, 3)
	for i, c := range cats {
		assert.EqualValues(t, i+1, c.(map[string]any)["id"])
	}
}

func TestSubmitReport_JSON(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/reports", reportBody(), false)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Regexp(t, `^RPT-\d{8}-[A-Z0-9]{4}$`, body["ticket_code"])
	assert.Equal(t, "Laporan berhasil dikirim. Simpan kode tiket Anda.", body["message"])
	assert.Empty(t, body["upload_errors"])
}

func TestSubmitReport_EnglishMessage(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(reportBody()))
	req := httptest.NewRequest(http.MethodPost, "/api/reports", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Report submitted. Keep your ticket code.", decode(t, w)["message"])
}

func TestSubmitReport_Multipart(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range reportBody() {
		require.NoError(t, mw.WriteField(k, fmt.Sprint(v)))
	}
	fw, err := mw.CreateFormFile("attachments", "foto.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	empty, err := mw.CreateFormFile("attachments", "kosong.txt")
	require.NoError(t, err)
	_, err = empty.Write(nil)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	uploadErrors := body["upload_errors"].([]any)
	require.Len(t, uploadErrors, 1)
	assert.Equal(t, "kosong.txt", uploadErrors[0].(map[string]any)["file_name"])
	assert.Equal(t, 1, f.objects.Len())
}

func TestSubmitReport_Validation(t *testing.T) {
	f := newFixture(t)
	body := reportBody()
	body["chronology"] = "pendek"
	body["email"] = "bukan-email"

	w := f.do(t, http.MethodPost, "/api/reports", body, false)

	require.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	assert.Equal(t, "validation", out["error"])
	fields := map[string]bool{}
	for _, fe := range out["fields"].([]any) {
		fields[fe.(map[string]any)["field"].(string)] = true
	}
	assert.True(t, fields["chronology"])
	assert.True(t, fields["email"])
}

func TestTrackReport(t *testing.T) {
	f := newFixture(t)
	code := f.submit(t)

	w := f.do(t, http.MethodGet, "/api/track?ticket="+code+"&email=ayu@x.com", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)["report"].(map[string]any)
	assert.Equal(t, code, view["ticket_code"])
	assert.Equal(t, "incoming", view["status"])
	assert.NotContains(t, view, "email")
	assert.NotContains(t, view, "whatsapp")

	w = f.do(t, http.MethodPost, "/api/track", map[string]string{"ticket": code, "email": "other@x.com"}, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode(t, w)["error"])
}

func TestTrackReport_Throttled(t *testing.T) {
	f := newFixture(t)
	path := "/api/track?ticket=RPT-20260302-ZZZZ&email=x@x.com"

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, path, nil, false).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, path, nil, false).Code)

	w := f.do(t, http.MethodGet, path, nil, false)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAdmin_RequiresToken(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/admin/reports", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_ListReports(t *testing.T) {
	f := newFixture(t)
	f.submit(t)
	f.submit(t)

	w := f.do(t, http.MethodGet, "/api/admin/reports?status=incoming&limit=1", nil, true)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	reports := body["reports"].([]any)
	require.Len(t, reports, 1)
	assert.EqualValues(t, 1, reports[0].(map[string]any)["priority"])
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 2, meta["total"])
	assert.EqualValues(t, 1, meta["limit"])
	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, 2, summary["open"])
}

func TestAdmin_StatusLifecycle(t *testing.T) {
	f := newFixture(t)
	id := f.reportID(t, f.submit(t))

	w := f.do(t, http.MethodPatch, "/api/admin/reports/"+id+"/status", map[string]string{"status": "in_progress"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "in_progress", decode(t, w)["status"])

	w = f.do(t, http.MethodPatch, "/api/admin/reports/"+id+"/status", map[string]string{"status": "in_progress"}, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPatch, "/api/admin/reports/"+id+"/status", map[string]string{"status": "archived"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/admin/reports/"+id+"/transitions", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w)["transitions"], "in_progress")
}

func TestAdmin_UnknownReport(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/admin/reports/not-a-uuid", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/admin/reports/5f0c6f12-6a3e-4d0a-9a55-3c1f1b5e7a10", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_Feedback(t *testing.T) {
	f := newFixture(t)
	code := f.submit(t)
	id := f.reportID(t, code)

	w := f.do(t, http.MethodPost, "/api/admin/reports/"+id+"/feedback", map[string]string{"message": "Sudah diperbaiki"}, true)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "wa", body["feedback"].(map[string]any)["sent_via"])
	assert.Equal(t, "https://wa.me/6281234567?text=Sudah+diperbaiki", body["delivery_link"])

	w = f.do(t, http.MethodGet, "/api/admin/reports/"+id+"/feedback", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["feedback"], 1)

	w = f.do(t, http.MethodGet, "/api/track?ticket="+code+"&email=ayu@x.com", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	fb := decode(t, w)["report"].(map[string]any)["feedback"].([]any)
	require.Len(t, fb, 1)
	assert.NotContains(t, fb[0], "admin_user_id")
}

func TestSubmitDonation(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Budi"))
	require.NoError(t, mw.WriteField("study_program", "Informatika"))
	require.NoError(t, mw.WriteField("transfer_amount", "50000"))
	fw, err := mw.CreateFormFile("proof", "bukti.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\xff\xd8\xff\xe0 jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := f.postMultipart(t, "/api/donations", &buf, mw)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, f.store.Donations(), 1)
	assert.EqualValues(t, 50000, f.store.Donations()[0].TransferAmount)
	assert.Equal(t, 1, f.objects.Len())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/health", nil, false)

	w := f.do(t, http.MethodGet, "/metrics", nil, false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "campus_report_http_request_duration_seconds")
}

func (f *fixture) postMultipart(t *testing.T, path string, body *bytes.Buffer, mw *multipart.Writer) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// brokenAttachments fails every attachment insert with a driver error.
type brokenAttachments struct {
	*storage.MemoryStore
}

func (brokenAttachments) SaveAttachment(context.Context, *models.Attachment) error {
	return errors.New(`pq: password authentication failed for user "service_role" host=db.internal`)
}

func TestSubmitReport_UploadErrorsHideStorageDetails(t *testing.T) {
	// Arrange
	store := storage.NewMemoryStore()
	f := newFixtureWith(t, store, brokenAttachments{store})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range reportBody() {
		require.NoError(t, mw.WriteField(k, fmt.Sprint(v)))
	}
	fw, err := mw.CreateFormFile("attachments", "a.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	// Act
	w := f.postMultipart(t, "/api/reports", &buf, mw)

	// Assert
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "service_role")
	assert.NotContains(t, w.Body.String(), "db.internal")
	uploadErrors := decode(t, w)["upload_errors"].([]any)
	require.Len(t, uploadErrors, 1)
	assert.Equal(t, "Gagal mengunggah berkas.", uploadErrors[0].(map[string]any)["message"])
}

func TestTrackReport_ForwardedForIsIgnoredByDefault(t *testing.T) {
	f := newFixture(t)
	path := "/api/track?ticket=RPT-20260302-ZZZZ&email=x@x.com"

	var codes []int
	for i := 1; i <= 3; i++ {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}, codes)
}

func TestNewRouter_TrustedProxyForwardsClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handler.NewHandler(nil, nil, nil)
	h.TrustedProxies = []string{"203.0.113.0/24"}
	r := handler.NewRouter(h)

	var seen string
	r.GET("/ip", func(c *gin.Context) { seen = c.ClientIP() })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "198.51.100.7", seen)

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "192.0.2.50:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "192.0.2.50", seen, "untrusted peer cannot pick its own address")
}

func TestSubmitDonation_OversizedProof(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Budi"))
	require.NoError(t, mw.WriteField("study_program", "Informatika"))
	require.NoError(t, mw.WriteField("transfer_amount", "50000"))
	fw, err := mw.CreateFormFile("proof", "bukti.jpg")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte{0xff}, config.MaxAttachmentBytes+1))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := f.postMultipart(t, "/api/donations", &buf, mw)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "file_too_large", decode(t, w)["error"])
	assert.Empty(t, f.store.Donations())
	assert.Equal(t, 0, f.objects.Len())
}

func TestSubmitReport_UnparsableFields(t *testing.T) {
	f := newFixture(t)

	fieldsOf := func(w *httptest.ResponseRecorder) []string {
		var names []string
		for _, fe := range decode(t, w)["fields"].([]any) {
			names = append(names, fe.(map[string]any)["field"].(string))
		}
		return names
	}

	t.Run("json string for an int", func(t *testing.T) {
		body := reportBody()
		body["category_column"] = "tiga"

		w := f.do(t, http.MethodPost, "/api/reports", body, false)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decode(t, w)["error"])
		assert.Equal(t, []string{"category_column"}, fieldsOf(w))
	})

	t.Run("multipart letters for an int", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, v := range reportBody() {
			if k == "category_column" {
				v = "abc"
			}
			require.NoError(t, mw.WriteField(k, fmt.Sprint(v)))
		}
		require.NoError(t, mw.Close())

		w := f.postMultipart(t, "/api/reports", &buf, mw)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"category_column"}, fieldsOf(w))
	})
}
