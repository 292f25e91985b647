package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/excel"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type fakeTimeEntryService struct {
	timeentry.TimeEntryService
	listReq timeentry.ListRequest
}

func (f *fakeTimeEntryService) List(_ context.Context, req timeentry.ListRequest) (timeentry.ListResponse, error) {
	f.listReq = req
	return timeentry.ListResponse{
		Entries:    []timeentry.EntryResponse{{ID: 1, Office: "Dallas"}},
		TotalCount: 41,
		Page:       2,
		Limit:      20,
		TotalPages: 3,
	}, nil
}

func (f *fakeTimeEntryService) FilterOptions(_ context.Context) (timeentry.FilterOptions, error) {
	return timeentry.FilterOptions{Years: []int{2024, 2025}, Offices: []string{"Dallas"}}, nil
}

type fakeKPIService struct {
	kpi.KPIService
	filter   timeentry.Filter
	shiftReq kpi.ShiftRequest
	empReq   kpi.EmployeeRequest
	err      error
}

func (f *fakeKPIService) All(_ context.Context, filter timeentry.Filter) (kpi.KPIResult, error) {
	f.filter = filter
	return kpi.KPIResult{TotalEntries: 7, FingerRate: 71.43}, f.err
}

func (f *fakeKPIService) ByShift(_ context.Context, req kpi.ShiftRequest) ([]kpi.ShiftKPI, error) {
	f.shiftReq = req
	return []kpi.ShiftKPI{{Shift: "1"}}, nil
}

func (f *fakeKPIService) ByEmployee(_ context.Context, req kpi.EmployeeRequest) (kpi.EmployeeListResponse, error) {
	f.empReq = req
	return kpi.EmployeeListResponse{
		Employees:  []kpi.EmployeeKPI{{ApplicantID: "A2", NeedsEnrollment: true}},
		TotalCount: 1,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: 1,
	}, nil
}

func (f *fakeKPIService) Thresholds() kpi.Thresholds {
	return kpi.DefaultThresholds()
}

type fakeReportService struct {
	report.ReportService
	req report.ReportRequest
	err error
}

func (f *fakeReportService) FullReport(_ context.Context, req report.ReportRequest) (report.Report, error) {
	f.req = req
	if f.err != nil {
		return report.Report{}, f.err
	}
	return report.Report{
		FileName:    "BSTT_Report_2025_20250310.xlsx",
		ContentType: excel.ContentType,
		Content:     []byte("PK-workbook"),
	}, nil
}

type fakeETLService struct {
	etl.ETLService
	upload  etl.UploadRequest
	content string
	syncReq etl.SyncRequest
	syncErr error
}

func (f *fakeETLService) ProcessUpload(_ context.Context, req etl.UploadRequest) (etl.UploadResponse, error) {
	b, err := io.ReadAll(req.File)
	if err != nil {
		return etl.UploadResponse{}, err
	}
	f.upload = req
	f.content = string(b)
	return etl.UploadResponse{ID: "upload-1", FileName: req.FileName, Status: etl.StatusCompleted, RecordsCreated: 2}, nil
}

func (f *fakeETLService) SyncDirectory(_ context.Context, req etl.SyncRequest) (etl.SyncResponse, error) {
	f.syncReq = req
	if f.syncErr != nil {
		return etl.SyncResponse{}, f.syncErr
	}
	return etl.SyncResponse{Imports: []etl.ImportResult{{Year: 2025, RecordsInserted: 10}}}, nil
}

type testServer struct {
	router  *chi.Mux
	jwt     jwt.Service
	entries *fakeTimeEntryService
	kpis    *fakeKPIService
	reports *fakeReportService
	etl     *fakeETLService
}

func newTestServer() *testServer {
	s := &testServer{
		jwt:     jwt.NewJWTService(handlerTestSecret, "1h"),
		entries: &fakeTimeEntryService{},
		kpis:    &fakeKPIService{},
		reports: &fakeReportService{},
		etl:     &fakeETLService{},
	}
	s.router = NewRouter(
		RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		s.jwt,
		NewTimeEntryHandler(s.entries),
		NewKPIHandler(s.kpis),
		NewReportHandler(s.reports),
		NewETLHandler(s.etl),
	)
	return s
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) token(t *testing.T, isAdmin bool) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken("ops-user", isAdmin)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestRouter_Heartbeat(t *testing.T) {
	s := newTestServer()
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer()
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestKPIHandler_All_ParsesFilter(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, httptest.NewRequest(http.MethodGet,
		"/api/v1/kpis?year=2025&offices=Dallas,Austin&offices=Waco&entry_type=Finger&week_number_gte=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode(t, rec)
	assert.True(t, env.Success)
	var result kpi.KPIResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 7, result.TotalEntries)

	f := s.kpis.filter
	require.NotNil(t, f.Year)
	assert.Equal(t, 2025, *f.Year)
	assert.Equal(t, []string{"Dallas", "Austin", "Waco"}, f.Offices)
	require.NotNil(t, f.EntryType)
	assert.Equal(t, "Finger", *f.EntryType)
	require.NotNil(t, f.WeekNumberGTE)
	assert.Equal(t, 3, *f.WeekNumberGTE)
	assert.Nil(t, f.Office)
}

func TestKPIHandler_All_Errors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		serviceErr error
		wantStatus int
		wantField  string
	}{
		{
			name:       "non numeric year",
			url:        "/api/v1/kpis?year=twenty",
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "year",
		},
		{
			name: "service validation error",
			url:  "/api/v1/kpis?week_number=60",
			serviceErr: validator.ValidationErrors{{
				Field:   "week_number",
				Message: "week_number must be between 1 and 53",
			}},
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "week_number",
		},
		{
			name:       "unexpected error",
			url:        "/api/v1/kpis",
			serviceErr: assert.AnError,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.kpis.err = tt.serviceErr

			rec := s.do(t, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			env := decode(t, rec)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			if tt.wantField != "" {
				assert.Contains(t, env.Error.Details, tt.wantField)
			}
		})
	}
}

func TestKPIHandler_ByEmployee(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, httptest.NewRequest(http.MethodGet,
		"/api/v1/kpis/by-employee?page=2&limit=10&sort_by=finger_rate&sort_order=desc&needs_enrollment=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req := s.kpis.empReq
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 10, req.Limit)
	assert.Equal(t, "finger_rate", req.SortBy)
	assert.Equal(t, "desc", req.SortOrder)
	assert.True(t, req.NeedsEnrollment)

	env := decode(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, int64(1), env.Meta.TotalItems)
}

func TestKPIHandler_ByEmployee_InvalidFlag(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/kpis/by-employee?needs_enrollment=maybe", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Details, "needs_enrollment")
}

func TestKPIHandler_ByShift(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/kpis/by-shift?department=Receiving&year=2025", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Receiving", s.kpis.shiftReq.Department)
	require.NotNil(t, s.kpis.shiftReq.Filter.Year)
}

func TestKPIHandler_Thresholds(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/kpis/thresholds", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var th map[string]float64
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &th))
	assert.Equal(t, float64(kpi.DefaultThresholds().EnrollmentThreshold), th["enrollment_threshold"])
}

func TestTimeEntryHandler_List(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, httptest.NewRequest(http.MethodGet,
		"/api/v1/entries?page=2&limit=20&sort_by=office&sort_order=asc&full_name=doe", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req := s.entries.listReq
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, "office", req.SortBy)
	require.NotNil(t, req.Filter.FullName)
	assert.Equal(t, "doe", *req.Filter.FullName)

	env := decode(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(41), env.Meta.TotalItems)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestTimeEntryHandler_FilterOptions(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var opts timeentry.FilterOptions
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &opts))
	assert.Equal(t, []int{2024, 2025}, opts.Years)
}

func TestReportHandler_Full(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/reports/full?year=2025&report_year=2024", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, excel.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="BSTT_Report_2025_20250310.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK-workbook", rec.Body.String())

	require.NotNil(t, s.reports.req.Year)
	assert.Equal(t, 2024, *s.reports.req.Year)
	require.NotNil(t, s.reports.req.Filter.Year)
	assert.Equal(t, 2025, *s.reports.req.Filter.Year)
}

func TestReportHandler_Full_GenerationFailed(t *testing.T) {
	s := newTestServer()
	s.reports.err = report.ErrReportGenerationFailed

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/reports/full", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate report", decode(t, rec).Error.Message)
}

func TestAdminRoutes_RequireAdminToken(t *testing.T) {
	tests := []struct {
		name       string
		token      func(t *testing.T, s *testServer) string
		wantStatus int
	}{
		{
			name:       "no token",
			token:      func(*testing.T, *testServer) string { return "" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			token:      func(*testing.T, *testServer) string { return "not-a-jwt" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non admin",
			token:      func(t *testing.T, s *testServer) string { return s.token(t, false) },
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin",
			token:      func(t *testing.T, s *testServer) string { return s.token(t, true) },
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
			if token := tt.token(t, s); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}

			rec := s.do(t, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestETLHandler_Sync(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", strings.NewReader(`{"year":2025,"clear":true}`))
	req.Header.Set("Authorization", "Bearer "+s.token(t, true))
	req.Header.Set("Content-Type", "application/json")

	rec := s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.etl.syncReq.Year)
	assert.Equal(t, 2025, *s.etl.syncReq.Year)
	assert.True(t, s.etl.syncReq.ReplaceYear)
	assert.Equal(t, "Data directory synced", decode(t, rec).Message)
}

func TestETLHandler_Sync_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		syncErr    error
		wantStatus int
	}{
		{name: "malformed body", body: `{"year":`, wantStatus: http.StatusBadRequest},
		{name: "sync disabled", syncErr: etl.ErrSyncDisabled, wantStatus: http.StatusConflict},
		{name: "no data files", syncErr: etl.ErrNoDataFiles, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.etl.syncErr = tt.syncErr

			req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+s.token(t, true))

			rec := s.do(t, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func multipartUpload(t *testing.T, fields map[string]string, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestETLHandler_Upload(t *testing.T) {
	s := newTestServer()
	body, contentType := multipartUpload(t, map[string]string{"year": "2025", "clear": "true"},
		"bstt_data_2025.csv", "Week Ending,ApplicantID\n")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.token(t, true))

	rec := s.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	up := s.etl.upload
	assert.Equal(t, "bstt_data_2025.csv", up.FileName)
	require.NotNil(t, up.Year)
	assert.Equal(t, 2025, *up.Year)
	assert.True(t, up.ReplaceYear)
	require.NotNil(t, up.UploadedBy)
	assert.Equal(t, "ops-user", *up.UploadedBy)
	assert.Equal(t, "Week Ending,ApplicantID\n", s.etl.content)

	var resp etl.UploadResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &resp))
	assert.Equal(t, "upload-1", resp.ID)
}

func TestETLHandler_Upload_BadInput(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		fileName   string
		wantStatus int
	}{
		{name: "missing file", fields: map[string]string{"year": "2025"}, wantStatus: http.StatusBadRequest},
		{name: "bad year", fields: map[string]string{"year": "next"}, fileName: "data.csv", wantStatus: http.StatusUnprocessableEntity},
		{name: "bad clear flag", fields: map[string]string{"clear": "sometimes"}, fileName: "data.csv", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			body, contentType := multipartUpload(t, tt.fields, tt.fileName, "x")

			req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("Authorization", "Bearer "+s.token(t, true))

			rec := s.do(t, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
