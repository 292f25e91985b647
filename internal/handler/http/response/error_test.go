package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", validator.ValidationErrors{{Field: "year", Message: "bad"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("load: %w", validator.ValidationErrors{{Field: "year", Message: "bad"}}), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not admin", auth.ErrAdminPrivilegeRequired, http.StatusForbidden, "FORBIDDEN"},
		{"no entries", timeentry.ErrNoEntries, http.StatusNotFound, "NOT_FOUND"},
		{"missing columns", fmt.Errorf("%w: ApplicantID", etl.ErrMissingColumns), http.StatusBadRequest, "BAD_REQUEST"},
		{"unsupported file", etl.ErrUnsupportedFileType, http.StatusBadRequest, "BAD_REQUEST"},
		{"too large", etl.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"sync disabled", etl.ErrSyncDisabled, http.StatusConflict, "CONFLICT"},
		{"report failed", fmt.Errorf("%w: disk full", report.ErrReportGenerationFailed), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"unknown", assert.AnError, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestFile(t *testing.T) {
	rec := httptest.NewRecorder()
	File(rec, "report.xlsx", "application/octet-stream", []byte("abc"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="report.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "3", rec.Header().Get("Content-Length"))
	assert.Equal(t, "abc", rec.Body.String())
}
