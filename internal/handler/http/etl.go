package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/bstt-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/validator"
)

// multipart overhead allowed on top of the data file itself
const uploadFormOverhead = 1 << 20

type ETLHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	ListUploads(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Sync(w http.ResponseWriter, r *http.Request)
}

type etlHandlerImpl struct {
	etlService etl.ETLService
}

func NewETLHandler(etlService etl.ETLService) ETLHandler {
	return &etlHandlerImpl{
		etlService: etlService,
	}
}

// Upload handles POST /uploads
func (h *etlHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, etl.MaxUploadSize+uploadFormOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.HandleError(w, etl.ErrFileTooLarge)
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Data file is required", nil)
			return
		}
		response.BadRequest(w, "Failed to read data file", nil)
		return
	}
	defer file.Close()

	req := etl.UploadRequest{
		File:       file,
		FileName:   fileHeader.Filename,
		FileSize:   fileHeader.Size,
		UploadedBy: middleware.UserID(r),
	}

	var errs validator.ValidationErrors
	if v := r.FormValue("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be a number"})
		} else {
			req.Year = &year
		}
	}
	if v := r.FormValue("clear"); v != "" {
		replace, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "clear", Message: "clear must be true or false"})
		}
		req.ReplaceYear = replace
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.etlService.ProcessUpload(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Data file imported", result)
}

// ListUploads handles GET /uploads
func (h *etlHandlerImpl) ListUploads(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	limit := p.intValue("limit")
	if err := p.err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.etlService.ListUploads(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// History handles GET /etl-history
func (h *etlHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	limit := p.intValue("limit")
	if err := p.err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.etlService.History(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Sync handles POST /sync. The body is optional.
func (h *etlHandlerImpl) Sync(w http.ResponseWriter, r *http.Request) {
	var req etl.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.etlService.SyncDirectory(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Data directory synced", result)
}
