package v1

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportUC      *usecase.ReportUsecase
	maxUploadSize int64
}

func NewReportHandler(uc *usecase.ReportUsecase, maxUploadSizeMB int64) *ReportHandler {
	return &ReportHandler{
		reportUC:      uc,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

// GenerateReport streams the products and orders workbook.
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	data, err := h.reportUC.GenerateReport(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	name := fmt.Sprintf("kinderstep-report-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// UploadExcel imports the Products sheet of an uploaded workbook.
func (h *ReportHandler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "File too large or invalid format")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".xlsx" {
		utils.WriteError(w, http.StatusBadRequest, "Only .xlsx workbooks are accepted")
		return
	}

	result, err := h.reportUC.ImportProducts(r.Context(), file)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("file", header.Filename).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("errors", len(result.Errors)).
		Msg("Product import finished")
	utils.WriteJSON(w, http.StatusOK, result)
}
