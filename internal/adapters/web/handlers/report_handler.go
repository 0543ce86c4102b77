package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/adapters/reporting"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

// ReportHandler renders the current inventory as a PDF.
type ReportHandler struct {
	Service  ports.ScanService
	Exporter *reporting.PDFExporter
	Now      func() time.Time
}

func NewReportHandler(service ports.ScanService, exporter *reporting.PDFExporter) *ReportHandler {
	return &ReportHandler{Service: service, Exporter: exporter, Now: time.Now}
}

func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	inv := reporting.Collect(h.Service, now)
	if title := r.URL.Query().Get("title"); title != "" {
		inv.Title = title
	}

	pdf, err := h.Exporter.Export(inv)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="wreveal-%s.pdf"`, now.Format("20060102-150405")))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
