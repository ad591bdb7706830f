package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"solana-pop/internal/reporting"
)

type ReportGenerator interface {
	Generate(ctx context.Context, eventID string) (*reporting.Report, error)
}

// HandleEventReport renders an event's attendance report as CSV (default) or
// Markdown (?format=md).
func HandleEventReport(gen ReportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "csv"
		}
		if format != "csv" && format != "md" {
			writeError(w, http.StatusBadRequest, codeInvalidInput, "format must be csv or md")
			return
		}

		report, err := gen.Generate(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, codeEventNotFound)
			return
		}

		var buf bytes.Buffer
		switch format {
		case "csv":
			if err := reporting.WriteCSV(&buf, report); err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "render report")
				return
			}
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="event-%s-attendance.csv"`, report.Event.ID))
		case "md":
			buf.WriteString(reporting.RenderMarkdown(report))
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
