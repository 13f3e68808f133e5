package http

import (
	"bytes"
	"net/http"
	"strconv"

	"cashflow/internal/export"
	"cashflow/internal/log"
)

// handleExport renders the requested sections into a downloadable file.
// The file is rendered into memory first so a rendering failure can still
// be reported as JSON.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req export.Request
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, log.ComponentExport, log.OpExport)
		return
	}

	format, data, err := s.svc.Export.Collect(r.Context(), userID(r), req)
	if err != nil {
		s.writeError(w, r, err, log.ComponentExport, log.OpExport)
		return
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, format, data); err != nil {
		s.writeError(w, r, err, log.ComponentExport, log.OpExport)
		return
	}
	s.appMetrics.exports.Add(1)

	s.logger.InfoContext(r.Context(), "Export generated",
		log.FieldComponent, log.ComponentExport,
		log.FieldUserID, userID(r),
		"format", string(format),
		"bytes", buf.Len())

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(format)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
