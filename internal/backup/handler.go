package backup

import (
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/merobill/merobill/internal/platform/httpx"
	"github.com/merobill/merobill/internal/shared"
)

type Handler struct {
	logger     *slog.Logger
	exporter   *Exporter
	pgDumpPath string
	pgDSN      string
}

func NewHandler(logger *slog.Logger, exporter *Exporter, pgDumpPath, pgDSN string) *Handler {
	return &Handler{logger: logger, exporter: exporter, pgDumpPath: pgDumpPath, pgDSN: pgDSN}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/json/backup", h.jsonBackup)
	r.Get("/download", h.download)
}

// jsonBackup streams the selected company's books as gzip JSON.
func (h *Handler) jsonBackup(w http.ResponseWriter, r *http.Request) {
	companyID := shared.SessionFromContext(r.Context()).Company()
	if companyID == 0 {
		httpx.Fail(w, http.StatusNotFound, "No company selected in session.")
		return
	}

	filename := fmt.Sprintf("backup-company-%d-%s.json.gz", companyID, time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.exporter.Export(r.Context(), companyID, w); err != nil {
		// Headers are already on the wire; the truncated stream is the
		// only signal left for the client.
		h.logger.Error("json backup failed", slog.Int64("company_id", companyID), slog.Any("error", err))
	}
}

// download runs pg_dump and streams the compressed dump.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	cmd := exec.CommandContext(r.Context(), h.pgDumpPath, "--dbname", h.pgDSN)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		h.logger.Error("pg_dump pipe failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Backup failed.")
		return
	}
	if err := cmd.Start(); err != nil {
		h.logger.Error("pg_dump start failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Backup failed.")
		return
	}

	filename := fmt.Sprintf("dump-%s.sql.gz", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	gz := gzip.NewWriter(w)
	_, copyErr := io.Copy(gz, stdout)
	gzErr := gz.Close()
	waitErr := cmd.Wait()
	if copyErr != nil || gzErr != nil || waitErr != nil {
		h.logger.Error("pg_dump stream failed",
			slog.Any("copy_error", copyErr), slog.Any("gzip_error", gzErr), slog.Any("wait_error", waitErr))
	}
}
