package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/merobill/merobill/internal/backup"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeJSONBackup is the task type for the nightly company export.
	TaskTypeJSONBackup = "backup:json"
)

// JSONBackupPayload selects which companies to export. Empty CompanyIDs
// means every company.
type JSONBackupPayload struct {
	CompanyIDs []int64 `json:"companyIds,omitempty"`
}

// NewJSONBackupTask constructs the nightly backup task.
func NewJSONBackupTask(payload JSONBackupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeJSONBackup, data), nil
}

// NewJSONBackupHandler produces the handler writing gzip JSON exports into
// dir. A failing company does not abort the sweep; the error is logged and
// the task continues.
func NewJSONBackupHandler(exporter *backup.Exporter, dir string, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload JSONBackupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		ids := payload.CompanyIDs
		if len(ids) == 0 {
			all, err := exporter.CompanyIDs(ctx)
			if err != nil {
				return err
			}
			ids = all
		}

		for _, id := range ids {
			path, err := exporter.ExportToDir(ctx, id, dir)
			if err != nil {
				logger.Error("nightly backup failed", slog.Int64("company_id", id), slog.Any("error", err))
				continue
			}
			logger.Info("nightly backup written", slog.Int64("company_id", id), slog.String("path", path))
		}
		return nil
	}
}
