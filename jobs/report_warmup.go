package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brickline-erp/brickline-erp/internal/reports"
)

// ReportWarmupJob pre-populates the stock report caches for the projects of
// a corporation, or all corporations with active projects when none is given.
type ReportWarmupJob struct {
	Reports *reports.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(reportsSvc *reports.Service, pool *pgxpool.Pool, logger *slog.Logger) *ReportWarmupJob {
	return &ReportWarmupJob{Reports: reportsSvc, Pool: pool, Logger: logger}
}

type warmupScope struct {
	CorporationUUID string
	ProjectUUID     string
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("corporation_uuid", payload.CorporationUUID))
	logger.Info("starting report warmup")
	started := time.Now()

	scopes, err := j.fetchScopes(ctx, payload)
	if err != nil {
		logger.Error("load warmup scopes", slog.Any("error", err))
		return err
	}
	warmed := 0
	for _, scope := range scopes {
		if err := j.warmScope(ctx, scope); err != nil {
			logger.Error("warm scope",
				slog.String("corporation_uuid", scope.CorporationUUID),
				slog.String("project_uuid", scope.ProjectUUID),
				slog.Any("error", err))
			return err
		}
		warmed++
	}
	logger.Info("completed report warmup", slog.Int("scopes", warmed), slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *ReportWarmupJob) warmScope(ctx context.Context, scope warmupScope) error {
	scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Reports.StockReport(scopeCtx, scope.CorporationUUID, scope.ProjectUUID); err != nil {
		return err
	}
	_, err := j.Reports.POWiseReport(scopeCtx, scope.CorporationUUID, scope.ProjectUUID)
	return err
}

func (j *ReportWarmupJob) fetchScopes(ctx context.Context, payload ReportWarmupPayload) ([]warmupScope, error) {
	if payload.CorporationUUID != "" && payload.ProjectUUID != "" {
		return []warmupScope{{CorporationUUID: payload.CorporationUUID, ProjectUUID: payload.ProjectUUID}}, nil
	}
	if j.Pool == nil {
		return nil, errors.New("report warmup: pool not configured")
	}
	query := `SELECT corporation_uuid, uuid FROM projects WHERE is_active = TRUE ORDER BY corporation_uuid, uuid`
	args := []any{}
	if payload.CorporationUUID != "" {
		query = `SELECT corporation_uuid, uuid FROM projects WHERE corporation_uuid = $1 AND is_active = TRUE ORDER BY uuid`
		args = append(args, payload.CorporationUUID)
	}
	rows, err := j.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scopes := make([]warmupScope, 0)
	for rows.Next() {
		var scope warmupScope
		if err := rows.Scan(&scope.CorporationUUID, &scope.ProjectUUID); err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	return scopes, rows.Err()
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}
