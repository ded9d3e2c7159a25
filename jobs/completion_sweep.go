package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brickline-erp/brickline-erp/internal/procurement"
	"github.com/brickline-erp/brickline-erp/internal/stocknotes"
)

// CompletionSweepJob re-runs the return-note completion check across every
// non-completed order of a project. The inline check after a return never
// blocks the note insert, so a transient failure there can leave a fully
// returned order un-completed; the sweep converges it.
type CompletionSweepJob struct {
	Procurement *procurement.Service
	StockNotes  *stocknotes.Service
	Logger      *slog.Logger
}

// NewCompletionSweepJob wires dependencies for the sweep handler.
func NewCompletionSweepJob(procurementSvc *procurement.Service, stockNotesSvc *stocknotes.Service, logger *slog.Logger) *CompletionSweepJob {
	return &CompletionSweepJob{Procurement: procurementSvc, StockNotes: stockNotesSvc, Logger: logger}
}

// Handle processes completion sweep tasks.
func (j *CompletionSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Procurement == nil || j.StockNotes == nil {
		return errors.New("completion sweep: handler not configured")
	}
	var payload CompletionSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.CorporationUUID == "" || payload.ProjectUUID == "" {
		return asynq.SkipRetry
	}

	logger := j.logger().With(
		slog.String("corporation_uuid", payload.CorporationUUID),
		slog.String("project_uuid", payload.ProjectUUID))
	logger.Info("starting completion sweep")
	started := time.Now()

	pos, err := j.Procurement.ListPOs(ctx, payload.CorporationUUID, payload.ProjectUUID)
	if err != nil {
		logger.Error("list purchase orders", slog.Any("error", err))
		return err
	}
	cos, err := j.Procurement.ListCOs(ctx, payload.CorporationUUID, payload.ProjectUUID)
	if err != nil {
		logger.Error("list change orders", slog.Any("error", err))
		return err
	}

	checked := 0
	for _, po := range pos {
		if po.Status == procurement.StatusCompleted || !po.Status.Receivable() {
			continue
		}
		if err := j.StockNotes.RecheckOrder(ctx, procurement.KindPurchaseOrder, po.UUID); err != nil {
			logger.Error("recheck purchase order", slog.String("po_uuid", po.UUID), slog.Any("error", err))
			return err
		}
		checked++
	}
	for _, co := range cos {
		if co.Status == procurement.StatusCompleted || !co.Status.Receivable() {
			continue
		}
		if err := j.StockNotes.RecheckOrder(ctx, procurement.KindChangeOrder, co.UUID); err != nil {
			logger.Error("recheck change order", slog.String("co_uuid", co.UUID), slog.Any("error", err))
			return err
		}
		checked++
	}

	logger.Info("completed completion sweep", slog.Int("orders", checked), slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *CompletionSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCompletionSweep))
	}
	return slog.Default().With(slog.String("job", TaskCompletionSweep))
}
