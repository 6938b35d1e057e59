// Package worker drains the queued audits from postgres and runs them
// through the audit engine.
package worker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"sitepulse/packages/audit"
	"sitepulse/packages/config"
	"sitepulse/packages/db"
	"sitepulse/packages/domain"
	"sitepulse/packages/metrics"
)

type Worker struct {
	cfg     config.Config
	storage *db.Storage
	engine  *audit.Engine
}

func New(cfg config.Config, storage *db.Storage, engine *audit.Engine) *Worker {
	return &Worker{cfg: cfg, storage: storage, engine: engine}
}

// ProcessPending claims one batch of queued audits and runs them with
// bounded concurrency. Individual audit failures are recorded on their row
// and never stop the batch.
func (w *Worker) ProcessPending(ctx context.Context) {
	jobs, err := w.storage.ClaimPending(ctx, w.cfg.BatchSize)
	if err != nil {
		slog.Error("Failed to claim pending audits", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}
	slog.Info("Claimed audit batch", "count", len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.MaxWorkers)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := w.runOne(gCtx, job); err != nil {
				slog.Error("Audit job failed", "job_id", job.ID, "url", job.URL, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	slog.Info("Finished audit batch", "count", len(jobs))
}

func (w *Worker) runOne(ctx context.Context, job domain.AuditJob) error {
	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	target, err := domain.NewAuditTarget(job.URL, job.Category)
	if err != nil {
		metrics.AuditsTotal.WithLabelValues("rejected").Inc()
		return w.storage.MarkFailed(ctx, job.ID, err.Error())
	}

	result, err := w.engine.Run(jobCtx, target)
	if err != nil {
		metrics.AuditsTotal.WithLabelValues("failed").Inc()
		if markErr := w.storage.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			return markErr
		}
		return err
	}

	if err := w.storage.SaveResult(ctx, job.ID, result); err != nil {
		metrics.AuditsTotal.WithLabelValues("save_error").Inc()
		return err
	}
	metrics.AuditsTotal.WithLabelValues("completed").Inc()
	return nil
}
