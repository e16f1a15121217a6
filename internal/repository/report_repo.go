package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/clinpipe/orchestrator/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository persists pipeline run reports to Postgres. One row per
// run plus one row per executed step, written in a single transaction.
type ReportRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReportRepository(pool *pgxpool.Pool, logger *slog.Logger) *ReportRepository {
	return &ReportRepository{
		pool:   pool,
		logger: logger,
	}
}

func (r *ReportRepository) SaveReport(ctx context.Context, report domain.PipelineReport) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error("begin tx failed", "error", err)
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO pipeline_runs (id, kind, success, message, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		report.ID, report.Kind, report.Success, report.Message,
		report.StartedAt, report.FinishedAt,
	)
	if err != nil {
		r.logger.Error("insert run failed", "run_id", report.ID, "error", err)
		return err
	}

	for seq, step := range report.Steps {
		var details []byte
		if step.Details != nil {
			details, err = json.Marshal(step.Details)
			if err != nil {
				r.logger.Error("marshal step details failed",
					"run_id", report.ID,
					"step", step.Name,
					"error", err,
				)
				return err
			}
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO pipeline_steps (id, run_id, seq, name, success, message, details, started_at, finished_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.New(),
			report.ID,
			seq,
			step.Name,
			step.Success,
			step.Message,
			details,
			step.StartedAt,
			step.FinishedAt,
		); err != nil {
			r.logger.Error("insert step failed",
				"run_id", report.ID,
				"step", step.Name,
				"error", err,
			)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("commit failed", "run_id", report.ID, "error", err)
		return err
	}

	r.logger.Info("report saved",
		"run_id", report.ID,
		"kind", report.Kind,
		"success", report.Success,
		"steps", len(report.Steps),
	)
	return nil
}

// GetReport loads a stored run with its steps in execution order. Callers
// check for pgx.ErrNoRows to distinguish an unknown run ID.
func (r *ReportRepository) GetReport(ctx context.Context, id uuid.UUID) (domain.PipelineReport, error) {
	var report domain.PipelineReport

	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, success, message, started_at, finished_at
		 FROM pipeline_runs WHERE id=$1`,
		id,
	).Scan(&report.ID, &report.Kind, &report.Success, &report.Message,
		&report.StartedAt, &report.FinishedAt)
	if err != nil {
		return domain.PipelineReport{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT name, success, message, details, started_at, finished_at
		 FROM pipeline_steps WHERE run_id=$1 ORDER BY seq`,
		id,
	)
	if err != nil {
		r.logger.Error("query steps failed", "run_id", id, "error", err)
		return domain.PipelineReport{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var step domain.StepOutcome
		var details []byte
		if err := rows.Scan(&step.Name, &step.Success, &step.Message,
			&details, &step.StartedAt, &step.FinishedAt); err != nil {
			return domain.PipelineReport{}, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &step.Details); err != nil {
				return domain.PipelineReport{}, err
			}
		}
		report.Steps = append(report.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return domain.PipelineReport{}, err
	}

	return report, nil
}
