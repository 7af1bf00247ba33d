package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/analysis"
	"github.com/hrops/invoice-insight/pkg/database"
)

// AnalysisRun is a completed run's persisted record.
type AnalysisRun struct {
	ID            string          `json:"id"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	EmployeeCount int             `json:"employee_count"`
	Summary       json.RawMessage `json:"summary"`
}

// RunRepository persists completed analysis runs. The pipeline never reads
// this history; it only serves the runs listing.
type RunRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *database.DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// Save records a completed session
func (r *RunRepository) Save(ctx context.Context, session *analysis.Session) error {
	summaryJSON, err := json.Marshal(session.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	query := `
		INSERT INTO analysis_runs (id, started_at, finished_at, employee_count, summary_json)
		VALUES (?, ?, ?, ?, ?)
	`
	err = r.db.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			session.ID,
			session.StartedAt,
			session.FinishedAt,
			len(session.Summary),
			string(summaryJSON),
		)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to save analysis run", zap.String("run_id", session.ID), zap.Error(err))
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// List returns the most recent runs, newest first
func (r *RunRepository) List(ctx context.Context, limit int) ([]*AnalysisRun, error) {
	query := `
		SELECT id, started_at, finished_at, employee_count, summary_json
		FROM analysis_runs
		ORDER BY started_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list analysis runs", zap.Error(err))
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		var summaryJSON string
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.EmployeeCount, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Summary = json.RawMessage(summaryJSON)
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
