package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emiliopalmerini/modelcraft/internal/domain"
	"github.com/emiliopalmerini/modelcraft/internal/ports"
	"github.com/emiliopalmerini/modelcraft/internal/util"
)

const writeRetries = 2

// Journal stores accepted workflow results in a libSQL database.
type Journal struct {
	db *sql.DB
}

var _ ports.RunJournal = (*Journal)(nil)

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) RecordDataset(ctx context.Context, rec ports.DatasetRecord) error {
	columns, err := encodeList(rec.Columns)
	if err != nil {
		return err
	}

	_, err = WithRetry(ctx, writeRetries, func() (sql.Result, error) {
		return j.db.ExecContext(ctx, `
			INSERT INTO datasets (session_id, dataset_name, columns, uploaded_at)
			VALUES (?, ?, ?, ?)
		`, rec.SessionID, rec.DatasetName, columns, rec.UploadedAt.UTC().Format(time.RFC3339))
	})
	if err != nil {
		return fmt.Errorf("failed to record dataset: %w", err)
	}
	return nil
}

func (j *Journal) RecordTraining(ctx context.Context, rec ports.TrainingRecord) error {
	features, err := encodeList(rec.Features)
	if err != nil {
		return err
	}

	_, err = WithRetry(ctx, writeRetries, func() (sql.Result, error) {
		return j.db.ExecContext(ctx, `
			INSERT INTO training_runs (
				id, session_id, dataset_name, target_column, task, algorithm,
				metric, metric_name, features, message, trained_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ID, rec.SessionID, rec.DatasetName, rec.TargetColumn, rec.Task, rec.Algorithm,
			rec.Metric, rec.MetricName, features, util.NullString(rec.Message),
			rec.TrainedAt.UTC().Format(time.RFC3339),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to record training run: %w", err)
	}
	return nil
}

func (j *Journal) RecordPrediction(ctx context.Context, rec ports.PredictionRecord) error {
	_, err := WithRetry(ctx, writeRetries, func() (sql.Result, error) {
		return j.db.ExecContext(ctx, `
			INSERT INTO predictions (session_id, training_id, input, feature_values, prediction, predicted_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			rec.SessionID, util.NullString(rec.TrainingID), rec.Input,
			domain.FormatValues(rec.Values), rec.Prediction,
			rec.PredictedAt.UTC().Format(time.RFC3339),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to record prediction: %w", err)
	}
	return nil
}

// ListTrainingRuns returns the most recent training runs, newest first.
// A non-positive limit returns every run.
func (j *Journal) ListTrainingRuns(ctx context.Context, limit int) ([]ports.TrainingRecord, error) {
	query := `
		SELECT id, session_id, dataset_name, target_column, task, algorithm,
		       metric, metric_name, features, message, trained_at
		FROM training_runs
		ORDER BY trained_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list training runs: %w", err)
	}
	defer rows.Close()

	var runs []ports.TrainingRecord
	for rows.Next() {
		var (
			rec       ports.TrainingRecord
			features  string
			message   sql.NullString
			trainedAt string
		)
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.DatasetName, &rec.TargetColumn, &rec.Task, &rec.Algorithm,
			&rec.Metric, &rec.MetricName, &features, &message, &trainedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &rec.Features); err != nil {
			return nil, fmt.Errorf("failed to decode features of run %s: %w", rec.ID, err)
		}
		rec.Message = util.NullStringValue(message)
		rec.TrainedAt = util.ParseTimeRFC3339(trainedAt)
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate training runs: %w", err)
	}
	return runs, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}
