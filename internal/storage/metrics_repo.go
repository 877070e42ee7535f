package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"medrag/internal/metrics"
)

// MetricsRepo stores custom metric data points in search_metrics.
type MetricsRepo struct {
	db *DB
}

func NewMetricsRepo(db *DB) *MetricsRepo {
	return &MetricsRepo{db: db}
}

func (r *MetricsRepo) PutMetricData(ctx context.Context, namespace string, data []metrics.Datum) error {
	if len(data) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, d := range data {
		dims, err := json.Marshal(d.Dimensions)
		if err != nil {
			return fmt.Errorf("encode metric dimensions: %w", err)
		}
		batch.Queue(`
INSERT INTO search_metrics (namespace, metric_name, value, unit, dimensions, recorded_at)
VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
			namespace, d.Name, d.Value, d.Unit, string(dims), d.Timestamp)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range data {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert metric: %w", err)
		}
	}
	return nil
}
