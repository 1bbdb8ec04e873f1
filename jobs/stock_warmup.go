package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wareline/wareline/internal/timeline"
)

// TaskTypeStockWarmup primes the current-stock cache for every barcode that
// still has active stock.
const TaskTypeStockWarmup = "stock:warmup"

type stockWarmupPayload struct {
	Limit int `json:"limit"`
}

// NewStockWarmupTask builds the warmup task. Limit caps the number of
// barcodes primed per run; zero means all.
func NewStockWarmupTask(limit int) (*asynq.Task, error) {
	data, err := json.Marshal(stockWarmupPayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeStockWarmup, data), nil
}

// StockWarmupJob recomputes active stock totals and primes the Redis cache so
// timeline reads start warm.
type StockWarmupJob struct {
	pool   *pgxpool.Pool
	cache  *timeline.Cache
	logger *slog.Logger
}

// NewStockWarmupJob constructs a StockWarmupJob.
func NewStockWarmupJob(pool *pgxpool.Pool, cache *timeline.Cache, logger *slog.Logger) *StockWarmupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &StockWarmupJob{pool: pool, cache: cache, logger: logger}
}

// Handle processes one stock:warmup task.
func (j *StockWarmupJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload stockWarmupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		j.logger.Error("stock warmup payload malformed", slog.Any("error", err))
		return nil
	}

	query := `
		SELECT barcode, COALESCE(SUM(qty_available), 0)
		FROM stock_batches
		WHERE status = 'active'
		GROUP BY barcode
		ORDER BY barcode`
	args := []any{}
	if payload.Limit > 0 {
		query += ` LIMIT $1`
		args = append(args, payload.Limit)
	}

	rows, err := j.pool.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	primed := 0
	for rows.Next() {
		var barcode string
		var total int64
		if err := rows.Scan(&barcode, &total); err != nil {
			return err
		}
		j.cache.Prime(ctx, barcode, total)
		primed++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	j.logger.Info("stock cache warmed", slog.Int("barcodes", primed))
	return nil
}
