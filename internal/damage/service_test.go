package damage

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wareline/wareline/internal/journal"
	"github.com/wareline/wareline/internal/stock"
)

type memoryRepo struct {
	logs    map[int64]Log
	batches map[int64]stock.Batch

	nextLogID   int64
	nextBatchID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		logs:    make(map[int64]Log),
		batches: make(map[int64]stock.Batch),
	}
}

func (r *memoryRepo) seedBatch(barcode, warehouse string, qty int64, status stock.BatchStatus, createdAt time.Time) int64 {
	r.nextBatchID++
	r.batches[r.nextBatchID] = stock.Batch{
		ID:           r.nextBatchID,
		Barcode:      barcode,
		Warehouse:    warehouse,
		ProductName:  "Widget",
		QtyAvailable: qty,
		Status:       status,
		CreatedAt:    createdAt,
	}
	return r.nextBatchID
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapLogs := make(map[int64]Log, len(r.logs))
	for k, v := range r.logs {
		snapLogs[k] = v
	}
	snapBatches := make(map[int64]stock.Batch, len(r.batches))
	for k, v := range r.batches {
		snapBatches[k] = v
	}
	snapLID, snapBID := r.nextLogID, r.nextBatchID

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.logs = snapLogs
		r.batches = snapBatches
		r.nextLogID, r.nextBatchID = snapLID, snapBID
		return err
	}
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id int64) (*Log, error) {
	l, ok := r.logs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (r *memoryRepo) List(ctx context.Context, barcode string, limit, offset int) ([]Log, error) {
	var out []Log
	for _, l := range r.logs {
		if barcode == "" || l.Barcode == barcode {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) InsertLog(ctx context.Context, log Log) (int64, error) {
	t.repo.nextLogID++
	log.ID = t.repo.nextLogID
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	t.repo.logs[log.ID] = log
	return log.ID, nil
}

func (t *memoryTx) ActiveBatches(ctx context.Context, barcode, warehouse string) ([]stock.Batch, error) {
	var out []stock.Batch
	for _, b := range t.repo.batches {
		if b.Barcode == barcode && b.Warehouse == warehouse && b.Status == stock.BatchActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *memoryTx) RecentBatches(ctx context.Context, barcode, warehouse string) ([]stock.Batch, error) {
	var out []stock.Batch
	for _, b := range t.repo.batches {
		if b.Barcode == barcode && b.Warehouse == warehouse {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > stock.RecentBatchLimit {
		out = out[:stock.RecentBatchLimit]
	}
	return out, nil
}

func (t *memoryTx) ApplyBatchUpdates(ctx context.Context, updates []stock.BatchUpdate) error {
	for _, u := range updates {
		b, ok := t.repo.batches[u.ID]
		if !ok {
			return stock.ErrNoActiveStock
		}
		b.QtyAvailable = u.QtyAvailable
		b.Status = u.Status
		t.repo.batches[u.ID] = b
	}
	return nil
}

func (t *memoryTx) InsertBatch(ctx context.Context, b stock.Batch) (int64, error) {
	t.repo.nextBatchID++
	b.ID = t.repo.nextBatchID
	t.repo.batches[b.ID] = b
	return b.ID, nil
}

type captureJournal struct {
	entries []journal.Entry
}

func (j *captureJournal) Append(ctx context.Context, entry journal.Entry) {
	j.entries = append(j.entries, entry)
}

func actionRequest(qty int64) ActionRequest {
	return ActionRequest{
		Product:   "Widget",
		Barcode:   "BC-100",
		Warehouse: "WH-A",
		Qty:       qty,
		Reason:    "water damage",
	}
}

func TestReportDamageDeductsFIFO(t *testing.T) {
	repo := newMemoryRepo()
	b1 := repo.seedBatch("BC-100", "WH-A", 3, stock.BatchActive, time.Now().Add(-time.Hour))
	b2 := repo.seedBatch("BC-100", "WH-A", 5, stock.BatchActive, time.Now())

	jrnl := &captureJournal{}
	svc := NewService(repo, jrnl, nil, nil, nil)

	id, err := svc.ReportDamage(context.Background(), actionRequest(4))
	require.NoError(t, err)

	require.EqualValues(t, 0, repo.batches[b1].QtyAvailable)
	require.Equal(t, stock.BatchExhausted, repo.batches[b1].Status)
	require.EqualValues(t, 4, repo.batches[b2].QtyAvailable)

	log := repo.logs[id]
	require.Equal(t, ActionDamage, log.ActionType)
	require.EqualValues(t, 4, log.Quantity)

	require.Len(t, jrnl.entries, 1)
	require.Equal(t, journal.MovementDamage, jrnl.entries[0].MovementType)
	require.Equal(t, journal.DirectionOut, jrnl.entries[0].Direction)
	require.Equal(t, "damage#1", jrnl.entries[0].Reference)
}

func TestReportDamageRollsBackWithoutStock(t *testing.T) {
	repo := newMemoryRepo()
	jrnl := &captureJournal{}
	svc := NewService(repo, jrnl, nil, nil, nil)

	_, err := svc.ReportDamage(context.Background(), actionRequest(2))
	require.ErrorIs(t, err, stock.ErrNoActiveStock)
	require.Empty(t, repo.logs)
	require.Empty(t, jrnl.entries)
}

func TestRecoverIntoMostRecentBatch(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedBatch("BC-100", "WH-A", 2, stock.BatchActive, time.Now().Add(-time.Hour))
	recent := repo.seedBatch("BC-100", "WH-A", 0, stock.BatchExhausted, time.Now())

	jrnl := &captureJournal{}
	svc := NewService(repo, jrnl, nil, nil, nil)

	id, err := svc.Recover(context.Background(), actionRequest(5))
	require.NoError(t, err)

	require.EqualValues(t, 5, repo.batches[recent].QtyAvailable)
	require.Equal(t, stock.BatchActive, repo.batches[recent].Status)
	require.Equal(t, ActionRecover, repo.logs[id].ActionType)

	require.Len(t, jrnl.entries, 1)
	require.Equal(t, journal.MovementRecovery, jrnl.entries[0].MovementType)
	require.Equal(t, journal.DirectionIn, jrnl.entries[0].Direction)
	require.Equal(t, "recover#1", jrnl.entries[0].Reference)
}

func TestRecoverSynthesizesBatch(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &captureJournal{}, nil, nil, nil)

	_, err := svc.Recover(context.Background(), actionRequest(5))
	require.NoError(t, err)

	require.Len(t, repo.batches, 1)
	for _, b := range repo.batches {
		require.EqualValues(t, 5, b.QtyAvailable)
		require.Equal(t, stock.BatchActive, b.Status)
		require.Equal(t, stock.SourceRecovery, b.SourceType)
	}
}

func TestActionRequestValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), &captureJournal{}, nil, nil, nil)

	req := actionRequest(0)
	_, err := svc.ReportDamage(context.Background(), req)
	require.Error(t, err)

	req = actionRequest(3)
	req.Barcode = ""
	_, err = svc.Recover(context.Background(), req)
	require.Error(t, err)
}
