package transfer

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
	transfers map[int64]Transfer
	batches   map[int64]stock.Batch

	nextTransferID int64
	nextBatchID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		transfers: make(map[int64]Transfer),
		batches:   make(map[int64]stock.Batch),
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

func (r *memoryRepo) totalStock(barcode, warehouse string) int64 {
	var total int64
	for _, b := range r.batches {
		if b.Barcode == barcode && b.Warehouse == warehouse {
			total += b.QtyAvailable
		}
	}
	return total
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapTransfers := make(map[int64]Transfer, len(r.transfers))
	for k, v := range r.transfers {
		snapTransfers[k] = v
	}
	snapBatches := make(map[int64]stock.Batch, len(r.batches))
	for k, v := range r.batches {
		snapBatches[k] = v
	}
	snapTID, snapBID := r.nextTransferID, r.nextBatchID

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.transfers = snapTransfers
		r.batches = snapBatches
		r.nextTransferID, r.nextBatchID = snapTID, snapBID
		return err
	}
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id int64) (*Transfer, error) {
	t, ok := r.transfers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *memoryRepo) List(ctx context.Context, limit, offset int) ([]Transfer, error) {
	var out []Transfer
	for _, t := range r.transfers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) InsertTransfer(ctx context.Context, tr Transfer) (int64, error) {
	t.repo.nextTransferID++
	tr.ID = t.repo.nextTransferID
	t.repo.transfers[tr.ID] = tr
	return tr.ID, nil
}

func (t *memoryTx) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tr, ok := t.repo.transfers[id]
	if !ok {
		return ErrNotFound
	}
	tr.Status = status
	t.repo.transfers[id] = tr
	return nil
}

func (t *memoryTx) ActiveBatches(ctx context.Context, barcode, warehouse string) ([]stock.Batch, error) {
	var out []stock.Batch
	for _, b := range t.repo.batches {
		if b.Barcode == barcode && b.Warehouse == warehouse && b.Status == stock.BatchActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (t *memoryTx) RecentBatches(ctx context.Context, barcode, warehouse string) ([]stock.Batch, error) {
	var out []stock.Batch
	for _, b := range t.repo.batches {
		if b.Barcode == barcode && b.Warehouse == warehouse {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
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

func validCreateRequest() CreateRequest {
	return CreateRequest{
		Barcode:       "BC-100",
		ProductName:   "Widget",
		Qty:           6,
		FromWarehouse: "WH-A",
		ToWarehouse:   "WH-B",
		ProcessedBy:   "ops.user",
	}
}

func TestCreateMovesStockBetweenWarehouses(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Now()
	src1 := repo.seedBatch("BC-100", "WH-A", 4, stock.BatchActive, now.Add(-2*time.Hour))
	src2 := repo.seedBatch("BC-100", "WH-A", 5, stock.BatchActive, now.Add(-time.Hour))
	dst := repo.seedBatch("BC-100", "WH-B", 3, stock.BatchExhausted, now.Add(-time.Hour))

	jrnl := &captureJournal{}
	svc := NewService(repo, jrnl, nil, nil, nil)

	tr, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.Equal(t, StatusPending, tr.Status)

	// source deducted FIFO: oldest batch drained first
	require.EqualValues(t, 0, repo.batches[src1].QtyAvailable)
	require.Equal(t, stock.BatchExhausted, repo.batches[src1].Status)
	require.EqualValues(t, 3, repo.batches[src2].QtyAvailable)

	// destination restored into its most recent batch, forced active
	require.EqualValues(t, 9, repo.batches[dst].QtyAvailable)
	require.Equal(t, stock.BatchActive, repo.batches[dst].Status)

	require.Len(t, jrnl.entries, 2)
	ref := journal.SelfTransferRef(tr.ID)
	require.Equal(t, journal.DirectionOut, jrnl.entries[0].Direction)
	require.Equal(t, "WH-A", jrnl.entries[0].LocationCode)
	require.Equal(t, ref, jrnl.entries[0].Reference)
	require.Equal(t, journal.DirectionIn, jrnl.entries[1].Direction)
	require.Equal(t, "WH-B", jrnl.entries[1].LocationCode)
	require.Equal(t, ref, jrnl.entries[1].Reference)
}

func TestCreateSynthesizesDestinationBatch(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedBatch("BC-100", "WH-A", 10, stock.BatchActive, time.Now())

	svc := NewService(repo, &captureJournal{}, nil, nil, nil)

	tr, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	require.EqualValues(t, 4, repo.totalStock("BC-100", "WH-A"))
	require.EqualValues(t, 6, repo.totalStock("BC-100", "WH-B"))
	for _, b := range repo.batches {
		if b.Warehouse == "WH-B" {
			require.Equal(t, stock.SourceTransferIn, b.SourceType)
			require.Equal(t, stock.BatchActive, b.Status)
		}
	}
	require.NotNil(t, tr)
}

func TestCreateRollsBackWithoutSourceStock(t *testing.T) {
	repo := newMemoryRepo()
	jrnl := &captureJournal{}
	svc := NewService(repo, jrnl, nil, nil, nil)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.ErrorIs(t, err, stock.ErrNoActiveStock)
	require.Empty(t, repo.transfers)
	require.Empty(t, jrnl.entries)
	require.EqualValues(t, 0, repo.totalStock("BC-100", "WH-B"))
}

func TestCreateRejectsSameWarehouse(t *testing.T) {
	svc := NewService(newMemoryRepo(), &captureJournal{}, nil, nil, nil)

	req := validCreateRequest()
	req.ToWarehouse = req.FromWarehouse
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrSameWarehouse)
}

func TestUpdateStatusTransferSet(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedBatch("BC-100", "WH-A", 10, stock.BatchActive, time.Now())
	svc := NewService(repo, &captureJournal{}, nil, nil, nil)
	ctx := context.Background()

	tr, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// dispatch-only statuses are not part of the transfer set
	err = svc.UpdateStatus(ctx, tr.ID, "Dispatched")
	require.ErrorIs(t, err, ErrInvalidStatus)

	require.NoError(t, svc.UpdateStatus(ctx, tr.ID, "Processing"))
	require.NoError(t, svc.UpdateStatus(ctx, tr.ID, "Completed"))

	got, err := svc.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)

	// terminal state rejects further movement
	err = svc.UpdateStatus(ctx, tr.ID, "Cancelled")
	require.ErrorIs(t, err, ErrStatusNotAllowed)
}

func TestUpdateStatusCancelFromPending(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedBatch("BC-100", "WH-A", 10, stock.BatchActive, time.Now())
	svc := NewService(repo, &captureJournal{}, nil, nil, nil)
	ctx := context.Background()

	tr, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, tr.ID, "Cancelled"))
	got, err := svc.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo(), &captureJournal{}, nil, nil, nil)
	err := svc.UpdateStatus(context.Background(), 42, "Processing")
	require.ErrorIs(t, err, ErrNotFound)
}
