package timeline

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/wareline/wareline/internal/journal"
)

type fakeRepo struct {
	header     *Header
	damage     []Event
	transfers  []Event
	ledger     []Event
	stock      int64
	stockCalls int
}

func (f *fakeRepo) ResolveDispatch(ctx context.Context, key string) (*Header, error) {
	if f.header == nil {
		return nil, ErrNotFound
	}
	if key == strconv.FormatInt(f.header.ID, 10) || key == f.header.OrderRef || key == f.header.AWB {
		h := *f.header
		return &h, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) DamageEvents(ctx context.Context, barcodes []string) ([]Event, error) {
	return f.damage, nil
}

func (f *fakeRepo) TransferEvents(ctx context.Context, barcodes []string) ([]Event, error) {
	return f.transfers, nil
}

func (f *fakeRepo) LedgerEvents(ctx context.Context, barcodes []string) ([]Event, error) {
	return f.ledger, nil
}

func (f *fakeRepo) ActiveStock(ctx context.Context, barcode string) (int64, error) {
	f.stockCalls++
	return f.stock, nil
}

func fixtureRepo() *fakeRepo {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &fakeRepo{
		header: &Header{
			ID: 12, Timestamp: base.Add(-time.Hour), Warehouse: "WH-A",
			OrderRef: "ORD-1", AWB: "AWB-9", Barcode: "BC-100",
			ProductName: "Widget", Qty: 5, Status: "Dispatched",
			Barcodes: []string{"BC-100"},
		},
		ledger: []Event{
			{EventTime: base.Add(-50 * time.Minute), Source: SourceLedger, MovementType: "DISPATCH",
				Barcode: "BC-100", Qty: 5, Direction: "OUT", Reference: journal.DispatchRef(12, "AWB-9")},
		},
		stock: 42,
	}
}

func TestGetResolvesByEachKey(t *testing.T) {
	svc := NewService(fixtureRepo(), nil, nil, 0)
	ctx := context.Background()

	for _, key := range []string{"12", "ORD-1", "AWB-9"} {
		tl, err := svc.Get(ctx, key, 0)
		require.NoError(t, err, key)
		require.EqualValues(t, 12, tl.Dispatch.ID)
		require.Len(t, tl.Events, 2)
		require.EqualValues(t, 5, tl.Summary.Dispatched)
		require.EqualValues(t, 42, tl.Summary.CurrentStock)
	}

	_, err := svc.Get(ctx, "no-such-key", 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetCachesCurrentStock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := fixtureRepo()
	svc := NewService(repo, NewCache(client, time.Minute), nil, 0)
	ctx := context.Background()

	_, err := svc.Get(ctx, "12", 0)
	require.NoError(t, err)
	require.Equal(t, 1, repo.stockCalls)

	// second read is served from the cache
	tl, err := svc.Get(ctx, "12", 0)
	require.NoError(t, err)
	require.Equal(t, 1, repo.stockCalls)
	require.EqualValues(t, 42, tl.Summary.CurrentStock)

	// after TTL expiry the loader runs again
	mr.FastForward(2 * time.Minute)
	_, err = svc.Get(ctx, "12", 0)
	require.NoError(t, err)
	require.Equal(t, 2, repo.stockCalls)
}

func TestCacheInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (int64, error) {
		calls++
		return 7, nil
	}

	v, err := cache.CurrentStock(ctx, "BC-100", loader)
	require.NoError(t, err)
	require.EqualValues(t, 7, v)

	_, err = cache.CurrentStock(ctx, "BC-100", loader)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	cache.Invalidate(ctx, "BC-100")
	_, err = cache.CurrentStock(ctx, "BC-100", loader)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
