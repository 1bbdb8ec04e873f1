package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusChainForwardOnly(t *testing.T) {
	chain := []Status{
		StatusPending, StatusProcessing, StatusConfirmed, StatusPacked,
		StatusDispatched, StatusInTransit, StatusOutForDelivery, StatusDelivered,
	}
	for i := 0; i < len(chain)-1; i++ {
		require.True(t, chain[i].CanTransitionTo(chain[i+1]), "%s -> %s", chain[i], chain[i+1])
		require.False(t, chain[i+1].CanTransitionTo(chain[i]), "%s -> %s must be rejected", chain[i+1], chain[i])
	}

	// skipping ahead is allowed, only going backwards is not
	require.True(t, StatusPending.CanTransitionTo(StatusDispatched))
	require.False(t, StatusDispatched.CanTransitionTo(StatusDispatched))
}

func TestStatusCancelAndReturn(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPacked, StatusOutForDelivery} {
		require.True(t, s.CanTransitionTo(StatusCancelled), s)
		require.True(t, s.CanTransitionTo(StatusReturned), s)
	}
	for _, s := range []Status{StatusDelivered, StatusCancelled, StatusReturned} {
		require.True(t, s.IsTerminal(), s)
		require.False(t, s.CanTransitionTo(StatusCancelled), s)
		require.False(t, s.CanTransitionTo(StatusProcessing), s)
	}
}

func TestStatusValidity(t *testing.T) {
	require.True(t, StatusInTransit.IsValid())
	require.True(t, StatusReturned.IsValid())
	require.False(t, Status("Completed").IsValid())
	require.False(t, Status("").IsValid())
	require.False(t, StatusPending.CanTransitionTo(Status("Teleported")))
}

func TestProductsFallsBackToHeader(t *testing.T) {
	d := &Dispatch{ID: 3, Barcode: "BC-1", ProductName: "Widget", Qty: 4}
	products := d.Products()
	require.Len(t, products, 1)
	require.Equal(t, "BC-1", products[0].Barcode)
	require.EqualValues(t, 4, products[0].Qty)

	d.Items = []Item{
		{Barcode: "BC-2", Qty: 1},
		{Barcode: "BC-3", Qty: 2},
	}
	require.Len(t, d.Products(), 2)
}

func TestHasBarcode(t *testing.T) {
	d := &Dispatch{Barcode: "BC-1", Items: []Item{{Barcode: "BC-2"}}}
	require.True(t, d.HasBarcode("BC-1"))
	require.True(t, d.HasBarcode("BC-2"))
	require.False(t, d.HasBarcode("BC-9"))
}
