package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wareline/wareline/internal/journal"
)

func ts(minutesAgo int) time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(minutesAgo) * time.Minute)
}

func testHeader() Header {
	return Header{
		ID:          12,
		Timestamp:   ts(60),
		Warehouse:   "WH-A",
		OrderRef:    "ORD-1",
		AWB:         "AWB-9",
		Barcode:     "BC-100",
		ProductName: "Widget",
		Qty:         5,
		Status:      "Dispatched",
		Barcodes:    []string{"BC-100"},
	}
}

func TestAssembleOrdersNewestFirst(t *testing.T) {
	ledger := []Event{
		{EventTime: ts(50), Source: SourceLedger, MovementType: "DISPATCH", Qty: 5,
			Direction: "OUT", Reference: journal.DispatchRef(12, "AWB-9")},
	}
	dmg := []Event{
		{EventTime: ts(30), Source: SourceDamageRecovery, MovementType: "damage", Qty: 1},
	}
	xfer := []Event{
		{EventTime: ts(10), Source: SourceSelfTransfer, MovementType: "SELF_TRANSFER", Qty: 2,
			Direction: "OUT", Reference: journal.SelfTransferRef(3)},
	}

	events := Assemble(testHeader(), dmg, xfer, ledger, 0)
	require.Len(t, events, 4)
	for i := 1; i < len(events); i++ {
		require.False(t, events[i-1].EventTime.Before(events[i].EventTime))
	}
	require.Equal(t, SourceSelfTransfer, events[0].Source)
	require.Equal(t, SourceDispatch, events[3].Source)
}

func TestAssembleDropsNonConformingReferences(t *testing.T) {
	ledger := []Event{
		{EventTime: ts(50), Source: SourceLedger, MovementType: "DISPATCH", Qty: 5,
			Direction: "OUT", Reference: journal.DispatchRef(12, "AWB-9")},
		// wrong dispatch id: belongs to someone else's timeline
		{EventTime: ts(45), Source: SourceLedger, MovementType: "DISPATCH", Qty: 3,
			Direction: "OUT", Reference: journal.DispatchRef(99, "AWB-X")},
		// free-form reference outside the contract drops out silently
		{EventTime: ts(40), Source: SourceLedger, MovementType: "DISPATCH", Qty: 2,
			Direction: "OUT", Reference: "manual adjustment by ops"},
		{EventTime: ts(20), Source: SourceLedger, MovementType: "DISPATCH_REVERSAL", Qty: 5,
			Direction: "IN", Reference: journal.DispatchDeleteRef(12)},
	}

	events := Assemble(testHeader(), nil, nil, ledger, 0)
	require.Len(t, events, 3)
	for _, e := range events {
		require.NotEqual(t, "manual adjustment by ops", e.Reference)
		require.NotEqual(t, journal.DispatchRef(99, "AWB-X"), e.Reference)
	}
}

func TestAssembleCapsAtLimit(t *testing.T) {
	var ledger []Event
	for i := 0; i < 10; i++ {
		ledger = append(ledger, Event{
			EventTime: ts(i), Source: SourceLedger, MovementType: "DISPATCH", Qty: 1,
			Direction: "OUT", Reference: journal.DispatchRef(12, "AWB-9"),
		})
	}
	events := Assemble(testHeader(), nil, nil, ledger, 4)
	require.Len(t, events, 4)
	require.Equal(t, ts(0), events[0].EventTime)
}

func TestSummarizeCounters(t *testing.T) {
	events := []Event{
		{Source: SourceDispatch, Qty: 5},
		{Source: SourceLedger, MovementType: "DISPATCH", Direction: "OUT", Qty: 5},
		{Source: SourceLedger, MovementType: "DISPATCH_REVERSAL", Direction: "IN", Qty: 5},
		{Source: SourceDamageRecovery, MovementType: "damage", Qty: 2},
		{Source: SourceDamageRecovery, MovementType: "recover", Qty: 1},
		// ledger echo of the damage action must not double the counter
		{Source: SourceLedger, MovementType: "DAMAGE", Direction: "OUT", Qty: 2, Reference: "damage#4"},
		{Source: SourceSelfTransfer, Direction: "IN", Qty: 3},
		{Source: SourceSelfTransfer, Direction: "OUT", Qty: 3},
	}

	s := Summarize(events)
	require.EqualValues(t, 5, s.Dispatched)
	require.EqualValues(t, 2, s.Damaged)
	require.EqualValues(t, 1, s.Recovered)
	require.EqualValues(t, 3, s.TransferredIn)
	require.EqualValues(t, 3, s.TransferredOut)
}
