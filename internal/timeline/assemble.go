package timeline

import (
	"sort"
	"strings"

	"github.com/wareline/wareline/internal/journal"
)

// keepLedger decides whether a generic ledger row belongs to this dispatch's
// timeline. Rows whose reference does not follow the reference contract
// silently drop out; the assembler trusts the writers, not the readers.
func keepLedger(reference string, dispatchID int64) bool {
	if journal.MatchesDispatch(reference, dispatchID) {
		return true
	}
	if strings.HasPrefix(reference, "dispatch_damage#") {
		return true
	}
	if strings.HasPrefix(reference, "damage#") || strings.HasPrefix(reference, "recover#") {
		return true
	}
	return false
}

// Assemble merges the four event sources newest-first, dropping ledger rows
// outside the reference contract and capping the result at limit.
func Assemble(header Header, damageEvents, transferEvents, ledgerEvents []Event, limit int) []Event {
	events := make([]Event, 0, 1+len(damageEvents)+len(transferEvents)+len(ledgerEvents))
	events = append(events, Event{
		EventTime:   header.Timestamp,
		Source:      SourceDispatch,
		Barcode:     header.Barcode,
		ProductName: header.ProductName,
		Qty:         header.Qty,
		Status:      header.Status,
	})
	events = append(events, damageEvents...)
	events = append(events, transferEvents...)
	for _, e := range ledgerEvents {
		if keepLedger(e.Reference, header.ID) {
			events = append(events, e)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventTime.After(events[j].EventTime)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}

// Summarize derives the counters from assembled events. Damage and recovery
// are counted from their log rows, not their ledger echoes, so each action
// contributes once.
func Summarize(events []Event) Summary {
	var s Summary
	for _, e := range events {
		switch e.Source {
		case SourceDamageRecovery:
			switch e.MovementType {
			case "damage":
				s.Damaged += e.Qty
			case "recover":
				s.Recovered += e.Qty
			}
		case SourceSelfTransfer:
			switch e.Direction {
			case string(journal.DirectionIn):
				s.TransferredIn += e.Qty
			case string(journal.DirectionOut):
				s.TransferredOut += e.Qty
			}
		case SourceLedger:
			if e.MovementType == string(journal.MovementDispatch) && e.Direction == string(journal.DirectionOut) {
				s.Dispatched += e.Qty
			}
		}
	}
	return s
}
