package journal

import (
	"fmt"
	"strings"
)

// Reference builders. The formats below are a contract: timeline assembly
// joins ledger rows to their originating records by matching these strings.
// Rows written with a different shape silently drop out of the timeline.

// DispatchRef correlates a dispatch leg: DISPATCH_<dispatchID>_<awb>.
func DispatchRef(dispatchID int64, awb string) string {
	return fmt.Sprintf("DISPATCH_%d_%s", dispatchID, awb)
}

// DispatchDamageRef correlates damage reported against a dispatch:
// dispatch_damage#<damageID>.
func DispatchDamageRef(damageID int64) string {
	return fmt.Sprintf("dispatch_damage#%d", damageID)
}

// ActionRef correlates a standalone damage/recovery action:
// <actionType>#<id>.
func ActionRef(actionType string, id int64) string {
	return fmt.Sprintf("%s#%d", actionType, id)
}

// DispatchDeleteRef correlates reversal entries: DISPATCH_DELETE_<dispatchID>.
func DispatchDeleteRef(dispatchID int64) string {
	return fmt.Sprintf("DISPATCH_DELETE_%d", dispatchID)
}

// SelfTransferRef correlates self-transfer legs: SELF_TRANSFER_<transferID>.
func SelfTransferRef(transferID int64) string {
	return fmt.Sprintf("SELF_TRANSFER_%d", transferID)
}

// DispatchLikePattern is the SQL LIKE pattern matching dispatch legs of one
// dispatch id, used by timeline queries.
func DispatchLikePattern(dispatchID int64) string {
	return fmt.Sprintf("DISPATCH_%d\\_%%", dispatchID)
}

// MatchesDispatch reports whether a reference belongs to the given dispatch
// id, either a dispatch leg or its reversal.
func MatchesDispatch(reference string, dispatchID int64) bool {
	if reference == DispatchDeleteRef(dispatchID) {
		return true
	}
	return strings.HasPrefix(reference, fmt.Sprintf("DISPATCH_%d_", dispatchID))
}
