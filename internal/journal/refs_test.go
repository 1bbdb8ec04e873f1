package journal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReferenceFormats(t *testing.T) {
	require.Equal(t, "DISPATCH_12_AWB99", DispatchRef(12, "AWB99"))
	require.Equal(t, "dispatch_damage#7", DispatchDamageRef(7))
	require.Equal(t, "damage#3", ActionRef("damage", 3))
	require.Equal(t, "recover#4", ActionRef("recover", 4))
	require.Equal(t, "DISPATCH_DELETE_12", DispatchDeleteRef(12))
	require.Equal(t, "SELF_TRANSFER_8", SelfTransferRef(8))
}

func TestMatchesDispatch(t *testing.T) {
	require.True(t, MatchesDispatch("DISPATCH_12_AWB99", 12))
	require.True(t, MatchesDispatch("DISPATCH_DELETE_12", 12))
	require.False(t, MatchesDispatch("DISPATCH_120_AWB99", 12))
	require.False(t, MatchesDispatch("DISPATCH#12", 12))
	require.False(t, MatchesDispatch("dispatch_damage#12", 12))
}
