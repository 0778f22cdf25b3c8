package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vayuair/vayuair/internal/fault"
)

func TestKindOf(t *testing.T) {
	err := fault.New(fault.KindNotFound, "geo.resolve", "no match for identifier")
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
	assert.True(t, fault.IsKind(err, fault.KindNotFound))
	assert.False(t, fault.IsKind(err, fault.KindNetwork))
}

func TestKindOf_Wrapped(t *testing.T) {
	cause := errors.New("connection refused")
	err := fault.Wrap(fault.KindNetwork, "aqicn.fetch", cause)

	// Classification survives further wrapping.
	wrapped := fmt.Errorf("fetch snapshot: %w", err)
	assert.Equal(t, fault.KindNetwork, fault.KindOf(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, fault.KindUnknown, fault.KindOf(errors.New("boom")))
}

func TestError_Message(t *testing.T) {
	err := fault.Wrap(fault.KindTimeout, "nominatim.search", errors.New("deadline exceeded"))
	require.Contains(t, err.Error(), "nominatim.search")
	require.Contains(t, err.Error(), "timeout")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "quota", fault.KindQuota.String())
	assert.Equal(t, "unknown", fault.KindUnknown.String())
}
