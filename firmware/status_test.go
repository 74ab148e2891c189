package firmware_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/memfix/firmware"
	"github.com/vkngwrapper/memfix/memutils"
)

func TestStatusMatchesTaxonomy(t *testing.T) {
	testCases := map[string]struct {
		Status   firmware.Status
		Sentinel error
	}{
		"BufferTooSmall":   {firmware.BufferTooSmall, memutils.ErrBufferTooSmall},
		"OutOfResources":   {firmware.OutOfResources, memutils.ErrOutOfResources},
		"NotFound":         {firmware.NotFound, memutils.ErrNotFound},
		"InvalidParameter": {firmware.InvalidParameter, memutils.ErrInvalidArgument},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			require.True(t, errors.Is(testCase.Status, testCase.Sentinel))

			wrapped := errors.Wrap(testCase.Status, "calling firmware")
			require.True(t, errors.Is(wrapped, testCase.Sentinel))
			require.True(t, errors.Is(wrapped, testCase.Status))
		})
	}

	require.False(t, errors.Is(firmware.DeviceError, memutils.ErrBufferTooSmall))
}

func TestStatusErr(t *testing.T) {
	require.NoError(t, firmware.Success.Err())
	require.Equal(t, firmware.NotFound, firmware.NotFound.Err())
	require.Equal(t, "Buffer Too Small", firmware.BufferTooSmall.Error())
	require.Equal(t, "Status(0x8000000000000063)", firmware.Status(1<<63|0x63).String())
}

func TestAllocateTypeNames(t *testing.T) {
	require.Equal(t, "AllocateAddress", firmware.AllocateAddress.String())
	require.Equal(t, "AllocateMaxAddress", firmware.AllocateMaxAddress.String())
}
