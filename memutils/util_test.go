package memutils_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/memfix/memutils"
)

func TestSizeToPages(t *testing.T) {
	require.Equal(t, uint64(0), memutils.SizeToPages(0))
	require.Equal(t, uint64(1), memutils.SizeToPages(1))
	require.Equal(t, uint64(1), memutils.SizeToPages(4096))
	require.Equal(t, uint64(2), memutils.SizeToPages(4097))
	require.Equal(t, uint64(3), memutils.SizeToPages(uint64(3*4096)))
}

func TestPagesToSize(t *testing.T) {
	require.Equal(t, uint64(0), memutils.PagesToSize(0))
	require.Equal(t, uint64(0x4000), memutils.PagesToSize(4))
}

func TestAlign(t *testing.T) {
	require.Equal(t, uint64(0x2000), memutils.AlignUp(uint64(0x1001), memutils.PageSize))
	require.Equal(t, uint64(0x1000), memutils.AlignUp(uint64(0x1000), memutils.PageSize))
	require.Equal(t, uint64(0x1000), memutils.AlignDown(uint64(0x1fff), memutils.PageSize))
	require.Equal(t, 32, memutils.AlignUp(17, 16))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(4096, "page"))
	err := memutils.CheckPow2(40, "stride")
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
}

func TestCheckAligned(t *testing.T) {
	require.NoError(t, memutils.CheckAligned(uint64(0x3000), memutils.PageSize, "address"))
	require.NoError(t, memutils.CheckAligned(uint64(0), memutils.PageSize, "address"))

	err := memutils.CheckAligned(uint64(0x3010), memutils.PageSize, "address")
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	err = memutils.CheckAligned(48, 24, "stride")
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
}
