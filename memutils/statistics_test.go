package memutils_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/memfix/memutils"
)

func TestMapStatistics(t *testing.T) {
	stats := memutils.NewMapStatistics()
	require.Empty(t, stats.Types())
	require.Equal(t, uint64(math.MaxUint64), stats.Total.RegionPagesMin)

	stats.AddRegion(7, 100)
	stats.AddRegion(4, 3)
	stats.AddRegion(7, 20)

	require.Equal(t, []uint32{4, 7}, stats.Types())
	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			RegionCount: 3,
			PageCount:   123,
		},
		RegionPagesMin: 3,
		RegionPagesMax: 100,
	}, stats.Total)

	conventional, ok := stats.Type(7)
	require.True(t, ok)
	require.Equal(t, 2, conventional.RegionCount)
	require.Equal(t, uint64(120), conventional.PageCount)
	require.Equal(t, uint64(20), conventional.RegionPagesMin)
	require.Equal(t, uint64(120*4096), conventional.Bytes())

	_, ok = stats.Type(10)
	require.False(t, ok)

	stats.Clear()
	require.Empty(t, stats.Types())
	require.Equal(t, 0, stats.Total.RegionCount)
}

func TestMapStatisticsJSON(t *testing.T) {
	stats := memutils.NewMapStatistics()
	stats.AddRegion(7, 4)

	writer := jwriter.NewWriter()
	stats.WriteJSON(&writer, func(memoryType uint32) string {
		return fmt.Sprintf("type%d", memoryType)
	})
	require.NoError(t, writer.Error())
	require.JSONEq(t, `{
		"Total": {"Regions": 1, "Pages": 4, "RegionPagesMin": 4, "RegionPagesMax": 4},
		"Types": {"type7": {"Regions": 1, "Pages": 4, "RegionPagesMin": 4, "RegionPagesMax": 4}}
	}`, string(writer.Bytes()))
}

func TestDetailedStatisticsAdd(t *testing.T) {
	var left, right memutils.DetailedStatistics
	left.Clear()
	right.Clear()

	left.AddRegion(10)
	right.AddRegion(2)
	right.AddRegion(50)

	left.AddDetailedStatistics(&right)
	require.Equal(t, 3, left.RegionCount)
	require.Equal(t, uint64(62), left.PageCount)
	require.Equal(t, uint64(2), left.RegionPagesMin)
	require.Equal(t, uint64(50), left.RegionPagesMax)
}
