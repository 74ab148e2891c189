package memutils

import (
	"math"
	"sort"

	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

type Statistics struct {
	RegionCount int
	PageCount   uint64
}

func (s *Statistics) Clear() {
	s.RegionCount = 0
	s.PageCount = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.RegionCount += other.RegionCount
	s.PageCount += other.PageCount
}

// Bytes returns the number of bytes covered by PageCount
func (s *Statistics) Bytes() uint64 {
	return PagesToSize(s.PageCount)
}

type DetailedStatistics struct {
	Statistics
	RegionPagesMin uint64
	RegionPagesMax uint64
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.RegionPagesMin = math.MaxUint64
	s.RegionPagesMax = 0
}

func (s *DetailedStatistics) AddRegion(pages uint64) {
	s.RegionCount++
	s.PageCount += pages

	if pages < s.RegionPagesMin {
		s.RegionPagesMin = pages
	}

	if pages > s.RegionPagesMax {
		s.RegionPagesMax = pages
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)

	if other.RegionPagesMin < s.RegionPagesMin {
		s.RegionPagesMin = other.RegionPagesMin
	}

	if other.RegionPagesMax > s.RegionPagesMax {
		s.RegionPagesMax = other.RegionPagesMax
	}
}

func (s *DetailedStatistics) writeJSON(json *jwriter.ObjectState) {
	json.Name("Regions").Int(s.RegionCount)
	json.Name("Pages").Float64(float64(s.PageCount))
	if s.RegionCount > 0 {
		json.Name("RegionPagesMin").Float64(float64(s.RegionPagesMin))
		json.Name("RegionPagesMax").Float64(float64(s.RegionPagesMax))
	}
}

// MapStatistics aggregates region statistics for a whole memory map, both overall and
// broken down by memory type. Memory types are kept as raw uint32 values so that
// implementation-specific types survive aggregation.
type MapStatistics struct {
	Total  DetailedStatistics
	byType *swiss.Map[uint32, *DetailedStatistics]
}

func NewMapStatistics() *MapStatistics {
	stats := &MapStatistics{}
	stats.Clear()
	return stats
}

func (s *MapStatistics) Clear() {
	s.Total.Clear()
	s.byType = swiss.NewMap[uint32, *DetailedStatistics](16)
}

// AddRegion records a single memory map region of the given type
func (s *MapStatistics) AddRegion(memoryType uint32, pages uint64) {
	s.Total.AddRegion(pages)

	typeStats, ok := s.byType.Get(memoryType)
	if !ok {
		typeStats = &DetailedStatistics{}
		typeStats.Clear()
		s.byType.Put(memoryType, typeStats)
	}

	typeStats.AddRegion(pages)
}

// Type retrieves the statistics for a single memory type. The boolean return value is false
// if no region of that type was recorded.
func (s *MapStatistics) Type(memoryType uint32) (DetailedStatistics, bool) {
	typeStats, ok := s.byType.Get(memoryType)
	if !ok {
		return DetailedStatistics{}, false
	}

	return *typeStats, true
}

// Types returns every memory type with at least one recorded region, in ascending order
func (s *MapStatistics) Types() []uint32 {
	types := make([]uint32, 0, s.byType.Count())
	s.byType.Iter(func(memoryType uint32, _ *DetailedStatistics) bool {
		types = append(types, memoryType)
		return false
	})

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// WriteJSON populates a json object with the overall statistics and one child object per memory type.
// typeName is used to name the per-type objects.
func (s *MapStatistics) WriteJSON(writer *jwriter.Writer, typeName func(memoryType uint32) string) {
	obj := writer.Object()
	defer obj.End()

	total := obj.Name("Total").Object()
	s.Total.writeJSON(&total)
	total.End()

	types := obj.Name("Types").Object()
	defer types.End()

	for _, memoryType := range s.Types() {
		typeStats, _ := s.byType.Get(memoryType)

		typeObj := types.Name(typeName(memoryType)).Object()
		typeStats.writeJSON(&typeObj)
		typeObj.End()
	}
}
