package memmap_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/memfix/memmap"
	"github.com/vkngwrapper/memfix/memutils"
)

const (
	attrA = memmap.AttributeUC | memmap.AttributeWC | memmap.AttributeWT | memmap.AttributeWB
	attrB = attrA | memmap.AttributeRuntime
)

func desc(memoryType memmap.MemoryType, start, pages uint64, attribute memmap.Attribute) memmap.Descriptor {
	return memmap.Descriptor{
		Type:          memoryType,
		PhysicalStart: start,
		NumberOfPages: pages,
		Attribute:     attribute,
	}
}

func compactDescriptors(t *testing.T, input []memmap.Descriptor) []memmap.Descriptor {
	snapshot, err := memmap.NewSnapshot(input, 0)
	require.NoError(t, err)

	size, err := memmap.Compact(snapshot)
	require.NoError(t, err)
	require.Equal(t, size, snapshot.Size)
	require.NoError(t, snapshot.Validate())

	return snapshot.Descriptors()
}

var compactCases = map[string]struct {
	Input    []memmap.Descriptor
	Expected []memmap.Descriptor
}{
	"BootDataJoinsFreeRun": {
		Input: []memmap.Descriptor{
			desc(memmap.ConventionalMemory, 0x0, 4, attrA),
			desc(memmap.BootServicesData, 0x4000, 2, attrA),
			desc(memmap.ACPIMemoryNVS, 0x6000, 1, attrA),
		},
		Expected: []memmap.Descriptor{
			desc(memmap.ConventionalMemory, 0x0, 6, attrA),
			desc(memmap.ACPIMemoryNVS, 0x6000, 1, attrA),
		},
	},
	"SingleEntry": {
		Input: []memmap.Descriptor{
			desc(memmap.LoaderData, 0x1000, 3, attrA),
		},
		Expected: []memmap.Descriptor{
			desc(memmap.LoaderData, 0x1000, 3, attrA),
		},
	},
	"AllMergeableTypesCollapse": {
		Input: []memmap.Descriptor{
			desc(memmap.LoaderCode, 0x0, 1, attrA),
			desc(memmap.LoaderData, 0x1000, 1, attrA),
			desc(memmap.BootServicesCode, 0x2000, 1, attrA),
			desc(memmap.BootServicesData, 0x3000, 1, attrA),
			desc(memmap.ConventionalMemory, 0x4000, 1, attrA),
		},
		Expected: []memmap.Descriptor{
			desc(memmap.ConventionalMemory, 0x0, 5, attrA),
		},
	},
	"TwoLoaderEntriesBecomeConventional": {
		Input: []memmap.Descriptor{
			desc(memmap.LoaderCode, 0x0, 2, attrA),
			desc(memmap.LoaderCode, 0x2000, 2, attrA),
		},
		Expected: []memmap.Descriptor{
			desc(memmap.ConventionalMemory, 0x0, 4, attrA),
		},
	},
	"AttributeMismatch": {
		Input: []memmap.Descriptor{
			desc(memmap.ConventionalMemory, 0x0, 4, attrA),
			desc(memmap.ConventionalMemory, 0x4000, 4, attrB),
		},
		Expected: []memmap.Descriptor{
			desc(memmap.ConventionalMemory, 0x0, 4, attrA),
			desc(memmap.ConventionalMemory, 0x4000, 4, attrB),
		},
	},
	"Gap": {
		Input: []memmap.Descriptor{
			desc(memmap.BootServicesCode, 0x0, 4, attrA),
			desc(memmap.ConventionalMemory, 0x5000, 4, attrA),
		},
		Expected: []memmap.Descriptor{
			desc(memmap.BootServicesCode, 0x0, 4, attrA),
			desc(memmap.ConventionalMemory, 0x5000, 4, attrA),
		},
	},
	"UnmergeableTypesPassThrough": {
		Input: []memmap.Descriptor{
			desc(memmap.RuntimeServicesCode, 0x0, 1, attrB),
			desc(memmap.RuntimeServicesData, 0x1000, 1, attrB),
			desc(memmap.ReservedMemoryType, 0x2000, 1, attrB),
		},
		Expected: []memmap.Descriptor{
			desc(memmap.RuntimeServicesCode, 0x0, 1, attrB),
			desc(memmap.RuntimeServicesData, 0x1000, 1, attrB),
			desc(memmap.ReservedMemoryType, 0x2000, 1, attrB),
		},
	},
	"SeveralRunsWithShifts": {
		Input: []memmap.Descriptor{
			desc(memmap.ConventionalMemory, 0x0, 1, attrA),
			desc(memmap.BootServicesData, 0x1000, 1, attrA),
			desc(memmap.BootServicesCode, 0x2000, 1, attrA),
			desc(memmap.ACPIReclaimMemory, 0x3000, 1, attrA),
			desc(memmap.LoaderData, 0x4000, 2, attrA),
			desc(memmap.ConventionalMemory, 0x6000, 2, attrA),
			desc(memmap.MemoryMappedIO, 0x10000, 16, attrB),
			desc(memmap.ConventionalMemory, 0x20000, 1, attrA),
			desc(memmap.BootServicesData, 0x21000, 7, attrA),
		},
		Expected: []memmap.Descriptor{
			desc(memmap.ConventionalMemory, 0x0, 3, attrA),
			desc(memmap.ACPIReclaimMemory, 0x3000, 1, attrA),
			desc(memmap.ConventionalMemory, 0x4000, 4, attrA),
			desc(memmap.MemoryMappedIO, 0x10000, 16, attrB),
			desc(memmap.ConventionalMemory, 0x20000, 8, attrA),
		},
	},
	"ImplementationSpecificTypeIsNotMergeable": {
		Input: []memmap.Descriptor{
			desc(memmap.ConventionalMemory, 0x0, 1, attrA),
			desc(memmap.MemoryType(0x80000001), 0x1000, 1, attrA),
			desc(memmap.ConventionalMemory, 0x2000, 1, attrA),
		},
		Expected: []memmap.Descriptor{
			desc(memmap.ConventionalMemory, 0x0, 1, attrA),
			desc(memmap.MemoryType(0x80000001), 0x1000, 1, attrA),
			desc(memmap.ConventionalMemory, 0x2000, 1, attrA),
		},
	},
}

func TestCompact(t *testing.T) {
	for name, testCase := range compactCases {
		t.Run(name, func(t *testing.T) {
			input := append([]memmap.Descriptor(nil), testCase.Input...)
			require.Equal(t, testCase.Expected, compactDescriptors(t, input))

			sliceResult, err := memmap.CompactDescriptors(input)
			require.NoError(t, err)
			require.Equal(t, testCase.Expected, sliceResult)
		})
	}
}

func TestCompactRejectsEmpty(t *testing.T) {
	snapshot, err := memmap.NewSnapshot(nil, 0)
	require.NoError(t, err)

	_, err = memmap.Compact(snapshot)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	_, err = memmap.Compact(nil)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	_, err = memmap.CompactDescriptors(nil)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))
}

func TestCompactRejectsBadLayout(t *testing.T) {
	snapshot := &memmap.Snapshot{
		Buffer:         make([]byte, 100),
		Size:           100,
		DescriptorSize: memmap.DescriptorSize,
	}

	_, err := memmap.Compact(snapshot)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))

	snapshot.DescriptorSize = 20
	snapshot.Size = 80
	_, err = memmap.Compact(snapshot)
	require.True(t, errors.Is(err, memutils.ErrInvalidArgument))
}

func TestCompactPreservesVendorTrailingBytes(t *testing.T) {
	const stride = 48

	snapshot, err := memmap.NewSnapshot([]memmap.Descriptor{
		desc(memmap.ConventionalMemory, 0x0, 1, attrA),
		desc(memmap.ConventionalMemory, 0x1000, 1, attrA),
		desc(memmap.RuntimeServicesData, 0x2000, 1, attrB),
		desc(memmap.PalCode, 0x3000, 1, attrB),
	}, stride)
	require.NoError(t, err)

	for index := 0; index < snapshot.Len(); index++ {
		for i := memmap.DescriptorSize; i < stride; i++ {
			snapshot.Buffer[index*stride+i] = byte(0xA0 + index)
		}
	}

	size, err := memmap.Compact(snapshot)
	require.NoError(t, err)
	require.Equal(t, 3*stride, size)
	require.Equal(t, stride, snapshot.DescriptorSize)

	expectedTrailer := []byte{0xA0, 0xA2, 0xA3}
	for index, trailer := range expectedTrailer {
		record := snapshot.Buffer[index*stride : (index+1)*stride]
		require.Equal(t, bytes.Repeat([]byte{trailer}, stride-memmap.DescriptorSize), record[memmap.DescriptorSize:])
	}

	require.Equal(t, desc(memmap.ConventionalMemory, 0x0, 2, attrA), snapshot.Descriptor(0))
	require.Equal(t, desc(memmap.RuntimeServicesData, 0x2000, 1, attrB), snapshot.Descriptor(1))
	require.Equal(t, desc(memmap.PalCode, 0x3000, 1, attrB), snapshot.Descriptor(2))
}

var randomTypes = []memmap.MemoryType{
	memmap.ConventionalMemory,
	memmap.ConventionalMemory,
	memmap.BootServicesCode,
	memmap.BootServicesData,
	memmap.LoaderCode,
	memmap.LoaderData,
	memmap.RuntimeServicesData,
	memmap.ACPIMemoryNVS,
	memmap.ReservedMemoryType,
}

func randomMap(rng *rand.Rand) []memmap.Descriptor {
	count := 1 + rng.Intn(64)
	descriptors := make([]memmap.Descriptor, 0, count)

	address := uint64(rng.Intn(16)) * memutils.PageSize
	for i := 0; i < count; i++ {
		attribute := attrA
		if rng.Intn(5) == 0 {
			attribute = attrB
		}

		pages := uint64(1 + rng.Intn(32))
		descriptors = append(descriptors, desc(randomTypes[rng.Intn(len(randomTypes))], address, pages, attribute))

		address += memutils.PagesToSize(pages)
		if rng.Intn(4) == 0 {
			address += memutils.PagesToSize(uint64(1 + rng.Intn(8)))
		}
	}

	return descriptors
}

func totalPages(descriptors []memmap.Descriptor) uint64 {
	var total uint64
	for _, d := range descriptors {
		total += d.NumberOfPages
	}
	return total
}

func TestCompactProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for iteration := 0; iteration < 500; iteration++ {
		input := randomMap(rng)

		snapshot, err := memmap.NewSnapshot(input, 0)
		require.NoError(t, err)

		_, err = memmap.Compact(snapshot)
		require.NoError(t, err)
		require.NoError(t, snapshot.Validate())

		output := snapshot.Descriptors()
		require.LessOrEqual(t, len(output), len(input))
		require.Equal(t, totalPages(input), totalPages(output))

		// No pair of neighbours left in the output can be joined
		for i := 1; i < len(output); i++ {
			require.False(t, memmap.CanJoin(output[i-1], output[i]))
		}

		// Idempotence, byte for byte
		once := append([]byte(nil), snapshot.Bytes()...)
		_, err = memmap.Compact(snapshot)
		require.NoError(t, err)
		require.Equal(t, once, snapshot.Bytes())

		sliceOutput, err := memmap.CompactDescriptors(append([]memmap.Descriptor(nil), input...))
		require.NoError(t, err)
		require.Equal(t, output, sliceOutput)
	}
}

func TestCompactToleratesMalformedFirmwareMap(t *testing.T) {
	testCases := map[string]struct {
		Input    []memmap.Descriptor
		Expected []memmap.Descriptor
	}{
		"Unsorted": {
			Input: []memmap.Descriptor{
				desc(memmap.ConventionalMemory, 0x10000, 1, attrA),
				desc(memmap.ACPIMemoryNVS, 0x0, 1, attrA),
			},
			Expected: []memmap.Descriptor{
				desc(memmap.ConventionalMemory, 0x10000, 1, attrA),
				desc(memmap.ACPIMemoryNVS, 0x0, 1, attrA),
			},
		},
		"ZeroPages": {
			Input: []memmap.Descriptor{
				desc(memmap.ConventionalMemory, 0x0, 0, attrA),
				desc(memmap.ConventionalMemory, 0x0, 2, attrA),
				desc(memmap.RuntimeServicesData, 0x2000, 1, attrA),
			},
			Expected: []memmap.Descriptor{
				desc(memmap.ConventionalMemory, 0x0, 2, attrA),
				desc(memmap.RuntimeServicesData, 0x2000, 1, attrA),
			},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			snapshot, err := memmap.NewSnapshot(testCase.Input, 0)
			require.NoError(t, err)
			require.Error(t, snapshot.Validate())

			require.NotPanics(t, func() {
				_, err = memmap.Compact(snapshot)
			})
			require.NoError(t, err)
			require.Equal(t, testCase.Expected, snapshot.Descriptors())
		})
	}
}
