// Package sim provides a simulated pre-boot environment implementing firmware.BootServices,
// firmware.RuntimeServices and firmware.PhysicalMemory. It keeps a live memory map that changes with
// every page or pool allocation, hands out a new map key for each change, and records calls so that
// side effects can be inspected. memmapctl replays captured memory maps through it, and the bootmem
// and handoff tests drive it with fault injection hooks.
package sim

import (
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/google/uuid"
	"github.com/vkngwrapper/memfix/firmware"
	"github.com/vkngwrapper/memfix/memmap"
	"github.com/vkngwrapper/memfix/memutils"
)

// Options configures a simulated firmware
type Options struct {
	// DescriptorSize is the stride reported for memory map records. 0 selects 48, which exercises
	// vendor trailing bytes the same way most real firmware does.
	DescriptorSize int
	// Attribute is applied to regions created by allocations. 0 selects write-back.
	Attribute memmap.Attribute
}

// Variable is a stored firmware variable
type Variable struct {
	Name       string
	Vendor     uuid.UUID
	Attributes firmware.VariableAttributes
	Data       []byte
}

type poolAllocation struct {
	address uint64
	pages   uint64
}

// Firmware is a simulated pre-boot environment. It is not safe for concurrent use, matching the
// single-threaded environment it simulates.
type Firmware struct {
	descriptorSize int
	attribute      memmap.Attribute

	regions []memmap.Descriptor
	mapKey  uint64
	exited  bool

	pageAllocations map[uint64]uint64
	backing         map[uint64][]byte
	pools           map[*byte]poolAllocation
	variables       *swiss.Map[string, Variable]

	stalled time.Duration

	getMemoryMapCalls int
	exitCalls         int
	setVariableCalls  int
	failExits         int

	// BeforeGetMemoryMap is called at the start of every GetMemoryMap call with the zero-based call
	// index. Tests use it to simulate allocations made concurrently by other firmware drivers.
	BeforeGetMemoryMap func(call int)
	// SetVariableError, when not nil, is returned from every SetVariable call
	SetVariableError error
	// PoolExhausted makes every AllocatePool call fail with OutOfResources
	PoolExhausted bool
}

var _ firmware.BootServices = &Firmware{}
var _ firmware.RuntimeServices = &Firmware{}
var _ firmware.PhysicalMemory = &Firmware{}

// New creates a simulated firmware whose live memory map starts as a copy of regions. Regions
// must be ascending and non-overlapping.
func New(regions []memmap.Descriptor, options Options) (*Firmware, error) {
	if options.DescriptorSize == 0 {
		options.DescriptorSize = memmap.DescriptorSize + 8
	}
	if options.DescriptorSize < memmap.DescriptorSize {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "descriptor size %d is too small", options.DescriptorSize)
	}
	if options.Attribute == 0 {
		options.Attribute = memmap.AttributeUC | memmap.AttributeWC | memmap.AttributeWT | memmap.AttributeWB
	}

	check, err := memmap.NewSnapshot(regions, 0)
	if err != nil {
		return nil, err
	}
	err = check.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid initial memory map")
	}

	return &Firmware{
		descriptorSize:  options.DescriptorSize,
		attribute:       options.Attribute,
		regions:         append([]memmap.Descriptor(nil), regions...),
		mapKey:          1,
		pageAllocations: make(map[uint64]uint64),
		backing:         make(map[uint64][]byte),
		pools:           make(map[*byte]poolAllocation),
		variables:       swiss.NewMap[string, Variable](8),
	}, nil
}

// MapKey returns the key of the current memory map generation
func (f *Firmware) MapKey() uint64 { return f.mapKey }

// Regions returns a copy of the live memory map
func (f *Firmware) Regions() []memmap.Descriptor {
	return append([]memmap.Descriptor(nil), f.regions...)
}

// Exited reports whether ExitBootServices has succeeded
func (f *Firmware) Exited() bool { return f.exited }

// Stalled returns the total time spent in Stall
func (f *Firmware) Stalled() time.Duration { return f.stalled }

// GetMemoryMapCalls returns the number of GetMemoryMap calls made so far
func (f *Firmware) GetMemoryMapCalls() int { return f.getMemoryMapCalls }

// ExitCalls returns the number of ExitBootServices calls made so far
func (f *Firmware) ExitCalls() int { return f.exitCalls }

// SetVariableCalls returns the number of SetVariable calls made so far, including failed calls
func (f *Firmware) SetVariableCalls() int { return f.setVariableCalls }

// LivePools returns the number of pool buffers that have not been freed
func (f *Firmware) LivePools() int { return len(f.pools) }

// LivePageAllocations returns the number of page allocations that have not been freed
func (f *Firmware) LivePageAllocations() int { return len(f.pageAllocations) }

// FailNextExits makes the next count ExitBootServices calls fail with InvalidParameter, even when
// the map key is current
func (f *Firmware) FailNextExits(count int) { f.failExits = count }

// Variable retrieves a variable stored with SetVariable
func (f *Firmware) Variable(name string, vendor uuid.UUID) (Variable, bool) {
	return f.variables.Get(variableKey(name, vendor))
}

// Touch changes the map key without changing the map contents, as firmware does when an allocation
// is satisfied from an existing pool page
func (f *Firmware) Touch() {
	f.mapKey++
}

// AddRegion inserts a new region into the live map. It is intended for BeforeGetMemoryMap hooks
// simulating memory map growth.
func (f *Firmware) AddRegion(region memmap.Descriptor) {
	f.regions = append(f.regions, region)
	sort.Slice(f.regions, func(i, j int) bool { return f.regions[i].PhysicalStart < f.regions[j].PhysicalStart })
	f.mapKey++
}

func variableKey(name string, vendor uuid.UUID) string {
	return vendor.String() + ":" + name
}
