package bootmem

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/memfix/firmware"
	"github.com/vkngwrapper/memfix/memmap"
	"github.com/vkngwrapper/memfix/memutils"
	"golang.org/x/exp/slog"
)

const (
	// defaultMapSlack is added to the memory map size reported by firmware before allocating a buffer
	// for it, since the allocation itself may add descriptors to the live map
	defaultMapSlack int = 256
)

// CreateOptions contains optional settings when creating an Allocator
type CreateOptions struct {
	// MapSlack is the number of bytes added to the firmware-reported memory map size before each
	// allocation attempt. Defaults to 256.
	MapSlack int
	// SnapshotMemoryType is the memory type used for memory map buffers. Defaults to
	// memmap.BootServicesData.
	SnapshotMemoryType memmap.MemoryType
	// DefaultCeiling is the ceiling used when a ceiling of 0 is passed to AcquireMap or
	// AllocateBelow. Defaults to 4GB.
	DefaultCeiling uint64
}

// New creates a new Allocator
//
// logger - Receives warnings about firmware misbehavior and debug traces of retries. May be nil.
//
// boot - The firmware boot services that maps and pages are obtained from
//
// memory - Provides access to pages returned by boot. It is only used by the top-down snapshot
// strategy, and may be nil if that strategy is never requested.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, boot firmware.BootServices, memory firmware.PhysicalMemory, options CreateOptions) (*Allocator, error) {
	if boot == nil {
		return nil, errors.Wrap(memutils.ErrInvalidArgument, "boot services are required")
	}
	if options.MapSlack < 0 {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "MapSlack must not be negative, got %d", options.MapSlack)
	}
	err := memutils.CheckAligned(options.DefaultCeiling, memutils.PageSize, "DefaultCeiling")
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	allocator := &Allocator{
		logger:             logger,
		boot:               boot,
		memory:             memory,
		mapSlack:           options.MapSlack,
		snapshotMemoryType: options.SnapshotMemoryType,
		defaultCeiling:     options.DefaultCeiling,
	}

	if allocator.mapSlack == 0 {
		allocator.mapSlack = defaultMapSlack
	}
	if allocator.snapshotMemoryType == memmap.ReservedMemoryType {
		allocator.snapshotMemoryType = memmap.BootServicesData
	}
	if allocator.defaultCeiling == 0 {
		allocator.defaultCeiling = memutils.Base4GB
	}

	return allocator, nil
}
