// Package bootmem obtains memory map snapshots from firmware and places page allocations top-down.
package bootmem

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/memfix/firmware"
	"github.com/vkngwrapper/memfix/memmap"
	"github.com/vkngwrapper/memfix/memutils"
	"golang.org/x/exp/slog"
)

// Allocator obtains memory map snapshots from firmware and places page allocations as high as
// possible below a ceiling. It is not safe for concurrent use: pre-boot firmware runs a single
// thread and every call runs to completion before returning.
type Allocator struct {
	logger *slog.Logger
	boot   firmware.BootServices
	memory firmware.PhysicalMemory

	mapSlack           int
	snapshotMemoryType memmap.MemoryType
	defaultCeiling     uint64
}

func (a *Allocator) ceiling(ceiling uint64) uint64 {
	if ceiling == 0 {
		return a.defaultCeiling
	}
	return memutils.AlignDown(ceiling, memutils.PageSize)
}

// AcquireMap retrieves a snapshot of the live memory map into a buffer obtained with the requested
// strategy. With memmap.StrategyTopDown the buffer is placed by AllocateBelow under ceiling (0 selects
// the default ceiling); with memmap.StrategyPool ceiling is ignored.
//
// The firmware is first probed for the map size. Because allocating the buffer can itself grow the
// map, the buffer is sized with some slack and the fill is retried, with a freshly sized buffer, for
// as long as firmware reports that the buffer is too small. Buffer sizing failures never escape this
// method. The caller owns the returned snapshot and must release it with ReleaseMap.
func (a *Allocator) AcquireMap(strategy memmap.AllocationStrategy, ceiling uint64) (*memmap.Snapshot, error) {
	if strategy != memmap.StrategyPool && strategy != memmap.StrategyTopDown {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "unknown snapshot strategy %d", strategy)
	}
	if strategy == memmap.StrategyTopDown && a.memory == nil {
		return nil, errors.Wrap(memutils.ErrInvalidArgument, "the top-down snapshot strategy requires physical memory access")
	}

	info, err := a.boot.GetMemoryMap(nil)
	if !errors.Is(err, memutils.ErrBufferTooSmall) {
		if err == nil {
			err = errors.New("firmware accepted an empty memory map buffer")
		}
		a.logger.Warn("insane GetMemoryMap", slog.Any("error", err))
		return nil, errors.Wrap(err, "failed to probe memory map size")
	}

	ctx := context.Background()
	for attempt := 0; ; attempt++ {
		size := info.Size + a.mapSlack

		snapshot, err := a.allocateSnapshot(strategy, size, ceiling)
		if err != nil {
			return nil, err
		}

		info, err = a.boot.GetMemoryMap(snapshot.Buffer)
		if err == nil {
			snapshot.Size = info.Size
			snapshot.MapKey = info.MapKey
			snapshot.DescriptorSize = info.DescriptorSize
			snapshot.DescriptorVersion = info.DescriptorVersion

			return snapshot, nil
		}

		releaseErr := a.ReleaseMap(snapshot)
		if releaseErr != nil {
			a.logger.Warn("failed to release memory map buffer", slog.Any("error", releaseErr))
		}

		if !errors.Is(err, memutils.ErrBufferTooSmall) {
			a.logger.Warn("failed to obtain memory map", slog.Any("error", err))
			return nil, errors.Wrap(err, "failed to obtain memory map")
		}

		a.logger.LogAttrs(ctx, slog.LevelDebug, "memory map grew during acquisition",
			slog.Int("attempt", attempt),
			slog.Int("bufferSize", size),
			slog.Int("requiredSize", info.Size),
			slog.String("strategy", strategy.String()),
		)
	}
}

func (a *Allocator) allocateSnapshot(strategy memmap.AllocationStrategy, size int, ceiling uint64) (*memmap.Snapshot, error) {
	if strategy == memmap.StrategyPool {
		buffer, err := a.boot.AllocatePool(a.snapshotMemoryType, size)
		if err != nil {
			a.logger.Warn("temp memory map direct allocation failure", slog.Int("size", size), slog.Any("error", err))
			return nil, errors.Wrapf(err, "failed to allocate %d bytes for the memory map", size)
		}
		if buffer == nil {
			a.logger.Warn("temp memory map direct allocation failure", slog.Int("size", size))
			return nil, errors.Wrapf(memutils.ErrOutOfResources, "failed to allocate %d bytes for the memory map", size)
		}

		return &memmap.Snapshot{
			Buffer:   buffer,
			Strategy: memmap.StrategyPool,
		}, nil
	}

	pages := memutils.SizeToPages(size)
	address, err := a.AllocateBelow(a.snapshotMemoryType, pages, ceiling, nil)
	if err != nil {
		a.logger.Warn("temp memory map allocation from top failure", slog.Uint64("pages", pages), slog.Any("error", err))
		return nil, errors.Wrap(err, "failed to allocate memory map pages from the top")
	}

	buffer, err := a.memory.Slice(address, size)
	if err != nil {
		freeErr := a.boot.FreePages(address, pages)
		if freeErr != nil {
			a.logger.Warn("failed to free memory map pages", slog.Any("error", freeErr))
		}
		return nil, errors.Wrapf(err, "failed to access memory map pages at 0x%X", address)
	}

	return &memmap.Snapshot{
		Buffer:   buffer,
		Strategy: memmap.StrategyTopDown,
		Address:  address,
		Pages:    pages,
	}, nil
}

// ReleaseMap returns a snapshot's buffer using the primitive matching the snapshot's strategy. The
// snapshot must not be used afterwards.
func (a *Allocator) ReleaseMap(snapshot *memmap.Snapshot) error {
	if snapshot == nil || snapshot.Buffer == nil {
		return nil
	}

	memutils.DebugPoison(snapshot.Buffer)

	var err error
	switch snapshot.Strategy {
	case memmap.StrategyPool:
		err = a.boot.FreePool(snapshot.Buffer)
	case memmap.StrategyTopDown:
		err = a.boot.FreePages(snapshot.Address, snapshot.Pages)
	default:
		return errors.Wrapf(memutils.ErrInvalidArgument, "unknown snapshot strategy %d", snapshot.Strategy)
	}

	if err != nil {
		return errors.Wrapf(err, "failed to release %s memory map buffer", snapshot.Strategy)
	}

	snapshot.Buffer = nil
	snapshot.Size = 0
	return nil
}

// CurrentMapKey acquires a pool snapshot and returns only its map key. The snapshot buffer is not
// released: freeing it would change the map and invalidate the key that was just obtained. This is
// only appropriate immediately before ExitBootServices, after which boot services memory is reclaimed
// by the operating system anyway.
func (a *Allocator) CurrentMapKey() (uint64, error) {
	snapshot, err := a.AcquireMap(memmap.StrategyPool, 0)
	if err != nil {
		return 0, err
	}

	return snapshot.MapKey, nil
}
