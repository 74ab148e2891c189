package bootmem

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/memfix/firmware"
	"github.com/vkngwrapper/memfix/memmap"
	"github.com/vkngwrapper/memfix/memutils"
	"golang.org/x/exp/slog"
)

// AllocateBelow reserves pages of memoryType as high as possible below ceiling and returns their
// physical address. A ceiling of 0 selects the default ceiling; other ceilings are rounded down to
// a page boundary. The whole allocation always ends at or below the ceiling.
//
// Free descriptors are examined from the highest address down. A descriptor lying entirely below
// the ceiling is used from its top; a descriptor straddling the ceiling is used from just below the
// ceiling. When avoid is not nil, candidates overlapping it are skipped and the scan continues to
// lower descriptors. If no candidate remains, the error matches memutils.ErrNotFound and no
// allocation has been made.
//
// The memory map used for the scan is always obtained with the pool strategy and is released before
// returning.
func (a *Allocator) AllocateBelow(memoryType memmap.MemoryType, pages uint64, ceiling uint64, avoid *Window) (address uint64, err error) {
	if pages == 0 {
		return 0, errors.Wrap(memutils.ErrInvalidArgument, "cannot allocate zero pages")
	}

	ceiling = a.ceiling(ceiling)
	size := memutils.PagesToSize(pages)

	snapshot, err := a.AcquireMap(memmap.StrategyPool, 0)
	if err != nil {
		return 0, err
	}
	defer func() {
		releaseErr := a.ReleaseMap(snapshot)
		if releaseErr != nil {
			a.logger.Warn("failed to release memory map buffer", slog.Any("error", releaseErr))
		}
	}()

	ctx := context.Background()
	for index := snapshot.Len() - 1; index >= 0; index-- {
		desc := snapshot.Descriptor(index)
		if desc.Type != memmap.ConventionalMemory || desc.NumberOfPages < pages || desc.PhysicalStart+size > ceiling {
			continue
		}

		candidate := ceiling - size
		if desc.PhysicalEnd() <= ceiling {
			candidate = desc.PhysicalEnd() - size
		}

		if avoid != nil && avoid.Overlaps(candidate, size) {
			a.logger.LogAttrs(ctx, slog.LevelDebug, "top-down candidate overlaps exclusion window",
				slog.Uint64("candidate", candidate),
				slog.Uint64("pages", pages),
				slog.Uint64("windowLow", avoid.Low),
				slog.Uint64("windowLength", avoid.Length),
			)
			continue
		}

		address, err = a.boot.AllocatePages(firmware.AllocateAddress, memoryType, pages, candidate)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to allocate %d pages at 0x%X", pages, candidate)
		}

		return address, nil
	}

	return 0, errors.Wrapf(memutils.ErrNotFound, "no free region holds %d pages below 0x%X", pages, ceiling)
}

// FreePages releases pages previously returned by AllocateBelow
func (a *Allocator) FreePages(address uint64, pages uint64) error {
	err := a.boot.FreePages(address, pages)
	if err != nil {
		return errors.Wrapf(err, "failed to free %d pages at 0x%X", pages, address)
	}
	return nil
}
