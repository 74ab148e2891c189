package sim

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/memfix/firmware"
	"github.com/vkngwrapper/memfix/memmap"
	"github.com/vkngwrapper/memfix/memutils"
)

// vendorFill is written into the trailing bytes of every record past memmap.DescriptorSize
const vendorFill byte = 0xEE

// GetMemoryMap implements firmware.BootServices
func (f *Firmware) GetMemoryMap(buffer []byte) (firmware.MemoryMapInfo, error) {
	call := f.getMemoryMapCalls
	f.getMemoryMapCalls++

	if f.BeforeGetMemoryMap != nil {
		f.BeforeGetMemoryMap(call)
	}

	info := firmware.MemoryMapInfo{
		Size:              len(f.regions) * f.descriptorSize,
		MapKey:            f.mapKey,
		DescriptorSize:    f.descriptorSize,
		DescriptorVersion: memmap.DescriptorVersion,
	}

	if f.exited {
		return info, firmware.Unsupported
	}

	if len(buffer) < info.Size {
		return info, firmware.BufferTooSmall
	}

	out := memmap.Snapshot{
		Buffer:         buffer,
		Size:           info.Size,
		DescriptorSize: f.descriptorSize,
	}
	for index, region := range f.regions {
		record := buffer[index*f.descriptorSize : (index+1)*f.descriptorSize]
		for i := memmap.DescriptorSize; i < len(record); i++ {
			record[i] = vendorFill
		}
		out.SetDescriptor(index, region)
	}

	return info, nil
}

// AllocatePages implements firmware.BootServices
func (f *Firmware) AllocatePages(allocateType firmware.AllocateType, memoryType memmap.MemoryType, pages uint64, address uint64) (uint64, error) {
	if f.exited {
		return 0, firmware.Unsupported
	}
	if pages == 0 || memoryType == memmap.ConventionalMemory {
		return 0, firmware.InvalidParameter
	}

	var target uint64
	switch allocateType {
	case firmware.AllocateAnyPages:
		var ok bool
		target, ok = f.findFromTop(pages, math.MaxUint64)
		if !ok {
			return 0, firmware.OutOfResources
		}
	case firmware.AllocateMaxAddress:
		var ok bool
		target, ok = f.findFromTop(pages, address)
		if !ok {
			return 0, firmware.NotFound
		}
	case firmware.AllocateAddress:
		if address&(memutils.PageSize-1) != 0 {
			return 0, firmware.InvalidParameter
		}
		if f.conventionalRegionIndex(address, pages) < 0 {
			return 0, firmware.NotFound
		}
		target = address
	default:
		return 0, firmware.InvalidParameter
	}

	f.convert(target, pages, memoryType, memmap.ConventionalMemory)
	f.pageAllocations[target] = pages
	return target, nil
}

// FreePages implements firmware.BootServices
func (f *Firmware) FreePages(address uint64, pages uint64) error {
	if f.exited {
		return firmware.Unsupported
	}

	allocated, ok := f.pageAllocations[address]
	if !ok || allocated != pages {
		return firmware.NotFound
	}

	delete(f.pageAllocations, address)
	delete(f.backing, address)
	f.release(address, pages)
	return nil
}

// AllocatePool implements firmware.BootServices
func (f *Firmware) AllocatePool(memoryType memmap.MemoryType, size int) ([]byte, error) {
	if f.exited {
		return nil, firmware.Unsupported
	}
	if size <= 0 {
		return nil, firmware.InvalidParameter
	}
	if f.PoolExhausted {
		return nil, firmware.OutOfResources
	}

	pages := memutils.SizeToPages(size)
	address, ok := f.findFromTop(pages, math.MaxUint64)
	if !ok {
		return nil, firmware.OutOfResources
	}

	f.convert(address, pages, memoryType, memmap.ConventionalMemory)

	buffer := make([]byte, size)
	f.pools[&buffer[0]] = poolAllocation{address: address, pages: pages}
	return buffer, nil
}

// FreePool implements firmware.BootServices
func (f *Firmware) FreePool(buffer []byte) error {
	if f.exited {
		return firmware.Unsupported
	}
	if len(buffer) == 0 {
		return firmware.InvalidParameter
	}

	allocation, ok := f.pools[&buffer[0]]
	if !ok {
		return firmware.InvalidParameter
	}

	delete(f.pools, &buffer[0])
	f.release(allocation.address, allocation.pages)
	return nil
}

// ExitBootServices implements firmware.BootServices
func (f *Firmware) ExitBootServices(image firmware.Handle, mapKey uint64) error {
	f.exitCalls++

	if f.exited {
		return firmware.Unsupported
	}
	if f.failExits > 0 {
		f.failExits--
		return firmware.InvalidParameter
	}
	if mapKey != f.mapKey {
		return firmware.InvalidParameter
	}

	f.exited = true
	return nil
}

// Stall implements firmware.BootServices. Time is only accounted, never actually spent.
func (f *Firmware) Stall(microseconds uint64) {
	f.stalled += time.Duration(microseconds) * time.Microsecond
}

// Slice implements firmware.PhysicalMemory for pages obtained from AllocatePages
func (f *Firmware) Slice(address uint64, size int) ([]byte, error) {
	for base, pages := range f.pageAllocations {
		end := base + memutils.PagesToSize(pages)
		if address < base || address+uint64(size) > end {
			continue
		}

		data, ok := f.backing[base]
		if !ok {
			data = make([]byte, memutils.PagesToSize(pages))
			f.backing[base] = data
		}

		offset := address - base
		return data[offset : offset+uint64(size)], nil
	}

	return nil, errors.Wrapf(firmware.InvalidParameter, "no page allocation covers 0x%X+%d", address, size)
}

// findFromTop finds the highest page-aligned run of free pages ending at or below limit
func (f *Firmware) findFromTop(pages uint64, limit uint64) (uint64, bool) {
	size := memutils.PagesToSize(pages)
	if limit != math.MaxUint64 {
		limit++
	}
	limit = memutils.AlignDown(limit, memutils.PageSize)

	for index := len(f.regions) - 1; index >= 0; index-- {
		region := f.regions[index]
		if region.Type != memmap.ConventionalMemory || region.NumberOfPages < pages {
			continue
		}

		top := region.PhysicalEnd()
		if top > limit {
			top = limit
		}
		if top < region.PhysicalStart+size {
			continue
		}

		return top - size, true
	}

	return 0, false
}

func (f *Firmware) conventionalRegionIndex(address, pages uint64) int {
	end := address + memutils.PagesToSize(pages)
	for index, region := range f.regions {
		if region.Type == memmap.ConventionalMemory && region.PhysicalStart <= address && end <= region.PhysicalEnd() {
			return index
		}
	}
	return -1
}

func (f *Firmware) release(address, pages uint64) {
	end := address + memutils.PagesToSize(pages)
	for _, region := range f.regions {
		if region.PhysicalStart <= address && end <= region.PhysicalEnd() {
			f.convert(address, pages, memmap.ConventionalMemory, region.Type)
			return
		}
	}
}

// convert changes the type of [address, address+pages) inside a region of type from, splitting the
// region as needed and coalescing neighbours afterwards. Every conversion is a new map generation.
func (f *Firmware) convert(address, pages uint64, to, from memmap.MemoryType) {
	end := address + memutils.PagesToSize(pages)

	for index, region := range f.regions {
		if region.Type != from || region.PhysicalStart > address || end > region.PhysicalEnd() {
			continue
		}

		var replacement []memmap.Descriptor
		if address > region.PhysicalStart {
			lower := region
			lower.NumberOfPages = (address - region.PhysicalStart) >> memutils.PageShift
			replacement = append(replacement, lower)
		}

		middle := region
		middle.Type = to
		middle.PhysicalStart = address
		middle.VirtualStart = 0
		middle.NumberOfPages = pages
		if middle.Attribute == 0 {
			middle.Attribute = f.attribute
		}
		replacement = append(replacement, middle)

		if end < region.PhysicalEnd() {
			upper := region
			upper.PhysicalStart = end
			upper.NumberOfPages = (region.PhysicalEnd() - end) >> memutils.PageShift
			replacement = append(replacement, upper)
		}

		regions := make([]memmap.Descriptor, 0, len(f.regions)+2)
		regions = append(regions, f.regions[:index]...)
		regions = append(regions, replacement...)
		regions = append(regions, f.regions[index+1:]...)
		f.regions = coalesce(regions)
		f.mapKey++
		return
	}
}

func coalesce(regions []memmap.Descriptor) []memmap.Descriptor {
	write := 0
	for read := 1; read < len(regions); read++ {
		current := &regions[write]
		next := regions[read]
		if current.Type == next.Type && current.Attribute == next.Attribute && current.PhysicalEnd() == next.PhysicalStart {
			current.NumberOfPages += next.NumberOfPages
			continue
		}

		write++
		regions[write] = next
	}
	return regions[:write+1]
}
