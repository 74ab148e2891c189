package firmware

import (
	"github.com/google/uuid"
	"github.com/vkngwrapper/memfix/memmap"
)

// Handle is an opaque firmware handle, such as the image handle passed to ExitBootServices
type Handle uintptr

// AllocateType selects how AllocatePages chooses an address
type AllocateType uint32

const (
	// AllocateAnyPages lets the firmware choose any address
	AllocateAnyPages AllocateType = iota
	// AllocateMaxAddress places the allocation at or below the provided address
	AllocateMaxAddress
	// AllocateAddress places the allocation exactly at the provided address
	AllocateAddress
	MaxAllocateType
)

var allocateTypeMapping = map[AllocateType]string{
	AllocateAnyPages:   "AllocateAnyPages",
	AllocateMaxAddress: "AllocateMaxAddress",
	AllocateAddress:    "AllocateAddress",
}

func (t AllocateType) String() string {
	return allocateTypeMapping[t]
}

// MemoryMapInfo is the metadata returned alongside a memory map
type MemoryMapInfo struct {
	// Size is the number of bytes written to the buffer on success, or the number of
	// bytes required when the call fails with BufferTooSmall
	Size              int
	MapKey            uint64
	DescriptorSize    int
	DescriptorVersion uint32
}

// BootServices is the subset of firmware boot services used by memfix
type BootServices interface {
	// GetMemoryMap copies the live memory map into buffer. A nil or too-small buffer fails with
	// BufferTooSmall and reports the required size in MemoryMapInfo.Size.
	GetMemoryMap(buffer []byte) (MemoryMapInfo, error)
	// AllocatePages reserves pages of the given type and returns their physical address. The meaning of
	// address depends on allocateType.
	AllocatePages(allocateType AllocateType, memoryType memmap.MemoryType, pages uint64, address uint64) (uint64, error)
	FreePages(address uint64, pages uint64) error
	// AllocatePool returns a byte-granular buffer. It returns OutOfResources when exhausted.
	AllocatePool(memoryType memmap.MemoryType, size int) ([]byte, error)
	FreePool(buffer []byte) error
	// ExitBootServices is the one-shot hand-off primitive. It fails with InvalidParameter when mapKey
	// does not identify the current memory map.
	ExitBootServices(image Handle, mapKey uint64) error
	// Stall busy-waits. It cannot be interrupted.
	Stall(microseconds uint64)
}

// RuntimeServices is the subset of firmware runtime services used by memfix
type RuntimeServices interface {
	SetVariable(name VariableName, vendor uuid.UUID, attributes VariableAttributes, data []byte) error
}

//go:generate mockgen -destination=mocks/services.go -package=mocks . BootServices,RuntimeServices,PhysicalMemory

// PhysicalMemory provides byte access to physical pages obtained from AllocatePages
type PhysicalMemory interface {
	Slice(address uint64, size int) ([]byte, error)
}
