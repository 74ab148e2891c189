package memmap

import (
	"encoding/binary"

	"github.com/vkngwrapper/memfix/memutils"
)

const (
	// DescriptorSize is the size in bytes of the fields this module understands. Firmware may report
	// a larger stride with vendor-specific trailing fields.
	DescriptorSize = 40
	// DescriptorVersion is the descriptor format version produced by NewSnapshot
	DescriptorVersion uint32 = 1

	offsetType          = 0
	offsetPhysicalStart = 8
	offsetVirtualStart  = 16
	offsetNumberOfPages = 24
	offsetAttribute     = 32
)

// Descriptor is a single entry in a memory map
type Descriptor struct {
	Type          MemoryType
	PhysicalStart uint64
	VirtualStart  uint64
	NumberOfPages uint64
	Attribute     Attribute
}

// Size returns the number of bytes covered by the descriptor
func (d Descriptor) Size() uint64 {
	return memutils.PagesToSize(d.NumberOfPages)
}

// PhysicalEnd returns the first physical address past the end of the descriptor
func (d Descriptor) PhysicalEnd() uint64 {
	return d.PhysicalStart + d.Size()
}

// Contains reports whether the physical address lies inside the descriptor
func (d Descriptor) Contains(address uint64) bool {
	return address >= d.PhysicalStart && address < d.PhysicalEnd()
}

func decodeDescriptor(record []byte) Descriptor {
	return Descriptor{
		Type:          MemoryType(binary.LittleEndian.Uint32(record[offsetType:])),
		PhysicalStart: binary.LittleEndian.Uint64(record[offsetPhysicalStart:]),
		VirtualStart:  binary.LittleEndian.Uint64(record[offsetVirtualStart:]),
		NumberOfPages: binary.LittleEndian.Uint64(record[offsetNumberOfPages:]),
		Attribute:     Attribute(binary.LittleEndian.Uint64(record[offsetAttribute:])),
	}
}

// encodeDescriptor only touches the known fields: padding and vendor trailing bytes are left alone
func encodeDescriptor(record []byte, d Descriptor) {
	putType(record, d.Type)
	binary.LittleEndian.PutUint64(record[offsetPhysicalStart:], d.PhysicalStart)
	binary.LittleEndian.PutUint64(record[offsetVirtualStart:], d.VirtualStart)
	putPages(record, d.NumberOfPages)
	binary.LittleEndian.PutUint64(record[offsetAttribute:], uint64(d.Attribute))
}

func putType(record []byte, t MemoryType) {
	binary.LittleEndian.PutUint32(record[offsetType:], uint32(t))
}

func putPages(record []byte, pages uint64) {
	binary.LittleEndian.PutUint64(record[offsetNumberOfPages:], pages)
}
