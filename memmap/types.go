package memmap

import (
	"fmt"
	"strings"
)

// MemoryType identifies the kind of memory a descriptor covers. Values at or above
// MaxMemoryType are implementation-specific (OEM or OS loader ranges) and are carried
// through every operation in this module verbatim.
type MemoryType uint32

const (
	ReservedMemoryType MemoryType = iota
	LoaderCode
	LoaderData
	BootServicesCode
	BootServicesData
	RuntimeServicesCode
	RuntimeServicesData
	ConventionalMemory
	UnusableMemory
	ACPIReclaimMemory
	ACPIMemoryNVS
	MemoryMappedIO
	MemoryMappedIOPortSpace
	PalCode
	PersistentMemory
	UnacceptedMemoryType
	MaxMemoryType
)

var memoryTypeMapping = map[MemoryType]string{
	ReservedMemoryType:      "Reserved",
	LoaderCode:              "LDR_code",
	LoaderData:              "LDR_data",
	BootServicesCode:        "BS_code",
	BootServicesData:        "BS_data",
	RuntimeServicesCode:     "RT_code",
	RuntimeServicesData:     "RT_data",
	ConventionalMemory:      "Available",
	UnusableMemory:          "Unusable",
	ACPIReclaimMemory:       "ACPI_recl",
	ACPIMemoryNVS:           "ACPI_NVS",
	MemoryMappedIO:          "MemMapIO",
	MemoryMappedIOPortSpace: "MemPortIO",
	PalCode:                 "PAL_code",
	PersistentMemory:        "Persist",
	UnacceptedMemoryType:    "Unaccept",
}

func (t MemoryType) String() string {
	name, ok := memoryTypeMapping[t]
	if !ok {
		return fmt.Sprintf("Type_%08X", uint32(t))
	}
	return name
}

// IsMergeable reports whether the type belongs to the fixed set of types that downstream
// OS loaders treat as eventually-free memory: boot services code & data, conventional memory,
// and loader code & data. Any two descriptors drawn from this set may be merged by Compact.
func (t MemoryType) IsMergeable() bool {
	switch t {
	case BootServicesCode, BootServicesData, ConventionalMemory, LoaderCode, LoaderData:
		return true
	}
	return false
}

// Attribute is the caching & access capability bitfield of a memory descriptor
type Attribute uint64

const (
	AttributeUC           Attribute = 0x0000000000000001
	AttributeWC           Attribute = 0x0000000000000002
	AttributeWT           Attribute = 0x0000000000000004
	AttributeWB           Attribute = 0x0000000000000008
	AttributeUCE          Attribute = 0x0000000000000010
	AttributeWP           Attribute = 0x0000000000001000
	AttributeRP           Attribute = 0x0000000000002000
	AttributeXP           Attribute = 0x0000000000004000
	AttributeNV           Attribute = 0x0000000000008000
	AttributeMoreReliable Attribute = 0x0000000000010000
	AttributeRO           Attribute = 0x0000000000020000
	AttributeSP           Attribute = 0x0000000000040000
	AttributeCPUCrypto    Attribute = 0x0000000000080000
	AttributeRuntime      Attribute = 0x8000000000000000
)

var attributeNames = []struct {
	flag Attribute
	name string
}{
	{AttributeUC, "UC"},
	{AttributeWC, "WC"},
	{AttributeWT, "WT"},
	{AttributeWB, "WB"},
	{AttributeUCE, "UCE"},
	{AttributeWP, "WP"},
	{AttributeRP, "RP"},
	{AttributeXP, "XP"},
	{AttributeNV, "NV"},
	{AttributeMoreReliable, "MoreReliable"},
	{AttributeRO, "RO"},
	{AttributeSP, "SP"},
	{AttributeCPUCrypto, "CPUCrypto"},
	{AttributeRuntime, "Runtime"},
}

func (a Attribute) String() string {
	if a == 0 {
		return "None"
	}

	var parts []string
	remaining := a
	for _, attr := range attributeNames {
		if a&attr.flag != 0 {
			parts = append(parts, attr.name)
			remaining &^= attr.flag
		}
	}

	if remaining != 0 {
		parts = append(parts, fmt.Sprintf("0x%X", uint64(remaining)))
	}

	return strings.Join(parts, "|")
}

// AllocationStrategy records where a Snapshot's backing storage came from. It determines which
// release primitive must be used for the snapshot and must travel with it for its whole lifetime.
type AllocationStrategy uint32

const (
	// StrategyPool indicates the snapshot buffer came from the byte-granular firmware pool allocator
	StrategyPool AllocationStrategy = iota
	// StrategyTopDown indicates the snapshot buffer is a run of pages placed by the top-down allocator
	StrategyTopDown
)

var allocationStrategyMapping = map[AllocationStrategy]string{
	StrategyPool:    "Pool",
	StrategyTopDown: "TopDown",
}

func (s AllocationStrategy) String() string {
	return allocationStrategyMapping[s]
}
