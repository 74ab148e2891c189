package memmap

import (
	"io"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/memfix/memutils"
)

// Snapshot is a copy of the firmware memory map taken at one moment. Descriptors are stored
// in Buffer at DescriptorSize strides, which may be larger than the fields this module decodes.
//
// A Snapshot is owned exclusively by whoever acquired it and must be released with the primitive
// matching Strategy. It becomes stale as soon as anything is allocated or freed after it was taken;
// the only way to observe staleness is to hand MapKey to the firmware and have it rejected.
type Snapshot struct {
	// Buffer is the backing storage for the map. Only the first Size bytes hold descriptors.
	Buffer []byte
	// Size is the number of bytes of Buffer holding valid descriptors
	Size int
	// DescriptorSize is the stride between descriptor records
	DescriptorSize int
	// DescriptorVersion is the descriptor format version reported by firmware
	DescriptorVersion uint32
	// MapKey identifies the generation of the live map this snapshot was taken from
	MapKey uint64

	// Strategy records which allocator provided Buffer
	Strategy AllocationStrategy
	// Address is the physical address of Buffer when Strategy is StrategyTopDown
	Address uint64
	// Pages is the number of pages backing Buffer when Strategy is StrategyTopDown
	Pages uint64
}

// NewSnapshot encodes descriptors into a fresh pool-strategy Snapshot using the provided stride.
// A stride of 0 uses DescriptorSize.
func NewSnapshot(descriptors []Descriptor, stride int) (*Snapshot, error) {
	if stride == 0 {
		stride = DescriptorSize
	}
	if stride < DescriptorSize {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "descriptor stride %d is smaller than a descriptor (%d)", stride, DescriptorSize)
	}

	snapshot := &Snapshot{
		Buffer:            make([]byte, len(descriptors)*stride),
		Size:              len(descriptors) * stride,
		DescriptorSize:    stride,
		DescriptorVersion: DescriptorVersion,
		Strategy:          StrategyPool,
	}

	for index, descriptor := range descriptors {
		snapshot.SetDescriptor(index, descriptor)
	}

	return snapshot, nil
}

// Load reads a raw memory map dump, such as one captured from firmware with GetMemoryMap, and
// wraps it in a pool-strategy Snapshot.
func Load(reader io.Reader, stride int) (*Snapshot, error) {
	if stride == 0 {
		stride = DescriptorSize
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read memory map dump")
	}

	snapshot := &Snapshot{
		Buffer:            data,
		Size:              len(data),
		DescriptorSize:    stride,
		DescriptorVersion: DescriptorVersion,
		Strategy:          StrategyPool,
	}

	err = snapshot.checkLayout()
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Len returns the number of descriptors in the snapshot
func (s *Snapshot) Len() int {
	if s.DescriptorSize == 0 {
		return 0
	}
	return s.Size / s.DescriptorSize
}

func (s *Snapshot) record(index int) []byte {
	offset := index * s.DescriptorSize
	return s.Buffer[offset : offset+s.DescriptorSize]
}

// Descriptor decodes the descriptor at index
func (s *Snapshot) Descriptor(index int) Descriptor {
	return decodeDescriptor(s.record(index))
}

// SetDescriptor encodes d over the descriptor at index. Any vendor trailing bytes in the record are preserved.
func (s *Snapshot) SetDescriptor(index int, d Descriptor) {
	encodeDescriptor(s.record(index), d)
}

// Descriptors decodes every descriptor in the snapshot into a new slice
func (s *Snapshot) Descriptors() []Descriptor {
	count := s.Len()
	descriptors := make([]Descriptor, 0, count)
	for index := 0; index < count; index++ {
		descriptors = append(descriptors, s.Descriptor(index))
	}
	return descriptors
}

// Bytes returns the valid portion of the backing buffer
func (s *Snapshot) Bytes() []byte {
	return s.Buffer[:s.Size]
}

func (s *Snapshot) checkLayout() error {
	if s.DescriptorSize < DescriptorSize {
		return errors.Wrapf(memutils.ErrInvalidArgument, "descriptor stride %d is smaller than a descriptor (%d)", s.DescriptorSize, DescriptorSize)
	}
	if s.Size < 0 || s.Size > len(s.Buffer) {
		return errors.Wrapf(memutils.ErrInvalidArgument, "map size %d does not fit in a buffer of %d bytes", s.Size, len(s.Buffer))
	}
	if s.Size%s.DescriptorSize != 0 {
		return errors.Wrapf(memutils.ErrInvalidArgument, "map size %d is not a multiple of the descriptor stride %d", s.Size, s.DescriptorSize)
	}
	return nil
}

// Validate performs consistency checks on the snapshot: the buffer layout must be sound and
// descriptors must be in ascending physical order without overlapping.
func (s *Snapshot) Validate() error {
	err := s.checkLayout()
	if err != nil {
		return err
	}

	count := s.Len()
	var previous Descriptor
	for index := 0; index < count; index++ {
		current := s.Descriptor(index)
		if current.NumberOfPages == 0 {
			return errors.Wrapf(memutils.ErrInvalidArgument, "descriptor %d at 0x%X has no pages", index, current.PhysicalStart)
		}

		if index > 0 {
			if current.PhysicalStart <= previous.PhysicalStart {
				return errors.Wrapf(memutils.ErrInvalidArgument, "descriptor %d at 0x%X is not above descriptor %d at 0x%X", index, current.PhysicalStart, index-1, previous.PhysicalStart)
			}
			if current.PhysicalStart < previous.PhysicalEnd() {
				return errors.Wrapf(memutils.ErrInvalidArgument, "descriptor %d at 0x%X overlaps descriptor %d ending at 0x%X", index, current.PhysicalStart, index-1, previous.PhysicalEnd())
			}
		}

		previous = current
	}

	return nil
}

// AddStatistics sums this snapshot's regions into the provided statistics
func (s *Snapshot) AddStatistics(stats *memutils.MapStatistics) {
	count := s.Len()
	for index := 0; index < count; index++ {
		d := s.Descriptor(index)
		stats.AddRegion(uint32(d.Type), d.NumberOfPages)
	}
}
