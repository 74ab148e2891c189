package memmap

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/memfix/memutils"
)

// CanJoin reports whether next may be folded into target by Compact: the attributes must be identical,
// next must begin exactly where target ends, and both types must be mergeable.
func CanJoin(target, next Descriptor) bool {
	if target.Attribute != next.Attribute || target.PhysicalEnd() != next.PhysicalStart {
		return false
	}

	return target.Type.IsMergeable() && next.Type.IsMergeable()
}

// Compact rewrites the snapshot in place into the shortest equivalent list of descriptors and
// returns the new map size in bytes. snapshot.Size is updated to match; the stride is unchanged.
//
// Adjacent descriptors are joined when CanJoin allows it. A joined descriptor always becomes
// ConventionalMemory. Descriptors that cannot be joined keep their contents and relative order,
// including any vendor trailing bytes.
//
// Compact never allocates: it walks the buffer with a write cursor (the current merge target) and a
// read cursor, and closes gaps left by merges by shifting the unread tail down.
func Compact(snapshot *Snapshot) (int, error) {
	if snapshot == nil {
		return 0, errors.Wrap(memutils.ErrInvalidArgument, "cannot compact a nil memory map")
	}

	err := snapshot.checkLayout()
	if err != nil {
		return 0, err
	}

	if snapshot.Size == 0 {
		return 0, errors.Wrap(memutils.ErrInvalidArgument, "cannot compact an empty memory map")
	}

	stride := snapshot.DescriptorSize
	buffer := snapshot.Buffer
	end := snapshot.Size

	var check compactionCheck
	if memutils.DebugEnabled {
		check = compactionCheck{snapshot: snapshot, pages: totalPages(snapshot)}
	}

	write := 0
	target := decodeDescriptor(buffer[write:])
	hasEntriesToRemove := false

	for read := stride; read < end; read += stride {
		next := decodeDescriptor(buffer[read:])

		if CanJoin(target, next) {
			target.Type = ConventionalMemory
			target.NumberOfPages += next.NumberOfPages
			putType(buffer[write:], target.Type)
			putPages(buffer[write:], target.NumberOfPages)
			hasEntriesToRemove = true
			continue
		}

		write += stride
		if hasEntriesToRemove {
			// Everything between write and read was folded into the previous target
			copy(buffer[write:], buffer[read:end])
			end -= read - write
			read = write
			hasEntriesToRemove = false
		}

		target = next
	}

	snapshot.Size = write + stride
	memutils.DebugValidate(check)

	return snapshot.Size, nil
}

// compactionCheck verifies what Compact itself guarantees, independently of whether the firmware map
// was well formed: pages are conserved and no joinable neighbours remain.
type compactionCheck struct {
	snapshot *Snapshot
	pages    uint64
}

func (c compactionCheck) Validate() error {
	if c.snapshot == nil {
		return nil
	}

	pages := totalPages(c.snapshot)
	if pages != c.pages {
		return errors.Errorf("compaction changed the page count from %d to %d", c.pages, pages)
	}

	count := c.snapshot.Len()
	for index := 1; index < count; index++ {
		if CanJoin(c.snapshot.Descriptor(index-1), c.snapshot.Descriptor(index)) {
			return errors.Errorf("descriptors %d and %d were left unjoined", index-1, index)
		}
	}

	return nil
}

func totalPages(snapshot *Snapshot) uint64 {
	var pages uint64
	count := snapshot.Len()
	for index := 0; index < count; index++ {
		pages += snapshot.Descriptor(index).NumberOfPages
	}
	return pages
}

// CompactDescriptors applies the same joining rules as Compact to a decoded slice of descriptors. The
// returned slice shares storage with the input.
func CompactDescriptors(descriptors []Descriptor) ([]Descriptor, error) {
	if len(descriptors) == 0 {
		return nil, errors.Wrap(memutils.ErrInvalidArgument, "cannot compact an empty memory map")
	}

	write := 0
	for read := 1; read < len(descriptors); read++ {
		if CanJoin(descriptors[write], descriptors[read]) {
			descriptors[write].Type = ConventionalMemory
			descriptors[write].NumberOfPages += descriptors[read].NumberOfPages
			continue
		}

		write++
		descriptors[write] = descriptors[read]
	}

	return descriptors[:write+1], nil
}
