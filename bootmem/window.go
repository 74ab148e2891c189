package bootmem

// Window is an address range [Low, Low+Length) that top-down allocations must not overlap,
// such as the area a kernel image is about to be relocated into
type Window struct {
	Low    uint64
	Length uint64
}

// End returns the first address past the window
func (w Window) End() uint64 {
	return w.Low + w.Length
}

// Overlaps reports whether [start, start+size) intersects the window. Empty ranges never overlap.
func (w Window) Overlaps(start, size uint64) bool {
	if w.Length == 0 || size == 0 {
		return false
	}

	return start < w.End() && w.Low < start+size
}
