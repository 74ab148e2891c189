package memutils

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

const (
	// PageShift is log2(PageSize)
	PageShift = 12
	// PageSize is the fixed firmware page size in bytes
	PageSize uint64 = 1 << PageShift

	// Base4GB is the default ceiling for top-down allocations
	Base4GB uint64 = 0x100000000
)

type Number interface {
	constraints.Integer
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// CheckAligned verifies that value is a multiple of alignment, which must be a power of two
func CheckAligned[T Number](value T, alignment T, name string) error {
	err := CheckPow2(alignment, "alignment")
	if err != nil {
		return err
	}
	if value&(alignment-1) != 0 {
		return cerrors.Wrapf(ErrInvalidArgument, "%s 0x%X is not aligned to 0x%X", name, value, alignment)
	}
	return nil
}

func AlignUp[T Number](value T, alignment T) T {
	return (value + alignment - 1) &^ (alignment - 1)
}

func AlignDown[T Number](value T, alignment T) T {
	return value &^ (alignment - 1)
}

// PagesToSize converts a page count into a byte count
func PagesToSize(pages uint64) uint64 {
	return pages << PageShift
}

// SizeToPages converts a byte count into the number of pages required to hold it, rounding up
func SizeToPages[T Number](size T) uint64 {
	return (uint64(size) >> PageShift) + boolToPage(uint64(size)&(PageSize-1) != 0)
}

func boolToPage(partial bool) uint64 {
	if partial {
		return 1
	}
	return 0
}
