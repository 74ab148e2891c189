package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

var (
	// ErrInvalidArgument is returned when a caller provides malformed input, such as an empty memory map
	// to compact or a zero-page allocation request
	ErrInvalidArgument error = errors.New("invalid argument")
	// ErrBufferTooSmall indicates that the buffer provided to the firmware memory map primitive could not
	// hold the live map. It is retried internally by the map acquirer and should never be seen by consumers
	// of the bootmem package.
	ErrBufferTooSmall error = errors.New("buffer too small")
	// ErrOutOfResources indicates that an allocation primitive was exhausted. Retrying will not help.
	ErrOutOfResources error = errors.New("out of resources")
	// ErrNotFound indicates that no free region satisfied a top-down allocation request. The caller
	// may retry with a different ceiling or exclusion window.
	ErrNotFound error = errors.New("not found")
	// ErrHandoffFailed is terminal: the exit-boot-services hand-off failed after its single permitted retry
	ErrHandoffFailed error = errors.New("hand-off failed")
)
