package firmware

import (
	"fmt"

	"github.com/vkngwrapper/memfix/memutils"
)

// Status is a raw firmware status code. Non-success values implement error and match the
// memutils error taxonomy through errors.Is.
type Status uint64

const errorBit Status = 1 << 63

const (
	Success           Status = 0
	LoadError         Status = errorBit | 1
	InvalidParameter  Status = errorBit | 2
	Unsupported       Status = errorBit | 3
	BadBufferSize     Status = errorBit | 4
	BufferTooSmall    Status = errorBit | 5
	NotReady          Status = errorBit | 6
	DeviceError       Status = errorBit | 7
	WriteProtected    Status = errorBit | 8
	OutOfResources    Status = errorBit | 9
	NotFound          Status = errorBit | 14
	Aborted           Status = errorBit | 21
	SecurityViolation Status = errorBit | 26
)

var statusMapping = map[Status]string{
	Success:           "Success",
	LoadError:         "Load Error",
	InvalidParameter:  "Invalid Parameter",
	Unsupported:       "Unsupported",
	BadBufferSize:     "Bad Buffer Size",
	BufferTooSmall:    "Buffer Too Small",
	NotReady:          "Not Ready",
	DeviceError:       "Device Error",
	WriteProtected:    "Write Protected",
	OutOfResources:    "Out of Resources",
	NotFound:          "Not Found",
	Aborted:           "Aborted",
	SecurityViolation: "Security Violation",
}

func (s Status) String() string {
	name, ok := statusMapping[s]
	if !ok {
		return fmt.Sprintf("Status(0x%X)", uint64(s))
	}
	return name
}

func (s Status) Error() string {
	return s.String()
}

// IsError reports whether the status represents a failure
func (s Status) IsError() bool {
	return s&errorBit != 0
}

// Is allows errors.Is to match firmware statuses against the memutils error taxonomy
func (s Status) Is(target error) bool {
	switch s {
	case InvalidParameter:
		return target == memutils.ErrInvalidArgument
	case BufferTooSmall:
		return target == memutils.ErrBufferTooSmall
	case OutOfResources:
		return target == memutils.ErrOutOfResources
	case NotFound:
		return target == memutils.ErrNotFound
	}
	return false
}

// Err converts a status into an error, returning nil for success and warning statuses
func (s Status) Err() error {
	if !s.IsError() {
		return nil
	}
	return s
}
