//go:build debug_mem_utils

package memutils

import "encoding/binary"

// poisonValue is written over released memory map buffers so that reads through a stale snapshot
// decode as an obviously invalid memory type
const poisonValue uint32 = 0x7F84E666

// DebugEnabled reports whether the debug_mem_utils build tag is present
const DebugEnabled = true

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_mem_utils build tag is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugPoison overwrites buffer with a recognizable pattern before it is returned to firmware.
// This method no-ops unless the debug_mem_utils build tag is present.
func DebugPoison(buffer []byte) {
	for offset := 0; offset+4 <= len(buffer); offset += 4 {
		binary.LittleEndian.PutUint32(buffer[offset:], poisonValue)
	}
}
