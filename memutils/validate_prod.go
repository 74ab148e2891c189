//go:build !debug_mem_utils

package memutils

// DebugEnabled reports whether the debug_mem_utils build tag is present
const DebugEnabled = false

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_mem_utils build tag is present
func DebugValidate(validatable Validatable) {
}

// DebugPoison overwrites buffer with a recognizable pattern before it is returned to firmware.
// This method no-ops unless the debug_mem_utils build tag is present.
func DebugPoison(buffer []byte) {
}
