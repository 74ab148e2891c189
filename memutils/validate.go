package memutils

// Validatable is implemented by structures that can check their own consistency, such as memory map
// snapshots. DebugValidate calls Validate in debug builds.
type Validatable interface {
	Validate() error
}
