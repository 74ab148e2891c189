package firmware

import (
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/unicode"
)

// VariableAttributes describe the visibility and persistence of a firmware variable
type VariableAttributes uint32

const (
	VariableNonVolatile                       VariableAttributes = 0x00000001
	VariableBootServiceAccess                 VariableAttributes = 0x00000002
	VariableRuntimeAccess                     VariableAttributes = 0x00000004
	VariableHardwareErrorRecord               VariableAttributes = 0x00000008
	VariableTimeBasedAuthenticatedWriteAccess VariableAttributes = 0x00000020
	VariableAppendWrite                       VariableAttributes = 0x00000040
)

var variableAttributeNames = []struct {
	flag VariableAttributes
	name string
}{
	{VariableNonVolatile, "NV"},
	{VariableBootServiceAccess, "BS"},
	{VariableRuntimeAccess, "RT"},
	{VariableHardwareErrorRecord, "HR"},
	{VariableTimeBasedAuthenticatedWriteAccess, "AT"},
	{VariableAppendWrite, "AW"},
}

func (a VariableAttributes) String() string {
	var parts []string
	for _, attr := range variableAttributeNames {
		if a&attr.flag != 0 {
			parts = append(parts, attr.name)
		}
	}
	return strings.Join(parts, "|")
}

var ucs2 = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// VariableName is a null-terminated little-endian UCS-2 variable name, as firmware expects it
type VariableName []byte

// NewVariableName encodes name for use with RuntimeServices.SetVariable
func NewVariableName(name string) (VariableName, error) {
	if name == "" {
		return nil, errors.New("variable name cannot be empty")
	}
	if strings.ContainsRune(name, 0) {
		return nil, errors.Newf("variable name %q contains a null character", name)
	}

	encoded, err := ucs2.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode variable name %q", name)
	}

	return append(encoded, 0, 0), nil
}

// String decodes the name, dropping the terminator
func (n VariableName) String() string {
	trimmed := []byte(n)
	if len(trimmed) >= 2 && trimmed[len(trimmed)-1] == 0 && trimmed[len(trimmed)-2] == 0 {
		trimmed = trimmed[:len(trimmed)-2]
	}

	decoded, err := ucs2.NewDecoder().Bytes(trimmed)
	if err != nil {
		return ""
	}
	return string(decoded)
}
