package sim

import (
	"github.com/google/uuid"
	"github.com/vkngwrapper/memfix/firmware"
)

// SetVariable implements firmware.RuntimeServices
func (f *Firmware) SetVariable(name firmware.VariableName, vendor uuid.UUID, attributes firmware.VariableAttributes, data []byte) error {
	f.setVariableCalls++

	if f.SetVariableError != nil {
		return f.SetVariableError
	}

	decoded := name.String()
	if decoded == "" {
		return firmware.InvalidParameter
	}

	key := variableKey(decoded, vendor)
	if len(data) == 0 {
		f.variables.Delete(key)
		return nil
	}

	f.variables.Put(key, Variable{
		Name:       decoded,
		Vendor:     vendor,
		Attributes: attributes,
		Data:       append([]byte(nil), data...),
	})
	return nil
}
