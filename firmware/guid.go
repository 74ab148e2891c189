package firmware

import "github.com/google/uuid"

var (
	// AppleBootVariableGUID is the vendor GUID for boot.efi variables, which the OS exposes to userspace
	// through "nvram -p"
	AppleBootVariableGUID = uuid.MustParse("7C436110-AB2A-4BBB-A880-FE41995C9F82")
	// GlobalVariableGUID is the vendor GUID for architecturally defined variables
	GlobalVariableGUID = uuid.MustParse("8BE4DF61-93CA-11D2-AA0D-00E098032B8C")
	// AppleVendorVariableGUID is the vendor GUID for Apple platform variables
	AppleVendorVariableGUID = uuid.MustParse("4D1EDE05-38C7-4A6A-9CC6-4BCCA8B38C14")
)

var guidNames = map[uuid.UUID]string{
	AppleBootVariableGUID:   "gAppleBootVariableGuid",
	GlobalVariableGUID:      "gEfiGlobalVariableGuid",
	AppleVendorVariableGUID: "gAppleVendorVariableGuid",
}

// GUIDName returns a friendly name for well-known GUIDs and the canonical text form for any other
func GUIDName(guid uuid.UUID) string {
	name, ok := guidNames[guid]
	if !ok {
		return guid.String()
	}
	return name
}
