package memmap

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

func hexString(value uint64) string {
	return fmt.Sprintf("0x%010X", value)
}

func (d Descriptor) printParameters(json *jwriter.ObjectState) {
	json.Name("Type").String(d.Type.String())
	json.Name("PhysicalStart").String(hexString(d.PhysicalStart))
	json.Name("PhysicalEnd").String(hexString(d.PhysicalEnd() - 1))
	json.Name("VirtualStart").String(hexString(d.VirtualStart))
	json.Name("Pages").Float64(float64(d.NumberOfPages))
	json.Name("Attributes").String(d.Attribute.String())
}

// WriteJSON populates a json object with the snapshot's metadata and every descriptor it contains
func (s *Snapshot) WriteJSON(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("Size").Int(s.Size)
	obj.Name("DescriptorSize").Int(s.DescriptorSize)
	obj.Name("DescriptorVersion").Int(int(s.DescriptorVersion))
	obj.Name("MapKey").Float64(float64(s.MapKey))
	obj.Name("Strategy").String(s.Strategy.String())

	arrayState := obj.Name("Descriptors").Array()
	defer arrayState.End()

	count := s.Len()
	for index := 0; index < count; index++ {
		descObj := arrayState.Object()
		s.Descriptor(index).printParameters(&descObj)
		descObj.End()
	}
}
