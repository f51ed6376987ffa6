package loader

import (
	"github.com/x-research-team/unirt/config"
	"github.com/x-research-team/unirt/rt/adapter/emul"
)

// emulSpecs переводит конфигурацию эмулируемых устройств в спецификации бэкенда.
func emulSpecs(devices []config.DeviceConfig) []emul.DeviceSpec {
	specs := make([]emul.DeviceSpec, len(devices))
	for i, d := range devices {
		specs[i] = emul.DeviceSpec{
			Name:             d.Name,
			Vendor:           d.Vendor,
			VendorID:         d.VendorID,
			Type:             emul.DeviceType(d.Type),
			DriverVersion:    d.DriverVersion,
			ComputeUnits:     d.ComputeUnits,
			MaxWorkGroupSize: d.MaxWorkGroupSize,
			WorkItemSizes:    d.WorkItemSizes,
			SubGroupSizes:    d.SubGroupSizes,
			GlobalMemSize:    d.GlobalMemSize,
			Extensions:       d.Extensions,
		}
	}
	return specs
}
