package main

import (
	"fmt"
	"strings"

	"github.com/x-research-team/unirt/rt/property"
	"github.com/x-research-team/unirt/rt/query"
)

var deviceTypeNames = map[uint32]string{
	property.DeviceTypeDefault: "DEFAULT",
	property.DeviceTypeAll:     "ALL",
	property.DeviceTypeGPU:     "GPU",
	property.DeviceTypeCPU:     "CPU",
	property.DeviceTypeFPGA:    "FPGA",
	property.DeviceTypeMCA:     "MCA",
	property.DeviceTypeVPU:     "VPU",
}

var backendNames = map[uint32]string{
	property.BackendUnknown:   "UNKNOWN",
	property.BackendLevelZero: "LEVEL_ZERO",
	property.BackendOpenCL:    "OPENCL",
	property.BackendCUDA:      "CUDA",
	property.BackendHIP:       "HIP",
	property.BackendNativeCPU: "NATIVE_CPU",
}

// formatValue печатает заполненный буфер согласно дескриптору свойства.
func formatValue(d property.Descriptor, b []byte) (string, error) {
	switch d.Shape {
	case property.ShapeString:
		return query.String(b), nil
	case property.ShapeStruct:
		if d.Kind == property.KindDevice && d.ID == property.DeviceUUID {
			id, err := query.UUID(b)
			if err != nil {
				return "", err
			}
			return id.String(), nil
		}
		return fmt.Sprintf("%x", b), nil
	case property.ShapeScalar:
		if d.Size == 8 {
			n, err := query.Uint64(b)
			return fmt.Sprint(n), err
		}
		n, err := query.Uint32(b)
		if err != nil {
			return "", err
		}
		switch {
		case d.Kind == property.KindDevice && d.ID == property.DeviceType:
			return enumName(deviceTypeNames, n), nil
		case d.Kind == property.KindPlatform && d.ID == property.PlatformBackend:
			return enumName(backendNames, n), nil
		}
		return fmt.Sprint(n), nil
	case property.ShapeArray:
		var parts []string
		if d.ElemSize == 8 {
			elems, err := query.Uint64s(b)
			if err != nil {
				return "", err
			}
			for _, e := range elems {
				parts = append(parts, fmt.Sprint(e))
			}
		} else {
			elems, err := query.Uint32s(b)
			if err != nil {
				return "", err
			}
			for _, e := range elems {
				parts = append(parts, fmt.Sprint(e))
			}
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	}
	return fmt.Sprintf("%x", b), nil
}

func enumName(names map[uint32]string, n uint32) string {
	if name, ok := names[n]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", n)
}
