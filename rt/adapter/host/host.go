// Package host реализует бэкенд центрального процессора узла. Размер
// подгруппы выводится из ширины векторных расширений процессора.
package host

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/x-research-team/unirt/rt/adapter"
	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
)

// Backend - ключ привязки объектов бэкенда процессора.
const Backend handle.Backend = "host"

// maxWorkGroupSize - предельный размер рабочей группы для процессора.
const maxWorkGroupSize = 8192

// Version - версия бэкенда, сообщаемая платформой.
const Version = "0.1.0"

// deviceType - нативное перечисление типа устройства.
type deviceType uint8

const cpuDevice deviceType = 1

// Public переводит нативный тип в публичное перечисление.
func (deviceType) Public() uint32 { return property.DeviceTypeCPU }

type backendType struct{}

func (backendType) Public() uint32 { return property.BackendNativeCPU }

// Platform - нативная платформа бэкенда.
type Platform struct {
	Name    string
	Vendor  string
	Version string
}

// Device - нативное устройство бэкенда.
type Device struct {
	ID           uuid.UUID
	Name         string
	Vendor       string
	ComputeUnits int
	Lanes        int
	Memory       uint64
	Extensions   []string
}

// Kernel - нативное ядро. Необязательные атрибуты задаются при создании.
type Kernel struct {
	Name       string
	NumArgs    int
	Attributes string
	// RequiredSubGroupSize - размер подгруппы, заданный атрибутом ядра, 0 если не задан.
	RequiredSubGroupSize int
	// CompileNumSubGroups - число подгрупп, заданное при компиляции, 0 если не задано.
	CompileNumSubGroups int

	refs atomic.Int32
}

// Retain увеличивает счетчик ссылок ядра.
func (k *Kernel) Retain() { k.refs.Add(1) }

// Release уменьшает счетчик ссылок ядра.
func (k *Kernel) Release() { k.refs.Add(-1) }

// Adapter - бэкенд процессора с единственной платформой и устройством.
type Adapter struct {
	platform *Platform
	device   *Device
}

// New определяет возможности процессора и создает адаптер.
func New() *Adapter {
	lanes := simdLanes()
	name := fmt.Sprintf("Host CPU (%s, %d lanes)", runtime.GOARCH, lanes)
	return &Adapter{
		platform: &Platform{
			Name:    "unirt host platform",
			Vendor:  "unirt",
			Version: Version,
		},
		device: &Device{
			ID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte("unirt.host."+runtime.GOARCH)),
			Name:         name,
			Vendor:       "unirt",
			ComputeUnits: runtime.NumCPU(),
			Lanes:        lanes,
			Memory:       totalMemory(),
			Extensions:   extensions(),
		},
	}
}

// Backend реализует adapter.Adapter.
func (a *Adapter) Backend() handle.Backend { return Backend }

// Platforms реализует adapter.Enumerator.
func (a *Adapter) Platforms(ctx context.Context) ([]any, error) {
	return []any{a.platform}, nil
}

// Devices реализует adapter.Enumerator.
func (a *Adapter) Devices(ctx context.Context, platform any) ([]any, error) {
	if platform != a.platform {
		return nil, fmt.Errorf("платформа %v не принадлежит бэкенду '%s'", platform, Backend)
	}
	return []any{a.device}, nil
}

// NewKernel реализует adapter.KernelFactory.
func (a *Adapter) NewKernel(ctx context.Context, device any, name string) (any, error) {
	if device != a.device {
		return nil, fmt.Errorf("устройство %v не принадлежит бэкенду '%s'", device, Backend)
	}
	return NewKernel(name, 0), nil
}

// NewKernel создает нативное ядро с единичным счетчиком ссылок.
func NewKernel(name string, numArgs int) *Kernel {
	k := &Kernel{Name: name, NumArgs: numArgs}
	k.refs.Store(1)
	return k
}

// Scalar реализует adapter.ScalarSource.
func (a *Adapter) Scalar(ctx context.Context, t adapter.Target, d property.Descriptor) (any, error) {
	switch d.Kind {
	case property.KindPlatform:
		if d.ID == property.PlatformBackend {
			return backendType{}, nil
		}
	case property.KindDevice:
		dev, err := handle.Native[*Device](t.Object)
		if err != nil {
			return nil, err
		}
		return deviceScalar(dev, d.ID)
	case property.KindKernel:
		k, err := handle.Native[*Kernel](t.Object)
		if err != nil {
			return nil, err
		}
		switch d.ID {
		case property.KernelNumArgs:
			return k.NumArgs, nil
		case property.KernelReferenceCount:
			return k.refs.Load(), nil
		}
	case property.KindKernelSubGroup:
		k, err := handle.Native[*Kernel](t.Object)
		if err != nil {
			return nil, err
		}
		dev, err := handle.Native[*Device](t.Device)
		if err != nil {
			return nil, err
		}
		return subGroupScalar(k, dev, d.ID)
	}
	return nil, adapter.ErrUnsupported
}

func deviceScalar(dev *Device, id property.ID) (any, error) {
	switch id {
	case property.DeviceType:
		return cpuDevice, nil
	case property.DeviceVendorID:
		return 0, nil
	case property.DeviceMaxComputeUnits:
		return dev.ComputeUnits, nil
	case property.DeviceMaxWorkGroupSize:
		return maxWorkGroupSize, nil
	case property.DeviceGlobalMemSize:
		return dev.Memory, nil
	case property.DeviceMaxNumSubGroups:
		return maxWorkGroupSize / dev.Lanes, nil
	case property.DeviceUUID:
		return dev.ID, nil
	}
	return nil, adapter.ErrUnsupported
}

func subGroupScalar(k *Kernel, dev *Device, id property.ID) (any, error) {
	sgSize := dev.Lanes
	if k.RequiredSubGroupSize > 0 {
		sgSize = k.RequiredSubGroupSize
	}
	switch id {
	case property.KernelSubGroupMaxSubGroupSize:
		return sgSize, nil
	case property.KernelSubGroupMaxNumSubGroups:
		return (maxWorkGroupSize + sgSize - 1) / sgSize, nil
	case property.KernelSubGroupCompileNumSubGroups:
		return k.CompileNumSubGroups, nil
	case property.KernelSubGroupSubGroupSizeIntel:
		return k.RequiredSubGroupSize, nil
	}
	return nil, adapter.ErrUnsupported
}

// Array реализует adapter.ArraySource.
func (a *Adapter) Array(ctx context.Context, t adapter.Target, d property.Descriptor) (any, error) {
	switch d.Kind {
	case property.KindPlatform:
		p, err := handle.Native[*Platform](t.Object)
		if err != nil {
			return nil, err
		}
		switch d.ID {
		case property.PlatformName:
			return p.Name, nil
		case property.PlatformVendorName:
			return p.Vendor, nil
		case property.PlatformVersion:
			return p.Version, nil
		case property.PlatformExtensions:
			return a.device.Extensions, nil
		}
	case property.KindDevice:
		dev, err := handle.Native[*Device](t.Object)
		if err != nil {
			return nil, err
		}
		switch d.ID {
		case property.DeviceMaxWorkItemSizes:
			return []int{maxWorkGroupSize, maxWorkGroupSize, maxWorkGroupSize}, nil
		case property.DeviceName:
			return dev.Name, nil
		case property.DeviceVendor:
			return dev.Vendor, nil
		case property.DeviceDriverVersion:
			return runtime.Version(), nil
		case property.DeviceExtensions:
			return dev.Extensions, nil
		case property.DeviceSubGroupSizesIntel:
			return subGroupSizes(dev.Lanes), nil
		}
	case property.KindKernel:
		k, err := handle.Native[*Kernel](t.Object)
		if err != nil {
			return nil, err
		}
		switch d.ID {
		case property.KernelFunctionName:
			return k.Name, nil
		case property.KernelAttributes:
			return k.Attributes, nil
		}
	}
	return nil, adapter.ErrUnsupported
}
