// Package emul реализует эмулируемый ускоритель. Состояние устройств
// изменяемо (расширения, размеры подгрупп), а потеря устройства может быть
// вызвана явно, что позволяет проверять поведение протокола без оборудования.
//
// Нативные представления намеренно отличаются от бэкенда процессора:
// счетчики хранятся как uint64, тип устройства - строковым перечислением,
// расширения - списком строк.
package emul

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/x-research-team/unirt/rt/adapter"
	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
)

// Backend - ключ привязки объектов эмулируемого бэкенда.
const Backend handle.Backend = "emul"

// ErrDeviceLost возвращается для любого запроса к потерянному устройству.
var ErrDeviceLost = errors.New("device lost")

// DeviceType - нативное строковое перечисление типов устройств.
type DeviceType string

const (
	TypeGPU  DeviceType = "gpu"
	TypeCPU  DeviceType = "cpu"
	TypeFPGA DeviceType = "fpga"
	TypeVPU  DeviceType = "vpu"
	TypeMCA  DeviceType = "mca"
)

// Public переводит нативный тип устройства в публичное перечисление.
func (t DeviceType) Public() uint32 {
	switch t {
	case TypeGPU:
		return property.DeviceTypeGPU
	case TypeCPU:
		return property.DeviceTypeCPU
	case TypeFPGA:
		return property.DeviceTypeFPGA
	case TypeVPU:
		return property.DeviceTypeVPU
	case TypeMCA:
		return property.DeviceTypeMCA
	default:
		return property.DeviceTypeDefault
	}
}

// Valid сообщает, является ли тип известным значением перечисления.
func (t DeviceType) Valid() bool {
	switch t {
	case TypeGPU, TypeCPU, TypeFPGA, TypeVPU, TypeMCA:
		return true
	}
	return false
}

type backendType struct{}

func (backendType) Public() uint32 { return property.BackendOpenCL }

// DeviceSpec описывает начальное состояние эмулируемого устройства.
type DeviceSpec struct {
	Name             string
	Vendor           string
	VendorID         uint32
	Type             DeviceType
	DriverVersion    string
	ComputeUnits     uint64
	MaxWorkGroupSize uint64
	WorkItemSizes    []uint64
	SubGroupSizes    []uint64
	GlobalMemSize    uint64
	Extensions       []string
}

// Platform - нативная платформа эмулируемого бэкенда.
type Platform struct {
	Name    string
	Vendor  string
	Version string
	devices []*Device
}

// Device - нативное эмулируемое устройство. Доступ к состоянию
// сериализуется собственной блокировкой устройства.
type Device struct {
	id   uuid.UUID
	mu   sync.RWMutex
	spec DeviceSpec
	lost bool
}

// Kernel - нативное ядро эмулируемого бэкенда.
type Kernel struct {
	Name    string
	NumArgs uint64
	device  *Device
}

// Lose переводит устройство в состояние потери.
func (d *Device) Lose() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lost = true
}

// SetExtensions заменяет список расширений устройства.
func (d *Device) SetExtensions(ext ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spec.Extensions = slices.Clone(ext)
}

// AddExtension добавляет расширение в список.
func (d *Device) AddExtension(ext string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spec.Extensions = append(d.spec.Extensions, ext)
}

// SetSubGroupSizes заменяет список поддерживаемых размеров подгрупп.
// Пустой список и нулевой размер отклоняются, состояние при этом не меняется.
func (d *Device) SetSubGroupSizes(sizes ...uint64) error {
	if err := validateSubGroupSizes(sizes); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spec.SubGroupSizes = slices.Clone(sizes)
	return nil
}

// snapshot возвращает копию состояния или ErrDeviceLost.
func (d *Device) snapshot() (DeviceSpec, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.lost {
		return DeviceSpec{}, ErrDeviceLost
	}
	spec := d.spec
	spec.Extensions = slices.Clone(d.spec.Extensions)
	spec.SubGroupSizes = slices.Clone(d.spec.SubGroupSizes)
	spec.WorkItemSizes = slices.Clone(d.spec.WorkItemSizes)
	return spec, nil
}

// unsupported - свойства, которые эмулируемый бэкенд не реализует.
var unsupported = map[property.Kind][]property.ID{
	property.KindKernel:         {property.KernelAttributes},
	property.KindKernelSubGroup: {property.KernelSubGroupCompileNumSubGroups, property.KernelSubGroupSubGroupSizeIntel},
}

// Adapter - эмулируемый бэкенд с одной платформой.
type Adapter struct {
	platform *Platform
}

// New создает адаптер с платформой и набором устройств.
func New(platformName string, specs ...DeviceSpec) (*Adapter, error) {
	if platformName == "" {
		platformName = "unirt emulated platform"
	}
	p := &Platform{
		Name:    platformName,
		Vendor:  "unirt",
		Version: "1.0 emulated",
	}
	for i, spec := range specs {
		if err := validateSpec(spec); err != nil {
			return nil, fmt.Errorf("устройство %d: %w", i, err)
		}
		p.devices = append(p.devices, &Device{
			id:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("unirt.emul.%s.%d.%s", platformName, i, spec.Name))),
			spec: spec,
		})
	}
	return &Adapter{platform: p}, nil
}

func validateSpec(spec DeviceSpec) error {
	if spec.Name == "" {
		return errors.New("не указано имя устройства")
	}
	if !spec.Type.Valid() {
		return fmt.Errorf("неизвестный тип устройства '%s'", spec.Type)
	}
	if spec.MaxWorkGroupSize == 0 {
		return errors.New("нулевой предельный размер рабочей группы")
	}
	return validateSubGroupSizes(spec.SubGroupSizes)
}

func validateSubGroupSizes(sizes []uint64) error {
	if len(sizes) == 0 {
		return errors.New("не указаны размеры подгрупп")
	}
	if slices.Contains(sizes, 0) {
		return errors.New("нулевой размер подгруппы")
	}
	return nil
}

// Backend реализует adapter.Adapter.
func (a *Adapter) Backend() handle.Backend { return Backend }

// Supports реализует adapter.Capabilities.
func (a *Adapter) Supports(kind property.Kind, id property.ID) bool {
	return !slices.Contains(unsupported[kind], id)
}

// Platforms реализует adapter.Enumerator.
func (a *Adapter) Platforms(ctx context.Context) ([]any, error) {
	return []any{a.platform}, nil
}

// Devices реализует adapter.Enumerator.
func (a *Adapter) Devices(ctx context.Context, platform any) ([]any, error) {
	p, ok := platform.(*Platform)
	if !ok || p != a.platform {
		return nil, fmt.Errorf("платформа %v не принадлежит бэкенду '%s'", platform, Backend)
	}
	out := make([]any, len(p.devices))
	for i, d := range p.devices {
		out[i] = d
	}
	return out, nil
}

// Device возвращает нативное устройство по индексу.
func (a *Adapter) Device(i int) (*Device, error) {
	if i < 0 || i >= len(a.platform.devices) {
		return nil, fmt.Errorf("устройство #%d не найдено (устройств: %d)", i, len(a.platform.devices))
	}
	return a.platform.devices[i], nil
}

// NewKernel реализует adapter.KernelFactory.
func (a *Adapter) NewKernel(ctx context.Context, device any, name string) (any, error) {
	d, ok := device.(*Device)
	if !ok || !slices.Contains(a.platform.devices, d) {
		return nil, fmt.Errorf("устройство %v не принадлежит бэкенду '%s'", device, Backend)
	}
	return &Kernel{Name: name, device: d}, nil
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
		spec, err := dev.snapshot()
		if err != nil {
			return nil, err
		}
		return deviceScalar(dev, spec, d.ID)
	case property.KindKernel:
		k, err := handle.Native[*Kernel](t.Object)
		if err != nil {
			return nil, err
		}
		if _, err := k.device.snapshot(); err != nil {
			return nil, err
		}
		switch d.ID {
		case property.KernelNumArgs:
			return k.NumArgs, nil
		case property.KernelReferenceCount:
			return uint64(1), nil
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
		if k.device != dev {
			return nil, fmt.Errorf("ядро '%s' не собрано для устройства %s", k.Name, dev.id)
		}
		spec, err := dev.snapshot()
		if err != nil {
			return nil, err
		}
		switch d.ID {
		case property.KernelSubGroupMaxSubGroupSize:
			return slices.Max(spec.SubGroupSizes), nil
		case property.KernelSubGroupMaxNumSubGroups:
			return spec.MaxWorkGroupSize / slices.Min(spec.SubGroupSizes), nil
		}
	}
	return nil, adapter.ErrUnsupported
}

func deviceScalar(dev *Device, spec DeviceSpec, id property.ID) (any, error) {
	switch id {
	case property.DeviceType:
		return spec.Type, nil
	case property.DeviceVendorID:
		return spec.VendorID, nil
	case property.DeviceMaxComputeUnits:
		return spec.ComputeUnits, nil
	case property.DeviceMaxWorkGroupSize:
		return spec.MaxWorkGroupSize, nil
	case property.DeviceGlobalMemSize:
		return spec.GlobalMemSize, nil
	case property.DeviceMaxNumSubGroups:
		return spec.MaxWorkGroupSize / slices.Min(spec.SubGroupSizes), nil
	case property.DeviceUUID:
		return dev.id, nil
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
			return []string{"unirt_khr_emulation"}, nil
		}
	case property.KindDevice:
		dev, err := handle.Native[*Device](t.Object)
		if err != nil {
			return nil, err
		}
		spec, err := dev.snapshot()
		if err != nil {
			return nil, err
		}
		switch d.ID {
		case property.DeviceMaxWorkItemSizes:
			return spec.WorkItemSizes, nil
		case property.DeviceName:
			return spec.Name, nil
		case property.DeviceVendor:
			return spec.Vendor, nil
		case property.DeviceDriverVersion:
			return spec.DriverVersion, nil
		case property.DeviceExtensions:
			return spec.Extensions, nil
		case property.DeviceSubGroupSizesIntel:
			return spec.SubGroupSizes, nil
		}
	case property.KindKernel:
		k, err := handle.Native[*Kernel](t.Object)
		if err != nil {
			return nil, err
		}
		if _, err := k.device.snapshot(); err != nil {
			return nil, err
		}
		if d.ID == property.KernelFunctionName {
			return k.Name, nil
		}
	}
	return nil, adapter.ErrUnsupported
}
