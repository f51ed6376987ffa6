package query

import (
	"context"

	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
)

// PlatformGetInfo запрашивает свойство платформы.
func (d *Dispatcher) PlatformGetInfo(ctx context.Context, platform *handle.Platform, name property.ID, size int, value []byte, sizeRet *int) error {
	return d.Query(ctx, Request{
		Kind:     property.KindPlatform,
		Object:   platform,
		Property: name,
		Size:     size,
		Value:    value,
		SizeRet:  sizeRet,
	})
}

// DeviceGetInfo запрашивает свойство устройства.
func (d *Dispatcher) DeviceGetInfo(ctx context.Context, device *handle.Device, name property.ID, size int, value []byte, sizeRet *int) error {
	return d.Query(ctx, Request{
		Kind:     property.KindDevice,
		Object:   device,
		Property: name,
		Size:     size,
		Value:    value,
		SizeRet:  sizeRet,
	})
}

// KernelGetInfo запрашивает свойство ядра.
func (d *Dispatcher) KernelGetInfo(ctx context.Context, kernel *handle.Kernel, name property.ID, size int, value []byte, sizeRet *int) error {
	return d.Query(ctx, Request{
		Kind:     property.KindKernel,
		Object:   kernel,
		Property: name,
		Size:     size,
		Value:    value,
		SizeRet:  sizeRet,
	})
}

// KernelGetSubGroupInfo запрашивает свойство подгрупп ядра на устройстве.
func (d *Dispatcher) KernelGetSubGroupInfo(ctx context.Context, kernel *handle.Kernel, device *handle.Device, name property.ID, size int, value []byte, sizeRet *int) error {
	return d.Query(ctx, Request{
		Kind:     property.KindKernelSubGroup,
		Object:   kernel,
		Device:   device,
		Property: name,
		Size:     size,
		Value:    value,
		SizeRet:  sizeRet,
	})
}
