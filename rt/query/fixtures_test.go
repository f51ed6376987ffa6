package query_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-research-team/unirt/rt/adapter"
	"github.com/x-research-team/unirt/rt/adapter/emul"
	"github.com/x-research-team/unirt/rt/adapter/host"
	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
	"github.com/x-research-team/unirt/rt/query"
)

// countingAdapter оборачивает адаптер и считает обращения к источникам.
type countingAdapter struct {
	inner adapter.Adapter
	calls atomic.Int64
}

func (c *countingAdapter) Backend() handle.Backend { return c.inner.Backend() }

func (c *countingAdapter) Supports(kind property.Kind, id property.ID) bool {
	if caps, ok := c.inner.(adapter.Capabilities); ok {
		return caps.Supports(kind, id)
	}
	return true
}

func (c *countingAdapter) Scalar(ctx context.Context, t adapter.Target, d property.Descriptor) (any, error) {
	c.calls.Add(1)
	return c.inner.(adapter.ScalarSource).Scalar(ctx, t, d)
}

func (c *countingAdapter) Array(ctx context.Context, t adapter.Target, d property.Descriptor) (any, error) {
	c.calls.Add(1)
	return c.inner.(adapter.ArraySource).Array(ctx, t, d)
}

// env - тестовое окружение с двумя бэкендами.
type env struct {
	dispatcher *query.Dispatcher
	table      *handle.Table

	host     *countingAdapter
	emul     *countingAdapter
	emulGPU  *emul.Device
	platform *handle.Platform

	hostDevice   *handle.Device
	hostKernel   *handle.Kernel
	hostNative   *host.Kernel
	emulDevice   *handle.Device
	emulKernel   *handle.Kernel
	emulPlatform *handle.Platform
}

func gpuSpec() emul.DeviceSpec {
	return emul.DeviceSpec{
		Name:             "Emulated GPU",
		Vendor:           "unirt",
		VendorID:         0x8086,
		Type:             emul.TypeGPU,
		DriverVersion:    "1.2.3",
		ComputeUnits:     96,
		MaxWorkGroupSize: 1024,
		WorkItemSizes:    []uint64{1024, 1024, 64},
		SubGroupSizes:    []uint64{8, 16, 32},
		GlobalMemSize:    8 << 30,
		Extensions:       []string{"cl_khr_fp64", "cl_intel_subgroups"},
	}
}

func newEnv(t *testing.T, opts ...query.Option) *env {
	t.Helper()
	ctx := context.Background()

	hostAdapter := host.New()
	emulAdapter, err := emul.New("test platform", gpuSpec())
	require.NoError(t, err)

	e := &env{
		table: handle.NewTable(),
		host:  &countingAdapter{inner: hostAdapter},
		emul:  &countingAdapter{inner: emulAdapter},
	}

	registry := adapter.NewRegistry()
	require.NoError(t, registry.Register(e.host))
	require.NoError(t, registry.Register(e.emul))

	e.dispatcher, err = query.NewDispatcher(registry, opts...)
	require.NoError(t, err)

	platforms, err := hostAdapter.Platforms(ctx)
	require.NoError(t, err)
	e.platform, err = e.table.NewPlatform(host.Backend, platforms[0])
	require.NoError(t, err)
	devices, err := hostAdapter.Devices(ctx, platforms[0])
	require.NoError(t, err)
	e.hostDevice, err = e.table.NewDevice(host.Backend, devices[0])
	require.NoError(t, err)
	e.hostNative = host.NewKernel("vector_add", 3)
	e.hostKernel, err = e.table.NewKernel(host.Backend, e.hostNative)
	require.NoError(t, err)

	emulPlatforms, err := emulAdapter.Platforms(ctx)
	require.NoError(t, err)
	e.emulPlatform, err = e.table.NewPlatform(emul.Backend, emulPlatforms[0])
	require.NoError(t, err)
	e.emulGPU, err = emulAdapter.Device(0)
	require.NoError(t, err)
	e.emulDevice, err = e.table.NewDevice(emul.Backend, e.emulGPU)
	require.NoError(t, err)
	nativeKernel, err := emulAdapter.NewKernel(ctx, e.emulGPU, "reduce")
	require.NoError(t, err)
	e.emulKernel, err = e.table.NewKernel(emul.Backend, nativeKernel)
	require.NoError(t, err)

	return e
}

// requests возвращает базовые запросы для всех объектов окружения, по
// одному на тип объекта и бэкенд. Поле Property не заполнено.
func (e *env) requests() []query.Request {
	return []query.Request{
		{Kind: property.KindPlatform, Object: e.platform},
		{Kind: property.KindDevice, Object: e.hostDevice},
		{Kind: property.KindKernel, Object: e.hostKernel},
		{Kind: property.KindKernelSubGroup, Object: e.hostKernel, Device: e.hostDevice},
		{Kind: property.KindPlatform, Object: e.emulPlatform},
		{Kind: property.KindDevice, Object: e.emulDevice},
		{Kind: property.KindKernel, Object: e.emulKernel},
		{Kind: property.KindKernelSubGroup, Object: e.emulKernel, Device: e.emulDevice},
	}
}

func (e *env) calls() int64 {
	return e.host.calls.Load() + e.emul.calls.Load()
}
