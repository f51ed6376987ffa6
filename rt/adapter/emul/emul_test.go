package emul_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/unirt/rt/adapter"
	"github.com/x-research-team/unirt/rt/adapter/emul"
	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
)

func spec(name string) emul.DeviceSpec {
	return emul.DeviceSpec{
		Name:             name,
		Vendor:           "unirt",
		VendorID:         0x8086,
		Type:             emul.TypeGPU,
		DriverVersion:    "1.2.3",
		ComputeUnits:     96,
		MaxWorkGroupSize: 1024,
		WorkItemSizes:    []uint64{1024, 1024, 1024},
		SubGroupSizes:    []uint64{8, 16, 32},
		GlobalMemSize:    1 << 33,
		Extensions:       []string{"ext_a", "ext_b"},
	}
}

func descriptor(t *testing.T, kind property.Kind, id property.ID) property.Descriptor {
	t.Helper()
	d, ok := property.Lookup(kind, id)
	require.True(t, ok)
	return d
}

func TestNew_ValidatesSpecs(t *testing.T) {
	t.Parallel()

	broken := []func(*emul.DeviceSpec){
		func(s *emul.DeviceSpec) { s.Name = "" },
		func(s *emul.DeviceSpec) { s.Type = "tpu" },
		func(s *emul.DeviceSpec) { s.MaxWorkGroupSize = 0 },
		func(s *emul.DeviceSpec) { s.SubGroupSizes = nil },
		func(s *emul.DeviceSpec) { s.SubGroupSizes = []uint64{0, 8} },
	}
	for i, mutate := range broken {
		s := spec("gpu")
		mutate(&s)
		_, err := emul.New("", s)
		assert.Error(t, err, "случай %d", i)
	}

	a, err := emul.New("", spec("gpu0"), spec("gpu1"))
	require.NoError(t, err)
	platforms, err := a.Platforms(context.Background())
	require.NoError(t, err)
	devices, err := a.Devices(context.Background(), platforms[0])
	require.NoError(t, err)
	assert.Len(t, devices, 2)
	second, err := a.Device(1)
	require.NoError(t, err)
	assert.Same(t, second, devices[1])

	_, err = a.Device(2)
	assert.Error(t, err, "Индекс за пределами списка устройств")
	_, err = a.Device(-1)
	assert.Error(t, err)
}

func TestDeviceType_Public(t *testing.T) {
	t.Parallel()

	assert.Equal(t, property.DeviceTypeGPU, emul.TypeGPU.Public())
	assert.Equal(t, property.DeviceTypeFPGA, emul.TypeFPGA.Public())
	assert.Equal(t, property.DeviceTypeDefault, emul.DeviceType("tpu").Public())
	assert.False(t, emul.DeviceType("tpu").Valid())
}

func TestAdapter_StateAndLoss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, err := emul.New("", spec("gpu0"))
	require.NoError(t, err)

	gpu, err := a.Device(0)
	require.NoError(t, err)
	table := handle.NewTable()
	dh, err := table.NewDevice(emul.Backend, gpu)
	require.NoError(t, err)
	target := adapter.Target{Object: dh.Object()}
	ext := descriptor(t, property.KindDevice, property.DeviceExtensions)

	v, err := a.Array(ctx, target, ext)
	require.NoError(t, err)
	assert.Equal(t, []string{"ext_a", "ext_b"}, v)

	gpu.AddExtension("ext_c")
	v, err = a.Array(ctx, target, ext)
	require.NoError(t, err)
	assert.Equal(t, []string{"ext_a", "ext_b", "ext_c"}, v)

	require.NoError(t, gpu.SetSubGroupSizes(16))
	v, err = a.Scalar(ctx, target, descriptor(t, property.KindDevice, property.DeviceMaxNumSubGroups))
	require.NoError(t, err)
	assert.Equal(t, uint64(64), v)

	assert.Error(t, gpu.SetSubGroupSizes())
	assert.Error(t, gpu.SetSubGroupSizes(0))
	v, err = a.Scalar(ctx, target, descriptor(t, property.KindDevice, property.DeviceMaxNumSubGroups))
	require.NoError(t, err)
	assert.Equal(t, uint64(64), v, "Отклоненные размеры не меняют состояние")

	gpu.Lose()
	_, err = a.Array(ctx, target, ext)
	assert.ErrorIs(t, err, emul.ErrDeviceLost)
	_, err = a.Scalar(ctx, target, descriptor(t, property.KindDevice, property.DeviceVendorID))
	assert.ErrorIs(t, err, emul.ErrDeviceLost)
}

func TestAdapter_SubGroup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, err := emul.New("", spec("gpu0"), spec("gpu1"))
	require.NoError(t, err)

	gpu0, err := a.Device(0)
	require.NoError(t, err)
	gpu1, err := a.Device(1)
	require.NoError(t, err)

	table := handle.NewTable()
	native, err := a.NewKernel(ctx, gpu0, "matmul")
	require.NoError(t, err)
	kh, err := table.NewKernel(emul.Backend, native)
	require.NoError(t, err)
	d0, err := table.NewDevice(emul.Backend, gpu0)
	require.NoError(t, err)
	d1, err := table.NewDevice(emul.Backend, gpu1)
	require.NoError(t, err)

	maxSize := descriptor(t, property.KindKernelSubGroup, property.KernelSubGroupMaxSubGroupSize)
	v, err := a.Scalar(ctx, adapter.Target{Object: kh.Object(), Device: d0.Object()}, maxSize)
	require.NoError(t, err)
	assert.Equal(t, uint64(32), v)

	_, err = a.Scalar(ctx, adapter.Target{Object: kh.Object(), Device: d1.Object()}, maxSize)
	assert.Error(t, err, "Ядро собрано для другого устройства")

	assert.False(t, a.Supports(property.KindKernelSubGroup, property.KernelSubGroupSubGroupSizeIntel))
	assert.False(t, a.Supports(property.KindKernel, property.KernelAttributes))
	assert.True(t, a.Supports(property.KindKernelSubGroup, property.KernelSubGroupMaxSubGroupSize))

	_, err = a.NewKernel(ctx, "чужое устройство", "k")
	assert.Error(t, err)
}
