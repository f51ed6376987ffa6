package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/unirt/rt/adapter"
	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
)

type recorded struct {
	adapter  *Adapter
	table    *handle.Table
	platform *Object
	device   *Object
	kernel   *Object
	deviceID uuid.UUID
}

func newRecorded(t *testing.T) (*recorded, *memQuerier) {
	t.Helper()

	ctx := context.Background()
	db := newMemQuerier()
	store, err := NewStore(ctx, db)
	require.NoError(t, err)

	p, err := store.AddObject(ctx, handle.KindPlatform, nil, "Level Zero")
	require.NoError(t, err)
	d, err := store.AddObject(ctx, handle.KindDevice, &p.ID, "Arc A770")
	require.NoError(t, err)
	k, err := store.AddObject(ctx, handle.KindKernel, &d.ID, "saxpy")
	require.NoError(t, err)

	devUUID := uuid.MustParse("8c5d3d2e-6f1a-4c5e-9d8f-0a1b2c3d4e5f")
	records := []struct {
		obj   uuid.UUID
		kind  property.Kind
		id    property.ID
		value any
	}{
		{p.ID, property.KindPlatform, property.PlatformName, "Intel(R) Level-Zero"},
		{d.ID, property.KindDevice, property.DeviceMaxComputeUnits, 512},
		{d.ID, property.KindDevice, property.DeviceExtensions, []string{"cl_khr_fp16", "cl_khr_subgroups"}},
		{d.ID, property.KindDevice, property.DeviceSubGroupSizesIntel, []uint64{8, 16, 32}},
		{d.ID, property.KindDevice, property.DeviceUUID, devUUID},
		{k.ID, property.KindKernelSubGroup, property.KernelSubGroupMaxSubGroupSize, 32},
	}
	for _, r := range records {
		require.NoError(t, store.Record(ctx, r.obj, r.kind, r.id, r.value))
	}

	return &recorded{
		adapter:  New(store),
		table:    handle.NewTable(),
		platform: p,
		device:   d,
		kernel:   k,
		deviceID: devUUID,
	}, db
}

func (r *recorded) object(t *testing.T, kind handle.Kind, native *Object) *handle.Object {
	t.Helper()

	var (
		h   handle.Handle
		err error
	)
	switch kind {
	case handle.KindPlatform:
		h, err = r.table.NewPlatform(Backend, native)
	case handle.KindDevice:
		h, err = r.table.NewDevice(Backend, native)
	default:
		h, err = r.table.NewKernel(Backend, native)
	}
	require.NoError(t, err)
	return h.Object()
}

func lookup(t *testing.T, kind property.Kind, id property.ID) property.Descriptor {
	t.Helper()
	d, ok := property.Lookup(kind, id)
	require.True(t, ok)
	return d
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	_, err := NewStore(context.Background(), nil)
	assert.Error(t, err)

	db := newMemQuerier()
	db.failWith = errors.New("connection refused")
	_, err = NewStore(context.Background(), db)
	assert.ErrorIs(t, err, db.failWith)
}

func TestStore_RecordRejectsUnknownProperty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newMemQuerier()
	store, err := NewStore(ctx, db)
	require.NoError(t, err)

	err = store.Record(ctx, uuid.New(), property.KindDevice, property.ForceUint32, 1)
	assert.Error(t, err)
	assert.Equal(t, 1, db.execs, "Запись неизвестного свойства не доходит до базы")
}

func TestAdapter_Enumeration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newRecorded(t)

	platforms, err := r.adapter.Platforms(ctx)
	require.NoError(t, err)
	require.Len(t, platforms, 1)
	assert.Equal(t, "Level Zero", platforms[0].(*Object).Label)

	devices, err := r.adapter.Devices(ctx, platforms[0])
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, r.device.ID, devices[0].(*Object).ID)

	_, err = r.adapter.Devices(ctx, devices[0])
	assert.Error(t, err, "Устройство не является платформой")

	kernel, err := r.adapter.NewKernel(ctx, devices[0], "saxpy")
	require.NoError(t, err)
	assert.Equal(t, r.kernel.ID, kernel.(*Object).ID)

	_, err = r.adapter.NewKernel(ctx, devices[0], "missing")
	assert.Error(t, err)
}

func TestAdapter_RecordedValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newRecorded(t)
	dev := adapter.Target{Object: r.object(t, handle.KindDevice, r.device)}
	plat := adapter.Target{Object: r.object(t, handle.KindPlatform, r.platform)}

	v, err := r.adapter.Array(ctx, plat, lookup(t, property.KindPlatform, property.PlatformName))
	require.NoError(t, err)
	assert.Equal(t, "Intel(R) Level-Zero", v)

	v, err = r.adapter.Scalar(ctx, dev, lookup(t, property.KindDevice, property.DeviceMaxComputeUnits))
	require.NoError(t, err)
	assert.Equal(t, uint64(512), v)

	v, err = r.adapter.Array(ctx, dev, lookup(t, property.KindDevice, property.DeviceExtensions))
	require.NoError(t, err)
	assert.Equal(t, []string{"cl_khr_fp16", "cl_khr_subgroups"}, v)

	v, err = r.adapter.Array(ctx, dev, lookup(t, property.KindDevice, property.DeviceSubGroupSizesIntel))
	require.NoError(t, err)
	assert.Equal(t, []uint64{8, 16, 32}, v)

	v, err = r.adapter.Scalar(ctx, dev, lookup(t, property.KindDevice, property.DeviceUUID))
	require.NoError(t, err)
	assert.Equal(t, r.deviceID, v)

	_, err = r.adapter.Scalar(ctx, dev, lookup(t, property.KindDevice, property.DeviceVendorID))
	assert.ErrorIs(t, err, adapter.ErrUnsupported, "Отсутствие записи означает отсутствие поддержки")
}

func TestAdapter_SubGroupRequiresOwningDevice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newRecorded(t)
	kernel := r.object(t, handle.KindKernel, r.kernel)
	device := r.object(t, handle.KindDevice, r.device)
	foreign := r.object(t, handle.KindDevice, &Object{ID: uuid.New(), Kind: handle.KindDevice, Label: "other"})
	maxSize := lookup(t, property.KindKernelSubGroup, property.KernelSubGroupMaxSubGroupSize)

	v, err := r.adapter.Scalar(ctx, adapter.Target{Object: kernel, Device: device}, maxSize)
	require.NoError(t, err)
	assert.Equal(t, uint64(32), v)

	_, err = r.adapter.Scalar(ctx, adapter.Target{Object: kernel, Device: foreign}, maxSize)
	require.Error(t, err)
	assert.NotErrorIs(t, err, adapter.ErrUnsupported)
}

func TestAdapter_DatabaseFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, db := newRecorded(t)
	dev := adapter.Target{Object: r.object(t, handle.KindDevice, r.device)}

	db.failWith = errors.New("connection reset")
	_, err := r.adapter.Scalar(ctx, dev, lookup(t, property.KindDevice, property.DeviceMaxComputeUnits))
	require.Error(t, err)
	assert.ErrorIs(t, err, db.failWith)
	assert.NotErrorIs(t, err, adapter.ErrUnsupported)

	_, err = r.adapter.Platforms(ctx)
	assert.ErrorIs(t, err, db.failWith)
}
