package property

// Свойства платформы.
const (
	PlatformName ID = iota
	PlatformVendorName
	PlatformVersion
	PlatformExtensions
	PlatformBackend
)

// Свойства устройства.
const (
	DeviceType ID = iota
	DeviceVendorID
	DeviceMaxComputeUnits
	DeviceMaxWorkGroupSize
	DeviceMaxWorkItemSizes
	DeviceName
	DeviceVendor
	DeviceDriverVersion
	DeviceExtensions
	DeviceGlobalMemSize
	DeviceSubGroupSizesIntel
	DeviceMaxNumSubGroups
	DeviceUUID
)

// Свойства ядра.
const (
	KernelFunctionName ID = iota
	KernelNumArgs
	KernelReferenceCount
	KernelAttributes
)

// Свойства подгрупп ядра.
const (
	KernelSubGroupMaxSubGroupSize ID = iota
	KernelSubGroupMaxNumSubGroups
	KernelSubGroupCompileNumSubGroups
	KernelSubGroupSubGroupSizeIntel
)

// Публичное перечисление типов устройств.
const (
	DeviceTypeDefault uint32 = iota + 1
	DeviceTypeAll
	DeviceTypeGPU
	DeviceTypeCPU
	DeviceTypeFPGA
	DeviceTypeMCA
	DeviceTypeVPU
)

// Публичное перечисление типов бэкендов платформы.
const (
	BackendUnknown uint32 = iota
	BackendLevelZero
	BackendOpenCL
	BackendCUDA
	BackendHIP
	BackendNativeCPU
)

// PublicEnum реализуется нативными перечислениями бэкендов, которые
// переводятся в публичное перечисление при маршалинге.
type PublicEnum interface {
	Public() uint32
}
