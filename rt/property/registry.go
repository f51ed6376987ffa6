package property

type key struct {
	kind Kind
	id   ID
}

func u32(kind Kind, id ID, name string) Descriptor {
	return Descriptor{Kind: kind, ID: id, Name: name, Shape: ShapeScalar, Size: 4}
}

func u64(kind Kind, id ID, name string) Descriptor {
	return Descriptor{Kind: kind, ID: id, Name: name, Shape: ShapeScalar, Size: 8}
}

func str(kind Kind, id ID, name string) Descriptor {
	return Descriptor{Kind: kind, ID: id, Name: name, Shape: ShapeString, ElemSize: 1}
}

func array(kind Kind, id ID, name string, elem int) Descriptor {
	return Descriptor{Kind: kind, ID: id, Name: name, Shape: ShapeArray, ElemSize: elem}
}

func fixed(kind Kind, id ID, name string, size int) Descriptor {
	return Descriptor{Kind: kind, ID: id, Name: name, Shape: ShapeStruct, Size: size}
}

var descriptors = []Descriptor{
	str(KindPlatform, PlatformName, "PLATFORM_INFO_NAME"),
	str(KindPlatform, PlatformVendorName, "PLATFORM_INFO_VENDOR_NAME"),
	str(KindPlatform, PlatformVersion, "PLATFORM_INFO_VERSION"),
	str(KindPlatform, PlatformExtensions, "PLATFORM_INFO_EXTENSIONS"),
	u32(KindPlatform, PlatformBackend, "PLATFORM_INFO_BACKEND"),

	u32(KindDevice, DeviceType, "DEVICE_INFO_TYPE"),
	u32(KindDevice, DeviceVendorID, "DEVICE_INFO_VENDOR_ID"),
	u32(KindDevice, DeviceMaxComputeUnits, "DEVICE_INFO_MAX_COMPUTE_UNITS"),
	u64(KindDevice, DeviceMaxWorkGroupSize, "DEVICE_INFO_MAX_WORK_GROUP_SIZE"),
	array(KindDevice, DeviceMaxWorkItemSizes, "DEVICE_INFO_MAX_WORK_ITEM_SIZES", 8),
	str(KindDevice, DeviceName, "DEVICE_INFO_NAME"),
	str(KindDevice, DeviceVendor, "DEVICE_INFO_VENDOR"),
	str(KindDevice, DeviceDriverVersion, "DEVICE_INFO_DRIVER_VERSION"),
	str(KindDevice, DeviceExtensions, "DEVICE_INFO_EXTENSIONS"),
	u64(KindDevice, DeviceGlobalMemSize, "DEVICE_INFO_GLOBAL_MEM_SIZE"),
	array(KindDevice, DeviceSubGroupSizesIntel, "DEVICE_INFO_SUB_GROUP_SIZES_INTEL", 4),
	u32(KindDevice, DeviceMaxNumSubGroups, "DEVICE_INFO_MAX_NUM_SUB_GROUPS"),
	fixed(KindDevice, DeviceUUID, "DEVICE_INFO_UUID", 16),

	str(KindKernel, KernelFunctionName, "KERNEL_INFO_FUNCTION_NAME"),
	u32(KindKernel, KernelNumArgs, "KERNEL_INFO_NUM_ARGS"),
	u32(KindKernel, KernelReferenceCount, "KERNEL_INFO_REFERENCE_COUNT"),
	str(KindKernel, KernelAttributes, "KERNEL_INFO_ATTRIBUTES"),

	u32(KindKernelSubGroup, KernelSubGroupMaxSubGroupSize, "KERNEL_SUB_GROUP_INFO_MAX_SUB_GROUP_SIZE"),
	u32(KindKernelSubGroup, KernelSubGroupMaxNumSubGroups, "KERNEL_SUB_GROUP_INFO_MAX_NUM_SUB_GROUPS"),
	u32(KindKernelSubGroup, KernelSubGroupCompileNumSubGroups, "KERNEL_SUB_GROUP_INFO_COMPILE_NUM_SUB_GROUPS"),
	u32(KindKernelSubGroup, KernelSubGroupSubGroupSizeIntel, "KERNEL_SUB_GROUP_INFO_SUB_GROUP_SIZE_INTEL"),
}

var (
	byKey  = indexByKey(descriptors)
	byKind = indexByKind(descriptors)
)

func indexByKey(ds []Descriptor) map[key]Descriptor {
	m := make(map[key]Descriptor, len(ds))
	for _, d := range ds {
		k := key{kind: d.Kind, id: d.ID}
		if _, dup := m[k]; dup {
			panic("повторная регистрация свойства " + d.Name)
		}
		if d.ID == ForceUint32 {
			panic("зарезервированный идентификатор в реестре: " + d.Name)
		}
		m[k] = d
	}
	return m
}

func indexByKind(ds []Descriptor) map[Kind][]Descriptor {
	m := make(map[Kind][]Descriptor)
	for _, d := range ds {
		m[d.Kind] = append(m[d.Kind], d)
	}
	return m
}

// Lookup возвращает дескриптор свойства или false, если пара
// (тип объекта, идентификатор) не зарегистрирована.
func Lookup(kind Kind, id ID) (Descriptor, bool) {
	d, ok := byKey[key{kind: kind, id: id}]
	return d, ok
}

// Known сообщает, зарегистрировано ли свойство.
func Known(kind Kind, id ID) bool {
	_, ok := byKey[key{kind: kind, id: id}]
	return ok
}

// Descriptors возвращает копию списка дескрипторов для типа объекта
// в порядке возрастания идентификаторов.
func Descriptors(kind Kind) []Descriptor {
	ds := byKind[kind]
	out := make([]Descriptor, len(ds))
	copy(out, ds)
	return out
}

// ByName ищет дескриптор по каноническому имени.
func ByName(name string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
