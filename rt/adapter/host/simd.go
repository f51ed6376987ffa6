package host

import "golang.org/x/sys/cpu"

// simdLanes возвращает число 32-битных дорожек самого широкого доступного
// векторного расширения. Одна дорожка соответствует одному элементу подгруппы.
func simdLanes() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 16
	case cpu.X86.HasAVX2 && cpu.X86.HasFMA:
		return 8
	case cpu.X86.HasSSE2, cpu.ARM64.HasASIMD:
		return 4
	default:
		return 1
	}
}

// extensions возвращает список расширений устройства по возможностям процессора.
func extensions() []string {
	ext := []string{"unirt_khr_host_device"}
	if cpu.X86.HasAVX512F {
		ext = append(ext, "unirt_ext_avx512")
	}
	if cpu.X86.HasAVX2 {
		ext = append(ext, "unirt_ext_avx2")
	}
	if cpu.X86.HasFMA || cpu.ARM64.HasASIMD {
		ext = append(ext, "unirt_ext_fma")
	}
	if cpu.ARM64.HasFPHP && cpu.ARM64.HasASIMDHP {
		ext = append(ext, "unirt_ext_fp16")
	}
	if cpu.X86.HasAVX512VNNI {
		ext = append(ext, "unirt_ext_dot_product")
	}
	return ext
}

// subGroupSizes перечисляет поддерживаемые размеры подгрупп: степени двойки
// от min(4, lanes) до lanes.
func subGroupSizes(lanes int) []int {
	start := 4
	if lanes < start {
		start = lanes
	}
	var sizes []int
	for s := start; s <= lanes; s *= 2 {
		sizes = append(sizes, s)
	}
	return sizes
}
