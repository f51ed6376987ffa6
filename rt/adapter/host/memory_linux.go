//go:build linux

package host

import "golang.org/x/sys/unix"

// totalMemory возвращает объем физической памяти узла.
func totalMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Totalram) * uint64(info.Unit)
}
