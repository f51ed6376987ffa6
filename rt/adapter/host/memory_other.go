//go:build !linux

package host

// totalMemory на платформах без Sysinfo объем памяти неизвестен.
func totalMemory() uint64 {
	return 0
}
