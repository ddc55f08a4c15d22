//go:build freebsd || openbsd || netbsd || dragonfly

package scrypthash

import "golang.org/x/sys/unix"

// totalMemory returns the host's total physical memory in bytes.
func totalMemory() (uint64, error) {
	return unix.SysctlUint64("hw.physmem")
}
