package scrypthash

import "golang.org/x/sys/unix"

// totalMemory returns the host's total physical memory in bytes.
func totalMemory() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}
	// Sysinfo_t.Totalram is in units of info.Unit bytes.
	return uint64(info.Totalram) * uint64(info.Unit), nil
}
