//go:build linux

package worker

import "golang.org/x/sys/unix"

// HardwareConcurrency returns the number of CPUs this process may run on.
// On Linux that is the size of the scheduler affinity mask, which honours
// taskset and cgroup cpusets.
func HardwareConcurrency() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err == nil {
		if n := set.Count(); n > 0 {
			return n
		}
	}
	return fallbackConcurrency()
}
