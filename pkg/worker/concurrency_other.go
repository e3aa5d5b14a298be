//go:build !linux

package worker

// HardwareConcurrency returns the number of logical CPUs, at least 1
func HardwareConcurrency() int {
	return fallbackConcurrency()
}
