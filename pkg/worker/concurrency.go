package worker

import "runtime"

// fallbackConcurrency is the logical CPU count reported by the runtime, at least 1
func fallbackConcurrency() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}
