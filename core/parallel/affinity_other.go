//go:build !linux

package parallel

import "runtime"

// PinCurrentThread locks the calling goroutine to its OS thread. Thread to
// CPU binding is only available on Linux; elsewhere it returns -1.
func PinCurrentThread(index int) (int, error) {
	runtime.LockOSThread()
	return -1, nil
}

// AllowedCPUs returns 0: no thread is bound to a CPU on this platform.
func AllowedCPUs() (int, error) {
	return 0, nil
}
