//go:build linux

package parallel

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// PinCurrentThread locks the calling goroutine to its OS thread and binds
// that thread to one CPU: the (index mod n)-th of the n CPUs the process
// may run on. It returns the CPU chosen.
//
// The goroutine is never unlocked, so the runtime discards the pinned
// thread when the goroutine exits instead of reusing it elsewhere.
func PinCurrentThread(index int) (int, error) {
	runtime.LockOSThread()

	cpus, err := allowedCPUs()
	if err != nil {
		return -1, err
	}

	cpu := cpus[index%len(cpus)]
	var set unix.CPUSet
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return -1, errors.NewResourceError("PinCurrentThread", "cpu affinity", err)
	}
	return cpu, nil
}

// AllowedCPUs returns the number of CPUs the process may be pinned to.
func AllowedCPUs() (int, error) {
	cpus, err := allowedCPUs()
	return len(cpus), err
}

func allowedCPUs() ([]int, error) {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return nil, errors.NewResourceError("PinCurrentThread", "cpu affinity", err)
	}
	cpus := make([]int, 0, allowed.Count())
	for cpu := 0; len(cpus) < allowed.Count() && cpu < 1024; cpu++ {
		if allowed.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	if len(cpus) == 0 {
		return nil, errors.NewResourceError("PinCurrentThread", "cpu affinity", errors.New("empty cpu set"))
	}
	return cpus, nil
}
