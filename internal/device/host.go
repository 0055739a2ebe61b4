package device

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
)

// Describe returns a one-line summary of the host, e.g.
// "ubuntu 24.04 (linux/amd64, 8 cores)". Missing facts are omitted.
func Describe(ctx context.Context) string {
	platform := runtime.GOOS
	if info, err := host.InfoWithContext(ctx); err == nil && info.Platform != "" {
		platform = info.Platform
		if info.PlatformVersion != "" {
			platform += " " + info.PlatformVersion
		}
	}

	cores := PhysicalCores(ctx)
	if cores == 0 {
		return fmt.Sprintf("%s (%s/%s)", platform, runtime.GOOS, runtime.GOARCH)
	}
	return fmt.Sprintf("%s (%s/%s, %d cores)", platform, runtime.GOOS, runtime.GOARCH, cores)
}

// PhysicalCores returns the number of physical CPU cores, or 0 if unknown.
func PhysicalCores(ctx context.Context) int {
	n, err := cpu.CountsWithContext(ctx, false)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
